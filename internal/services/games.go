package services

import (
	"math/rand/v2"

	"pulse-backend/internal/models"
)

// decks holds the prompts for each party game
var decks = map[models.Game][]string{
	models.GameTruthOrDare: {
		"Truth: what is the most spontaneous thing you have ever done?",
		"Dare: describe your perfect weekend in three words.",
		"Truth: what is a small thing that always makes your day?",
		"Dare: share the last photo you took (if you dare).",
		"Truth: which song would play when you enter a room?",
		"Dare: give the player on your left a genuine compliment.",
		"Truth: what is your most unpopular food opinion?",
		"Dare: do your best impression of a famous movie line.",
	},
	models.GameWouldYouRather: {
		"Would you rather travel to the past or the future?",
		"Would you rather live by the sea or in the mountains?",
		"Would you rather have breakfast for dinner or dinner for breakfast?",
		"Would you rather always be ten minutes early or five minutes late?",
		"Would you rather give up music or movies for a year?",
		"Would you rather explore space or the deep ocean?",
	},
	models.GameQuiz: {
		"Which planet has the most moons?",
		"What is the capital city of Australia?",
		"How many hearts does an octopus have?",
		"Which element has the chemical symbol Fe?",
		"In which year did the first person walk on the moon?",
		"What is the longest river in Africa?",
	},
}

// validGame reports whether g has a prompt deck
func validGame(g models.Game) bool {
	_, ok := decks[g]
	return ok
}

// nextPrompt draws a prompt from the game's deck that differs from current
func nextPrompt(g models.Game, current string) string {
	deck := decks[g]
	if len(deck) == 0 {
		return ""
	}
	for {
		p := deck[rand.IntN(len(deck))]
		if p != current || len(deck) == 1 {
			return p
		}
	}
}
