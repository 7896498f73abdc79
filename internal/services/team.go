package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulse-backend/internal/models"
	"pulse-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultTeamSize = 8

// CreateTeamInput is the payload for a new team
type CreateTeamInput struct {
	Name string `json:"name" validate:"required,min=2,max=40"`
}

// TeamService handles teams and memberships
type TeamService struct {
	teams TeamStore
	now   func() time.Time
}

// NewTeamService creates a new team service
func NewTeamService(teams TeamStore) *TeamService {
	return &TeamService{teams: teams, now: time.Now}
}

// Create creates a team owned by the caller
func (s *TeamService) Create(ctx context.Context, userID string, in CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if l := len([]rune(name)); l < 2 || l > 40 {
		return nil, ErrInvalidInput
	}
	if err := CheckText(name); err != nil {
		return nil, err
	}

	code, err := uniqueCode(ctx, s.teams.CodeExists)
	if err != nil {
		return nil, err
	}

	team := &models.Team{
		ID:         uuid.New().String(),
		Name:       name,
		OwnerID:    userID,
		JoinCode:   code,
		MaxMembers: defaultTeamSize,
		CreatedAt:  s.now(),
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID).Str("team_id", team.ID).Msg("Team created")
	return team, nil
}

// List returns the teams the caller belongs to
func (s *TeamService) List(ctx context.Context, userID string) ([]*models.Team, error) {
	teams, err := s.teams.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []*models.Team{}
	}
	return teams, nil
}

// Get returns a team to one of its members
func (s *TeamService) Get(ctx context.Context, userID, teamID string) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, teamErr(err)
	}
	if !team.IsMember(userID) {
		return nil, ErrNotMember
	}
	return team, nil
}

// Join adds the caller to the team with the given join code
func (s *TeamService) Join(ctx context.Context, userID, code string) (*models.Team, error) {
	teamID, err := s.teams.GetIDByJoinCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, teamErr(err)
	}

	team, err := s.teams.AddMember(ctx, teamID, userID, func(t *models.Team) error {
		switch {
		case t.IsMember(userID):
			return ErrAlreadyMember
		case t.Locked:
			return ErrTeamLocked
		case len(t.Members) >= t.MaxMembers:
			return ErrTeamFull
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		return nil, teamErr(err)
	}

	log.Info().Str("user_id", userID).Str("team_id", teamID).Msg("Joined team")
	return team, nil
}

// Leave removes the caller. It returns nil when the team was deleted.
func (s *TeamService) Leave(ctx context.Context, userID, teamID string) (*models.Team, error) {
	team, err := s.teams.RemoveMember(ctx, teamID, userID, nil)
	if err != nil {
		return nil, s.membershipErr(ctx, teamID, err)
	}

	if team == nil {
		log.Info().Str("user_id", userID).Str("team_id", teamID).Msg("Team deleted after last member left")
		return nil, nil
	}
	log.Info().
		Str("user_id", userID).
		Str("team_id", teamID).
		Str("owner_id", team.OwnerID).
		Msg("Left team")
	return team, nil
}

// SetLocked opens or closes the team for new members
func (s *TeamService) SetLocked(ctx context.Context, userID, teamID string, locked bool) (*models.Team, error) {
	team, err := s.ownedTeam(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.teams.SetLocked(ctx, teamID, locked); err != nil {
		return nil, teamErr(err)
	}
	team.Locked = locked

	log.Info().Str("user_id", userID).Str("team_id", teamID).Bool("locked", locked).Msg("Team lock changed")
	return team, nil
}

// Kick removes another member; only the owner may kick
func (s *TeamService) Kick(ctx context.Context, userID, teamID, memberID string) (*models.Team, error) {
	if memberID == userID {
		return nil, ErrCannotKickSelf
	}
	team, err := s.teams.RemoveMember(ctx, teamID, memberID, func(t *models.Team) error {
		switch {
		case !t.IsMember(userID):
			return ErrNotMember
		case t.OwnerID != userID:
			return ErrNotOwner
		}
		return nil
	})
	if err != nil {
		return nil, s.membershipErr(ctx, teamID, err)
	}

	log.Info().Str("user_id", userID).Str("team_id", teamID).Str("member_id", memberID).Msg("Member removed")
	return team, nil
}

func (s *TeamService) ownedTeam(ctx context.Context, userID, teamID string) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, teamErr(err)
	}
	if !team.IsMember(userID) {
		return nil, ErrNotMember
	}
	if team.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return team, nil
}

// membershipErr tells a missing team apart from a missing member
func (s *TeamService) membershipErr(ctx context.Context, teamID string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		if _, getErr := s.teams.GetByID(ctx, teamID); getErr == nil {
			return ErrNotMember
		}
		return ErrTeamNotFound
	}
	return err
}

func teamErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTeamNotFound
	}
	return err
}
