package main

import (
	"pulse-backend/internal/models"
	"pulse-backend/internal/services"

	"github.com/spf13/cobra"
)

func newRoomCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Game room commands",
	}

	var in services.CreateRoomInput
	var game string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Game = models.Game(game)
			room, err := opts.client().CreateRoom(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), room)
		},
	}
	create.Flags().StringVar(&game, "game", string(models.GameTruthOrDare), "truth_or_dare, would_you_rather or quiz")
	create.Flags().IntVar(&in.MaxPlayers, "max-players", 0, "seat limit (server default when 0)")

	var code string
	join := &cobra.Command{
		Use:   "join",
		Short: "Join a room by code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "code"); err != nil {
				return err
			}
			room, err := opts.client().JoinRoom(cmd.Context(), code)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), room)
		},
	}
	join.Flags().StringVar(&code, "code", "", "room code")

	var id string
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a room you host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "id"); err != nil {
				return err
			}
			room, err := opts.client().StartRoom(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), room)
		},
	}
	start.Flags().StringVar(&id, "id", "", "room id")

	cmd.AddCommand(create, join, start)
	return cmd
}

func newTeamCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Team commands",
	}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "name"); err != nil {
				return err
			}
			team, err := opts.client().CreateTeam(cmd.Context(), name)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), team)
		},
	}
	create.Flags().StringVar(&name, "name", "", "team name")

	var code string
	join := &cobra.Command{
		Use:   "join",
		Short: "Join a team by join code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "code"); err != nil {
				return err
			}
			team, err := opts.client().JoinTeam(cmd.Context(), code)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), team)
		},
	}
	join.Flags().StringVar(&code, "code", "", "team join code")

	cmd.AddCommand(create, join)
	return cmd
}

func newContactCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Contact commands",
	}

	var code string
	add := &cobra.Command{
		Use:   "add",
		Short: "Send a contact request by user code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "code"); err != nil {
				return err
			}
			contact, err := opts.client().RequestContact(cmd.Context(), code)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contact)
		},
	}
	add.Flags().StringVar(&code, "code", "", "the other user's code")

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := opts.client().ListContacts(cmd.Context(), models.ContactStatus(status))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contacts)
		},
	}
	list.Flags().StringVar(&status, "status", "", "accepted or pending")

	cmd.AddCommand(add, list)
	return cmd
}
