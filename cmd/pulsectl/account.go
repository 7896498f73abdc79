package main

import (
	"fmt"

	"pulse-backend/internal/services"

	"github.com/spf13/cobra"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var in services.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "email", "password", "name", "birthdate"); err != nil {
				return err
			}
			res, err := opts.client().Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&in.Birthdate, "birthdate", "", "birthdate as YYYY-MM-DD")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var in services.LoginInput
	var save bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "email", "password"); err != nil {
				return err
			}
			res, err := opts.client().Login(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Token)
			if save {
				path, err := saveToken(res.Token)
				if err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "token saved to", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&save, "save", false, "write the token to ~/"+tokenFileName)
	return cmd
}

func newMeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.client().Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
}
