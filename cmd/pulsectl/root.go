package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pulse-backend/internal/client"

	"github.com/spf13/cobra"
)

const (
	defaultServer = "http://localhost:8080"
	tokenFileName = ".pulsectl-token"
)

type rootOptions struct {
	server string
	token  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pulsectl",
		Short:         "Manual test client for the pulse API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("PULSE_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "API base URL (env PULSE_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "bearer token (defaults to ~/"+tokenFileName+")")

	cmd.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newMeCmd(opts),
		newPhotoCmd(opts),
		newRoomCmd(opts),
		newTeamCmd(opts),
		newContactCmd(opts),
		newSmokeCmd(opts),
	)
	return cmd
}

// client builds an API client, reading the saved token when --token is unset
func (o *rootOptions) client() *client.Client {
	token := o.token
	if token == "" {
		token, _ = readToken()
	}
	return client.New(o.server, client.WithToken(token))
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, tokenFileName), nil
}

func readToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func saveToken(token string) (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// printJSON writes v indented to w
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// requireFlags fails when any of the named string flags is empty
func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if v, _ := cmd.Flags().GetString(name); v == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return errors.New("missing required flags: " + strings.Join(missing, ", "))
	}
	return nil
}

func stepf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "==> "+format+"\n", args...)
}
