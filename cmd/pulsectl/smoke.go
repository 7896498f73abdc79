package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"pulse-backend/internal/models"
	"pulse-backend/internal/services"

	"github.com/spf13/cobra"
)

func newSmokeCmd(opts *rootOptions) *cobra.Command {
	var in services.LoginInput

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run login, room, team and upload against a live server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "email", "password"); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			c := opts.client()

			stepf(out, "health")
			if err := c.Health(ctx); err != nil {
				return fmt.Errorf("health: %w", err)
			}

			stepf(out, "login %s", in.Email)
			auth, err := c.Login(ctx, in)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			stepf(out, "user %s code %s", auth.User.ID, auth.User.Code)

			room, err := c.CreateRoom(ctx, services.CreateRoomInput{Game: models.GameTruthOrDare})
			if err != nil {
				return fmt.Errorf("create room: %w", err)
			}
			stepf(out, "room %s code %s", room.ID, room.Code)

			team, err := c.CreateTeam(ctx, "smoke-"+time.Now().Format("150405"))
			if err != nil {
				return fmt.Errorf("create team: %w", err)
			}
			stepf(out, "team %s join code %s", team.ID, team.JoinCode)

			data, err := samplePNG()
			if err != nil {
				return err
			}
			photo, err := uploadPhoto(ctx, c, out, "smoke.png", data, models.PhotoProfile)
			if err != nil {
				return err
			}
			stepf(out, "photo %s %s", photo.ID, photo.Status)

			stepf(out, "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	return cmd
}

// samplePNG renders a small solid image
func samplePNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 0xe9, G: 0x1e, B: 0x63, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
