package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"pulse-backend/internal/client"
	"pulse-backend/internal/models"
	"pulse-backend/internal/services"

	"github.com/spf13/cobra"
)

func newPhotoCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Photo commands",
	}

	var file, kind string
	upload := &cobra.Command{
		Use:   "upload",
		Short: "Request an upload URL, PUT the file and confirm it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "file"); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			photo, err := uploadPhoto(cmd.Context(), opts.client(), cmd.ErrOrStderr(), filepath.Base(file), data, models.PhotoKind(kind))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), photo)
		},
	}
	upload.Flags().StringVar(&file, "file", "", "image file to upload")
	upload.Flags().StringVar(&kind, "kind", string(models.PhotoProfile), "profile or verification")

	cmd.AddCommand(upload)
	return cmd
}

// uploadPhoto runs the three-step upload flow
func uploadPhoto(ctx context.Context, c *client.Client, log io.Writer, name string, data []byte, kind models.PhotoKind) (*models.Photo, error) {
	contentType := http.DetectContentType(data)

	res, err := c.RequestUpload(ctx, services.UploadRequest{
		Filename:    name,
		ContentType: contentType,
		Kind:        kind,
	})
	if err != nil {
		return nil, fmt.Errorf("request upload: %w", err)
	}
	stepf(log, "photo %s: uploading %d bytes (%s)", res.PhotoID, len(data), contentType)

	if err := c.PutObject(ctx, res.UploadURL, contentType, data); err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	photo, err := c.ConfirmPhoto(ctx, res.PhotoID)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	return photo, nil
}
