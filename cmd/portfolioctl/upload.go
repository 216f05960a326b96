package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"portfolio-api/internal/client"
	"portfolio-api/internal/config"
	"portfolio-api/internal/gallery"
	"portfolio-api/internal/models"
)

func newUploadCmd(cfg *config.ClientConfig, jsonOutput *bool) *cobra.Command {
	var req models.UploadRequest

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			req.File = data
			req.FileName = filepath.Base(args[0])

			return withGallery(cmd, cfg, func(c *client.Client, vm *gallery.ViewModel) error {
				photo, err := c.UploadPhoto(cmd.Context(), req)
				if err != nil {
					return err
				}
				if err := vm.Add(cmd.Context(), photo); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
				if *jsonOutput {
					return writeJSON(cmd.OutOrStdout(), photo)
				}
				return writePhotoDetail(cmd.OutOrStdout(), photo)
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "photo title")
	cmd.Flags().StringVar(&req.Location, "location", "", "where the photo was taken")
	cmd.Flags().StringVar(&req.Description, "description", "", "description")
	cmd.Flags().StringVar(&req.Camera, "camera", "", "camera body")
	cmd.Flags().StringVar(&req.Lens, "lens", "", "lens")
	cmd.Flags().StringVar(&req.Aperture, "aperture", "", "aperture, e.g. f/2.8")
	cmd.Flags().StringVar(&req.ShutterSpeed, "shutter-speed", "", "shutter speed, e.g. 1/250s")
	cmd.Flags().StringVar(&req.ISO, "iso", "", "ISO")
	cmd.Flags().StringVar(&req.AspectRatio, "aspect-ratio", "", "landscape, portrait or square")

	return cmd
}
