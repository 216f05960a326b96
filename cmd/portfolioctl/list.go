package main

import (
	"github.com/spf13/cobra"

	"portfolio-api/internal/client"
	"portfolio-api/internal/config"
	"portfolio-api/internal/gallery"
)

func newListCmd(cfg *config.ClientConfig, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List photos, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGallery(cmd, cfg, func(_ *client.Client, vm *gallery.ViewModel) error {
				if err := vm.Refresh(cmd.Context()); err != nil {
					return err
				}
				photos := vm.Photos()
				if *jsonOutput {
					return writeJSON(cmd.OutOrStdout(), photos)
				}
				return writePhotoList(cmd.OutOrStdout(), photos)
			})
		},
	}
}
