package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"portfolio-api/internal/client"
	"portfolio-api/internal/config"
	"portfolio-api/internal/gallery"
)

func newRootCmd(cfg *config.ClientConfig) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Manage the photos of a portfolio server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "portfolio API base URL")
	cmd.PersistentFlags().StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key for uploads and deletes")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newListCmd(cfg, &jsonOutput),
		newUploadCmd(cfg, &jsonOutput),
		newDeleteCmd(cfg),
	)

	return cmd
}

// withGallery runs fn against a view model backed by the configured API.
// Error notices from the view model go to the command's stderr.
func withGallery(cmd *cobra.Command, cfg *config.ClientConfig, fn func(*client.Client, *gallery.ViewModel) error) error {
	c := client.New(cfg.APIURL, cfg.APIKey, cfg.HTTPTimeout)
	vm := gallery.New(c,
		gallery.WithCloseDelay(0),
		gallery.WithNotifier(func(message string) {
			fmt.Fprintln(cmd.ErrOrStderr(), message)
		}),
	)
	return fn(c, vm)
}
