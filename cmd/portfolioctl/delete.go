package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"portfolio-api/internal/client"
	"portfolio-api/internal/config"
	"portfolio-api/internal/gallery"
)

func newDeleteCmd(cfg *config.ClientConfig) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return fmt.Errorf("photo id is required")
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete photo %s? [y/N] ", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			return withGallery(cmd, cfg, func(_ *client.Client, vm *gallery.ViewModel) error {
				if err := vm.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d photos remain)\n", id, len(vm.Photos()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
