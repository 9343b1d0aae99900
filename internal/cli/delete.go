package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/funnel-goat/funnel-goat/internal/store"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDeleteCmd())
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an experiment and its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			return withStore(func(s *store.SQLiteStore) error {
				ctx := context.Background()

				if _, err := s.GetExperiment(ctx, name); err != nil {
					if err == store.ErrNotFound {
						return fmt.Errorf("experiment '%s' not found", name)
					}
					return fmt.Errorf("failed to get experiment: %w", err)
				}

				if !yes {
					prompt := promptui.Prompt{
						Label:     fmt.Sprintf("Delete experiment '%s' and all its events", name),
						IsConfirm: true,
					}
					if _, err := prompt.Run(); err != nil {
						if err == promptui.ErrInterrupt {
							os.Exit(0)
						}
						fmt.Println("Aborted.")
						return nil
					}
				}

				if err := s.DeleteExperiment(ctx, name); err != nil {
					return fmt.Errorf("failed to delete experiment: %w", err)
				}

				fmt.Printf("Deleted experiment '%s'.\n", name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	return cmd
}
