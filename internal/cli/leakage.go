package cli

import (
	"context"
	"fmt"

	"github.com/funnel-goat/funnel-goat/internal/stats"
	"github.com/funnel-goat/funnel-goat/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newLeakageCmd())
}

func newLeakageCmd() *cobra.Command {
	var (
		stage    string
		recovery float64
	)

	cmd := &cobra.Command{
		Use:   "leakage <name>",
		Short: "Estimate recoverable revenue lost to funnel drop-off",
		Long: `Estimate revenue leaked at one funnel transition, under a hypothetical
partial-recovery scenario.

The estimate assumes recovered users would convert at the same average
revenue-per-user as the existing population. It is an approximation, not a
causal claim.

Example:
  fgt leakage spring-sale --stage add_to_cart --recovery 0.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if recovery < 0 || recovery > 1 {
				return fmt.Errorf("recovery fraction %g outside [0, 1]", recovery)
			}

			cfg := stats.DefaultConfig()
			cfg.LeakageStage = stage
			cfg.RecoveryFraction = recovery

			return withStore(func(s *store.SQLiteStore) error {
				ctx := context.Background()

				report, err := loadReport(ctx, s, name, cfg)
				if err != nil {
					return err
				}

				l := report.Leakage
				fmt.Printf("Leakage at transition into '%s' (recovery fraction %.0f%%):\n\n", l.DesignatedStage, l.RecoveryFraction*100)
				fmt.Printf("  avg drop-off rate:      %.2f%%\n", l.AvgDropoffRate*100)
				fmt.Printf("  recovered users (est.): %.1f\n", l.RecoveredUsers)
				fmt.Printf("  potential revenue:      $%.2f\n", l.PotentialRevenue)
				fmt.Printf("  current total revenue:  $%.2f\n", l.CurrentTotalRevenue)
				fmt.Printf("  leakage:                %.2f%% of current revenue\n", l.LeakagePct)
				fmt.Println()
				fmt.Println("Assumes recovered users convert at the population's average")
				fmt.Println("revenue-per-user. Treat as a sizing estimate, not a forecast.")

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&stage, "stage", stats.StageAddToCart, "funnel stage whose incoming drop-off is estimated")
	cmd.Flags().Float64Var(&recovery, "recovery", 0.5, "hypothetical fraction of dropped users recovered")

	return cmd
}
