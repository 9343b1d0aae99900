package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/funnel-goat/funnel-goat/internal/stats"
	"github.com/funnel-goat/funnel-goat/internal/store"
	"github.com/spf13/cobra"
)

var resultsAlpha float64

var resultsCmd = &cobra.Command{
	Use:   "results <name>",
	Short: "Show click-through results and significance",
	Long:  `Show per-variant click-through rates and the two-proportion z-test verdict.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runResults,
}

func init() {
	resultsCmd.Flags().Float64Var(&resultsAlpha, "alpha", 0.05, "significance threshold")
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withStore(func(s *store.SQLiteStore) error {
		ctx := context.Background()

		exp, err := s.GetExperiment(ctx, name)
		if err != nil {
			if err == store.ErrNotFound {
				return fmt.Errorf("experiment '%s' not found", name)
			}
			return fmt.Errorf("failed to get experiment: %w", err)
		}

		cfg := stats.DefaultConfig()
		cfg.Alpha = resultsAlpha

		report, err := loadReport(ctx, s, name, cfg)
		if err != nil {
			return err
		}

		// Print header
		fmt.Printf("EXPERIMENT: %s\n", exp.Name)
		fmt.Printf("SEED: %d\n", exp.Seed)
		fmt.Printf("CREATED: %s\n", exp.CreatedAt.Format("2006-01-02"))
		fmt.Println()

		// Print table header
		fmt.Println("VARIANT    USERS     CLICKS    CTR")
		fmt.Println(strings.Repeat("─", 44))

		for _, row := range report.CTRTable {
			fmt.Printf("%-9s  %-8s  %-8s  %s\n",
				row.Variant,
				formatNumber(row.TotalUsers),
				formatNumber(row.ClickedUsers),
				formatPercent(row.CTRPercent),
			)
		}

		fmt.Println()

		sig := report.Significance
		fmt.Printf("z-statistic:    %.4f\n", sig.ZStatistic)
		fmt.Printf("p-value:        %.4f\n", sig.PValue)
		fmt.Printf("absolute lift:  %+.2f pp\n", sig.AbsoluteLift*100)
		fmt.Printf("relative lift:  %s\n", formatLift(sig.RelativeLift, sig.RelativeLiftDefined))
		fmt.Println()

		if sig.Significant {
			fmt.Printf("The CTR difference is statistically significant at alpha=%.2f.\n", sig.Alpha)
		} else {
			fmt.Printf("The CTR difference is not statistically significant at alpha=%.2f.\n", sig.Alpha)
		}

		return nil
	})
}
