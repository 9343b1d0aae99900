package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/funnel-goat/funnel-goat/internal/stats"
	"github.com/funnel-goat/funnel-goat/internal/store"
	"github.com/spf13/cobra"
)

var funnelCmd = &cobra.Command{
	Use:   "funnel <name>",
	Short: "Show per-variant funnel conversion and drop-off",
	Long:  `Show stage-by-stage conversion and drop-off for each variant's funnel.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFunnel,
}

func init() {
	rootCmd.AddCommand(funnelCmd)
}

func runFunnel(cmd *cobra.Command, args []string) error {
	name := args[0]

	return withStore(func(s *store.SQLiteStore) error {
		ctx := context.Background()

		report, err := loadReport(ctx, s, name, stats.DefaultConfig())
		if err != nil {
			return err
		}

		for _, v := range report.Variants {
			fmt.Printf("VARIANT %s\n", v.VariantID)
			fmt.Println("TRANSITION                   USERS              CONVERSION  DROP-OFF")
			fmt.Println(strings.Repeat("─", 70))

			for _, t := range report.Transitions[v.VariantID] {
				conv, drop := "N/A", "N/A"
				if t.Defined {
					conv = formatPercent(stats.Round2(t.ConversionPct))
					drop = formatPercent(stats.Round2(t.DropoffPct))
				}
				fmt.Printf("%-12s → %-12s  %7s → %-7s  %-10s  %s\n",
					t.FromStage,
					t.ToStage,
					formatNumber(t.FromCount),
					formatNumber(t.ToCount),
					conv,
					drop,
				)
			}
			fmt.Println()
		}

		return nil
	})
}
