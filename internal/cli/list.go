package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/funnel-goat/funnel-goat/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	Long:  `List all experiments with their population and event counts.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		ctx := context.Background()

		experiments, err := s.ListExperiments(ctx)
		if err != nil {
			return fmt.Errorf("failed to list experiments: %w", err)
		}

		if len(experiments) == 0 {
			fmt.Println("No experiments yet.")
			fmt.Println()
			fmt.Println("Generate one with:")
			fmt.Println("  fgt simulate my-experiment")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVARIANTS\tUSERS\tVIEWS\tPURCHASES\tSEED\tCREATED")

		for _, exp := range experiments {
			stats, err := s.GetVariantStats(ctx, exp.Name)
			if err != nil {
				return fmt.Errorf("failed to get stats for experiment %s: %w", exp.Name, err)
			}

			totalUsers := 0
			for _, n := range exp.Populations {
				totalUsers += n
			}

			totalViews := 0
			totalPurchases := 0
			for _, stat := range stats {
				totalViews += stat.PageViews
				totalPurchases += stat.Purchases
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				exp.Name,
				strings.Join(exp.Variants, "/"),
				formatNumber(totalUsers),
				formatNumber(totalViews),
				formatNumber(totalPurchases),
				exp.Seed,
				exp.CreatedAt.Format("2006-01-02"),
			)
		}

		w.Flush()
		return nil
	})
}
