package cli

import (
	"context"
	"fmt"

	"github.com/funnel-goat/funnel-goat/internal/simulate"
	"github.com/funnel-goat/funnel-goat/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newSimulateCmd())
}

func newSimulateCmd() *cobra.Command {
	var (
		users       int
		seed        int64
		ctrA        float64
		ctrB        float64
		cartRateA   float64
		cartRateB   float64
		buyRateA    float64
		buyRateB    float64
		orderMean   float64
		orderStddev float64
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <name>",
		Short: "Generate a synthetic A/B experiment",
		Long: `Generate a synthetic two-variant experiment and store its raw events.

Every assigned user produces a page_view; progression through click,
add_to_cart and purchase follows the configured per-variant rates. The same
seed always reproduces the same events.

Example:
  fgt simulate spring-sale --users 5000 --seed 7 --ctr-b 0.04`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cfg := simulate.DefaultConfig()
			cfg.UsersPerVariant = users
			cfg.Seed = seed
			cfg.OrderValueMean = orderMean
			cfg.OrderValueStddev = orderStddev
			cfg.Variants[0].ClickRate = ctrA
			cfg.Variants[0].CartRate = cartRateA
			cfg.Variants[0].PurchaseRate = buyRateA
			cfg.Variants[1].ClickRate = ctrB
			cfg.Variants[1].CartRate = cartRateB
			cfg.Variants[1].PurchaseRate = buyRateB

			return withStore(func(s *store.SQLiteStore) error {
				ctx := context.Background()

				if _, err := s.GetExperiment(ctx, name); err == nil {
					if !force {
						return fmt.Errorf("experiment '%s' already exists (use --force to replace it)", name)
					}
					if err := s.DeleteExperiment(ctx, name); err != nil {
						return fmt.Errorf("failed to replace experiment: %w", err)
					}
				}

				result, err := simulate.Run(cfg)
				if err != nil {
					return fmt.Errorf("simulation failed: %w", err)
				}

				variants := make([]string, len(cfg.Variants))
				for i, v := range cfg.Variants {
					variants[i] = v.ID
				}

				if _, err := s.CreateExperiment(ctx, name, variants, result.Populations, cfg.Seed); err != nil {
					return fmt.Errorf("failed to create experiment: %w", err)
				}

				if err := s.RecordEvents(ctx, name, result.Events); err != nil {
					return fmt.Errorf("failed to record events: %w", err)
				}

				fmt.Printf("Simulated experiment '%s' (seed %d)\n", name, cfg.Seed)
				fmt.Printf("  %s users per variant, %s raw events\n",
					formatNumber(cfg.UsersPerVariant), formatNumber(len(result.Events)))
				fmt.Println("\nNext steps:")
				fmt.Printf("  fgt results %s\n", name)
				fmt.Printf("  fgt funnel %s\n", name)
				fmt.Printf("  fgt leakage %s\n", name)

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&users, "users", 5000, "users assigned to each variant")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed (same seed reproduces the run)")
	cmd.Flags().Float64Var(&ctrA, "ctr-a", 0.032, "variant A click-through rate")
	cmd.Flags().Float64Var(&ctrB, "ctr-b", 0.036, "variant B click-through rate")
	cmd.Flags().Float64Var(&cartRateA, "cart-a", 0.75, "variant A add-to-cart rate (of clickers)")
	cmd.Flags().Float64Var(&cartRateB, "cart-b", 0.69, "variant B add-to-cart rate (of clickers)")
	cmd.Flags().Float64Var(&buyRateA, "purchase-a", 0.58, "variant A purchase rate (of cart adders)")
	cmd.Flags().Float64Var(&buyRateB, "purchase-b", 0.55, "variant B purchase rate (of cart adders)")
	cmd.Flags().Float64Var(&orderMean, "order-mean", 58.0, "mean order value")
	cmd.Flags().Float64Var(&orderStddev, "order-stddev", 12.0, "order value standard deviation")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing experiment")

	return cmd
}
