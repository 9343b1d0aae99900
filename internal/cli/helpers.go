package cli

import (
	"context"
	"fmt"
	"math"

	"github.com/funnel-goat/funnel-goat/internal/stats"
	"github.com/funnel-goat/funnel-goat/internal/store"
)

// withStore opens the database, executes the function, and handles cleanup.
func withStore(fn func(*store.SQLiteStore) error) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	return fn(s)
}

// loadMetrics reads an experiment and its per-variant stats and converts
// them into the analysis engine's input shape.
func loadMetrics(ctx context.Context, s *store.SQLiteStore, name string) (map[string]stats.VariantMetrics, error) {
	exp, err := s.GetExperiment(ctx, name)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, fmt.Errorf("experiment '%s' not found", name)
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	variantStats, err := s.GetVariantStats(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	metrics := make(map[string]stats.VariantMetrics, len(variantStats))
	for _, vs := range variantStats {
		m := stats.VariantMetrics{
			VariantID:  vs.Variant,
			TotalUsers: exp.Populations[vs.Variant],
			StageCounts: []stats.StageCount{
				{Stage: stats.StagePageView, Count: vs.PageViews},
				{Stage: stats.StageClick, Count: vs.Clicks},
				{Stage: stats.StageAddToCart, Count: vs.CartAdds},
				{Stage: stats.StagePurchase, Count: vs.Purchases},
			},
			PurchasingUsers: vs.Purchases,
			TotalRevenue:    vs.TotalRevenue,
		}
		if m.PurchasingUsers > 0 {
			m.AvgOrderValue = m.TotalRevenue / float64(m.PurchasingUsers)
		}
		metrics[vs.Variant] = m
	}

	return metrics, nil
}

// loadReport builds the full analysis report for an experiment.
func loadReport(ctx context.Context, s *store.SQLiteStore, name string, cfg stats.Config) (*stats.Report, error) {
	metrics, err := loadMetrics(ctx, s, name)
	if err != nil {
		return nil, err
	}

	report, err := stats.BuildReport(metrics, cfg)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	return report, nil
}

func formatPercent(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}

// formatLift renders a relative lift, or N/A when the baseline rate was zero.
func formatLift(lift float64, defined bool) string {
	if !defined || math.IsNaN(lift) {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f%%", lift*100)
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
