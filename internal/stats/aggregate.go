package stats

import "log"

// EventRecord is one raw user event. Revenue is meaningful only for
// purchase events and ignored elsewhere.
type EventRecord struct {
	UserID    string
	VariantID string
	EventType string
	Revenue   float64
}

// VariantMetrics holds the per-variant counts an analysis run works from.
// StageCounts follows the configured funnel order and is non-increasing
// along it for well-formed input.
type VariantMetrics struct {
	VariantID       string       `json:"variant_id"`
	TotalUsers      int          `json:"total_users"`
	StageCounts     []StageCount `json:"stage_counts"`
	PurchasingUsers int          `json:"purchasing_users"`
	TotalRevenue    float64      `json:"total_revenue"`
	AvgOrderValue   float64      `json:"avg_order_value"`
}

// RevenuePerUser is TotalRevenue spread over the whole variant population,
// not just purchasers. This is the rate the leakage estimate extrapolates.
func (m VariantMetrics) RevenuePerUser() float64 {
	if m.TotalUsers == 0 {
		return 0
	}
	return m.TotalRevenue / float64(m.TotalUsers)
}

// StageCount returns the distinct-user count for one stage, or -1 if the
// stage is not part of this variant's funnel.
func (m VariantMetrics) StageCountFor(stage string) int {
	for _, s := range m.StageCounts {
		if s.Stage == stage {
			return s.Count
		}
	}
	return -1
}

// Aggregate reduces raw events into per-variant metrics. Users are counted
// once per (variant, stage) no matter how many duplicate events they
// produce; revenue is summed over purchase events only.
//
// usersPerVariant is the assigned population per variant, which can exceed
// the page_view count when some users never produced an event. Every variant
// seen in records must have an entry or aggregation fails.
func Aggregate(records []EventRecord, usersPerVariant map[string]int, cfg Config) (map[string]VariantMetrics, error) {
	stages := cfg.Stages
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	known := make(map[string]bool, len(stages))
	for _, s := range stages {
		known[s] = true
	}

	// Distinct user sets per (variant, stage). Partitioned aggregation must
	// union these globally before counting; dedup is not per-partition.
	seen := make(map[string]map[string]map[string]struct{})
	revenue := make(map[string]float64)
	purchasers := make(map[string]map[string]struct{})

	for _, r := range records {
		if !known[r.EventType] {
			return nil, validationErrorf("unknown event type %q for user %q", r.EventType, r.UserID)
		}
		if _, ok := usersPerVariant[r.VariantID]; !ok {
			return nil, validationErrorf("variant %q has no total_users entry", r.VariantID)
		}

		byStage, ok := seen[r.VariantID]
		if !ok {
			byStage = make(map[string]map[string]struct{}, len(stages))
			seen[r.VariantID] = byStage
		}
		users, ok := byStage[r.EventType]
		if !ok {
			users = make(map[string]struct{})
			byStage[r.EventType] = users
		}
		users[r.UserID] = struct{}{}

		if r.EventType == StagePurchase {
			revenue[r.VariantID] += r.Revenue
			p, ok := purchasers[r.VariantID]
			if !ok {
				p = make(map[string]struct{})
				purchasers[r.VariantID] = p
			}
			p[r.UserID] = struct{}{}
		}
	}

	metrics := make(map[string]VariantMetrics, len(seen))
	for variant, byStage := range seen {
		counts := make([]StageCount, len(stages))
		for i, s := range stages {
			counts[i] = StageCount{Stage: s, Count: len(byStage[s])}
		}

		if err := checkMonotone(variant, counts, cfg); err != nil {
			return nil, err
		}

		m := VariantMetrics{
			VariantID:       variant,
			TotalUsers:      usersPerVariant[variant],
			StageCounts:     counts,
			PurchasingUsers: len(purchasers[variant]),
			TotalRevenue:    revenue[variant],
		}
		if m.PurchasingUsers > 0 {
			m.AvgOrderValue = m.TotalRevenue / float64(m.PurchasingUsers)
		}
		metrics[variant] = m
	}

	return metrics, nil
}

// checkMonotone validates that stage counts never increase along the funnel.
// A violation means the input is inconsistent (a later stage cannot have
// more distinct users than the one feeding it).
func checkMonotone(variant string, counts []StageCount, cfg Config) error {
	for i := 1; i < len(counts); i++ {
		if counts[i].Count <= counts[i-1].Count {
			continue
		}
		if cfg.Strict {
			return validationErrorf("variant %q: stage %q count %d exceeds upstream %q count %d",
				variant, counts[i].Stage, counts[i].Count, counts[i-1].Stage, counts[i-1].Count)
		}
		warnf(cfg, "variant %q: stage %q count %d exceeds upstream %q count %d",
			variant, counts[i].Stage, counts[i].Count, counts[i-1].Stage, counts[i-1].Count)
	}
	return nil
}

func warnf(cfg Config, format string, args ...any) {
	if cfg.Warnf != nil {
		cfg.Warnf(format, args...)
		return
	}
	log.Printf("warning: "+format, args...)
}
