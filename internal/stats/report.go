package stats

import (
	"math"
	"sort"
	"time"
)

// CTRRow is one line of the click-through analysis table.
type CTRRow struct {
	Variant      string  `json:"variant"`
	TotalUsers   int     `json:"total_users"`
	ClickedUsers int     `json:"clicked_users"`
	CTRPercent   float64 `json:"ctr_percent"`
}

// FunnelRow is one line of the funnel analysis table, covering the four
// standard stages and the three transitions between them.
type FunnelRow struct {
	Variant            string  `json:"variant"`
	Step1PageView      int     `json:"step1_page_view"`
	Step2Click         int     `json:"step2_click"`
	ClickRate          float64 `json:"click_rate"`
	DropPageToClick    float64 `json:"drop_page_to_click"`
	Step3AddToCart     int     `json:"step3_add_to_cart"`
	AddToCartRate      float64 `json:"add_to_cart_rate"`
	DropClickToCart    float64 `json:"drop_click_to_cart"`
	Step4Purchase      int     `json:"step4_purchase"`
	PurchaseRate       float64 `json:"purchase_rate"`
	DropCartToPurchase float64 `json:"drop_cart_to_purchase"`
}

// RevenueRow is one line of the revenue analysis table.
type RevenueRow struct {
	Variant         string  `json:"variant"`
	PurchasingUsers int     `json:"purchasing_users"`
	TotalRevenue    float64 `json:"total_revenue"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	RevenuePerUser  float64 `json:"revenue_per_user"`
}

// Report is the full output of one analysis run: the underlying entities
// plus the three flat tables the rendering layer consumes. Percentages in
// the tables are rounded to two decimals; everything feeding further
// computation stays unrounded.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	Variants     []VariantMetrics              `json:"variants"`
	Significance *ProportionTestResult         `json:"significance"`
	Transitions  map[string][]FunnelTransition `json:"transitions"`
	Leakage      *LeakageEstimate              `json:"leakage"`

	CTRTable     []CTRRow     `json:"ctr_table"`
	FunnelTable  []FunnelRow  `json:"funnel_table"`
	RevenueTable []RevenueRow `json:"revenue_table"`
}

// BuildReport assembles the complete analysis for a two-variant experiment.
// Variants are ordered by ID; the lexicographically first acts as the
// baseline in the significance test.
func BuildReport(metrics map[string]VariantMetrics, cfg Config) (*Report, error) {
	if len(metrics) != 2 {
		return nil, validationErrorf("expected exactly 2 variants, got %d", len(metrics))
	}

	variants := make([]VariantMetrics, 0, len(metrics))
	for _, m := range metrics {
		variants = append(variants, m)
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].VariantID < variants[j].VariantID })

	transitions := make(map[string][]FunnelTransition, len(variants))
	for _, v := range variants {
		ts, err := AnalyzeFunnel(v.StageCounts)
		if err != nil {
			return nil, err
		}
		transitions[v.VariantID] = ts
	}

	a, b := variants[0], variants[1]
	aClicks := a.StageCountFor(StageClick)
	bClicks := b.StageCountFor(StageClick)
	if aClicks < 0 || bClicks < 0 {
		return nil, validationErrorf("stage %q missing from variant funnel", StageClick)
	}

	sig, err := TestTwoProportions(a.TotalUsers, aClicks, b.TotalUsers, bClicks, cfg.Alpha)
	if err != nil {
		return nil, err
	}

	leakage, err := EstimateLeakage(variants, transitions, cfg)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:  time.Now().UTC(),
		Variants:     variants,
		Significance: sig,
		Transitions:  transitions,
		Leakage:      leakage,
	}

	for _, v := range variants {
		report.CTRTable = append(report.CTRTable, ctrRow(v))
		report.RevenueTable = append(report.RevenueTable, revenueRow(v))

		row, err := funnelRow(v, transitions[v.VariantID])
		if err != nil {
			return nil, err
		}
		report.FunnelTable = append(report.FunnelTable, row)
	}

	return report, nil
}

func ctrRow(v VariantMetrics) CTRRow {
	clicks := v.StageCountFor(StageClick)
	ctr := 0.0
	if v.TotalUsers > 0 {
		ctr = 100 * float64(clicks) / float64(v.TotalUsers)
	}
	return CTRRow{
		Variant:      v.VariantID,
		TotalUsers:   v.TotalUsers,
		ClickedUsers: clicks,
		CTRPercent:   Round2(ctr),
	}
}

func revenueRow(v VariantMetrics) RevenueRow {
	return RevenueRow{
		Variant:         v.VariantID,
		PurchasingUsers: v.PurchasingUsers,
		TotalRevenue:    Round2(v.TotalRevenue),
		AvgOrderValue:   Round2(v.AvgOrderValue),
		RevenuePerUser:  Round2(v.RevenuePerUser()),
	}
}

func funnelRow(v VariantMetrics, transitions []FunnelTransition) (FunnelRow, error) {
	if len(transitions) != 3 {
		return FunnelRow{}, validationErrorf("variant %q: funnel table needs 4 stages, got %d transitions", v.VariantID, len(transitions))
	}
	t1, t2, t3 := transitions[0], transitions[1], transitions[2]
	return FunnelRow{
		Variant:            v.VariantID,
		Step1PageView:      t1.FromCount,
		Step2Click:         t1.ToCount,
		ClickRate:          Round2(t1.ConversionPct),
		DropPageToClick:    Round2(t1.DropoffPct),
		Step3AddToCart:     t2.ToCount,
		AddToCartRate:      Round2(t2.ConversionPct),
		DropClickToCart:    Round2(t2.DropoffPct),
		Step4Purchase:      t3.ToCount,
		PurchaseRate:       Round2(t3.ConversionPct),
		DropCartToPurchase: Round2(t3.DropoffPct),
	}, nil
}

// Round2 rounds to two decimal places for reporting. Internal computation
// never consumes rounded values.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
