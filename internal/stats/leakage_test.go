package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leakageFixture(t *testing.T) ([]VariantMetrics, map[string][]FunnelTransition) {
	t.Helper()

	variants := []VariantMetrics{
		{
			VariantID:  "A",
			TotalUsers: 5000,
			StageCounts: []StageCount{
				{Stage: StagePageView, Count: 5000},
				{Stage: StageClick, Count: 160},
				{Stage: StageAddToCart, Count: 120},
				{Stage: StagePurchase, Count: 70},
			},
			PurchasingUsers: 70,
			TotalRevenue:    4105.75,
		},
		{
			VariantID:  "B",
			TotalUsers: 5000,
			StageCounts: []StageCount{
				{Stage: StagePageView, Count: 5000},
				{Stage: StageClick, Count: 160},
				{Stage: StageAddToCart, Count: 110},
				{Stage: StagePurchase, Count: 60},
			},
			PurchasingUsers: 60,
			TotalRevenue:    3399.18,
		},
	}

	transitions := make(map[string][]FunnelTransition, len(variants))
	for _, v := range variants {
		ts, err := AnalyzeFunnel(v.StageCounts)
		require.NoError(t, err)
		transitions[v.VariantID] = ts
	}

	return variants, transitions
}

func TestEstimateLeakage_ReferenceScenario(t *testing.T) {
	variants, transitions := leakageFixture(t)

	est, err := EstimateLeakage(variants, transitions, DefaultConfig())
	require.NoError(t, err)

	// A drops 25% click->cart, B drops 31.25%; mean 28.125%.
	assert.InDelta(t, 0.28125, est.AvgDropoffRate, 1e-12)

	// 320 clicks across variants * 0.28125 * 0.5 recovery = 45 users.
	assert.InDelta(t, 45.0, est.RecoveredUsers, 1e-9)

	// Revenue per assigned user: (4105.75/5000 + 3399.18/5000) / 2.
	avgRev := (4105.75/5000 + 3399.18/5000) / 2
	assert.InDelta(t, 45.0*avgRev, est.PotentialRevenue, 1e-9)

	assert.InDelta(t, 7504.93, est.CurrentTotalRevenue, 1e-9)
	assert.InDelta(t, 100*45.0*avgRev/7504.93, est.LeakagePct, 1e-9)
	assert.Equal(t, StageAddToCart, est.DesignatedStage)
}

func TestEstimateLeakage_ZeroRevenue(t *testing.T) {
	variants, transitions := leakageFixture(t)
	for i := range variants {
		variants[i].TotalRevenue = 0
	}

	est, err := EstimateLeakage(variants, transitions, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 0.0, est.LeakagePct)
	assert.Equal(t, 0.0, est.CurrentTotalRevenue)
	assert.Equal(t, 0.0, est.PotentialRevenue)
}

func TestEstimateLeakage_DesignatedStageParameter(t *testing.T) {
	variants, transitions := leakageFixture(t)

	cfg := DefaultConfig()
	cfg.LeakageStage = StagePurchase

	est, err := EstimateLeakage(variants, transitions, cfg)
	require.NoError(t, err)

	// cart->purchase: A drops 50/120, B drops 50/110.
	expected := (50.0/120 + 50.0/110) / 2
	assert.InDelta(t, expected, est.AvgDropoffRate, 1e-12)
	assert.Equal(t, StagePurchase, est.DesignatedStage)

	// Upstream base is the summed cart count, 230.
	assert.InDelta(t, 230*expected*0.5, est.RecoveredUsers, 1e-9)
}

func TestEstimateLeakage_UnknownStage(t *testing.T) {
	variants, transitions := leakageFixture(t)

	cfg := DefaultConfig()
	cfg.LeakageStage = "checkout"

	_, err := EstimateLeakage(variants, transitions, cfg)
	require.Error(t, err)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestEstimateLeakage_NoVariants(t *testing.T) {
	_, err := EstimateLeakage(nil, nil, DefaultConfig())
	require.Error(t, err)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestEstimateLeakage_UndefinedTransitionsSkipped(t *testing.T) {
	// A variant whose upstream stage is empty contributes no drop-off
	// information to the mean.
	variants := []VariantMetrics{
		{
			VariantID:  "A",
			TotalUsers: 100,
			StageCounts: []StageCount{
				{Stage: StagePageView, Count: 100},
				{Stage: StageClick, Count: 40},
				{Stage: StageAddToCart, Count: 30},
				{Stage: StagePurchase, Count: 10},
			},
			TotalRevenue: 500,
		},
		{
			VariantID:  "B",
			TotalUsers: 100,
			StageCounts: []StageCount{
				{Stage: StagePageView, Count: 100},
				{Stage: StageClick, Count: 0},
				{Stage: StageAddToCart, Count: 0},
				{Stage: StagePurchase, Count: 0},
			},
		},
	}

	transitions := make(map[string][]FunnelTransition)
	for _, v := range variants {
		ts, err := AnalyzeFunnel(v.StageCounts)
		require.NoError(t, err)
		transitions[v.VariantID] = ts
	}

	est, err := EstimateLeakage(variants, transitions, DefaultConfig())
	require.NoError(t, err)

	// Only A's 25% drop-off counts; B's click stage was empty.
	assert.InDelta(t, 0.25, est.AvgDropoffRate, 1e-12)
	assert.InDelta(t, 40*0.25*0.5, est.RecoveredUsers, 1e-9)
}
