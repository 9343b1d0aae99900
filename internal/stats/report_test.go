package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFixture(t *testing.T) map[string]VariantMetrics {
	t.Helper()

	variants, _ := leakageFixture(t)
	metrics := make(map[string]VariantMetrics, len(variants))
	for _, v := range variants {
		metrics[v.VariantID] = v
	}
	return metrics
}

func TestBuildReport_EndToEnd(t *testing.T) {
	report, err := BuildReport(reportFixture(t), DefaultConfig())
	require.NoError(t, err)

	// Variant order: A is the baseline.
	require.Len(t, report.Variants, 2)
	assert.Equal(t, "A", report.Variants[0].VariantID)
	assert.Equal(t, "B", report.Variants[1].VariantID)

	// Equal click counts on equal populations: no evidence of difference.
	sig := report.Significance
	assert.Equal(t, 0.0, sig.ZStatistic)
	assert.Equal(t, 1.0, sig.PValue)
	assert.Equal(t, 0.0, sig.AbsoluteLift)
	require.True(t, sig.RelativeLiftDefined)
	assert.Equal(t, 0.0, sig.RelativeLift)
	assert.False(t, sig.Significant)

	// CTR table, rounded for reporting.
	require.Len(t, report.CTRTable, 2)
	assert.Equal(t, CTRRow{Variant: "A", TotalUsers: 5000, ClickedUsers: 160, CTRPercent: 3.2}, report.CTRTable[0])

	// Funnel table drop-offs match the reference computation.
	require.Len(t, report.FunnelTable, 2)
	assert.Equal(t, 25.0, report.FunnelTable[0].DropClickToCart)
	assert.Equal(t, 31.25, report.FunnelTable[1].DropClickToCart)
	assert.Equal(t, 5000, report.FunnelTable[0].Step1PageView)
	assert.Equal(t, 70, report.FunnelTable[0].Step4Purchase)

	// Revenue table.
	require.Len(t, report.RevenueTable, 2)
	assert.Equal(t, 70, report.RevenueTable[0].PurchasingUsers)
	assert.InDelta(t, 4105.75, report.RevenueTable[0].TotalRevenue, 1e-9)
	assert.InDelta(t, Round2(4105.75/70), report.RevenueTable[0].AvgOrderValue, 1e-9)
	assert.InDelta(t, Round2(4105.75/5000), report.RevenueTable[0].RevenuePerUser, 1e-9)

	// Leakage wired through with unrounded inputs.
	require.NotNil(t, report.Leakage)
	assert.InDelta(t, 0.28125, report.Leakage.AvgDropoffRate, 1e-12)
	assert.InDelta(t, 7504.93, report.Leakage.CurrentTotalRevenue, 1e-9)
}

func TestBuildReport_RequiresTwoVariants(t *testing.T) {
	metrics := reportFixture(t)
	delete(metrics, "B")

	_, err := BuildReport(metrics, DefaultConfig())
	require.Error(t, err)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestBuildReport_Deterministic(t *testing.T) {
	first, err := BuildReport(reportFixture(t), DefaultConfig())
	require.NoError(t, err)
	second, err := BuildReport(reportFixture(t), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, first.CTRTable, second.CTRTable)
	assert.Equal(t, first.FunnelTable, second.FunnelTable)
	assert.Equal(t, first.RevenueTable, second.RevenueTable)
	assert.Equal(t, first.Significance, second.Significance)
	assert.Equal(t, first.Leakage, second.Leakage)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 31.25, Round2(31.25))
	assert.Equal(t, 3.33, Round2(10.0/3))
	assert.Equal(t, 0.0, Round2(0))
}
