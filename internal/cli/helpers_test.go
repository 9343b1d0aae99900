package cli

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funnel-goat/funnel-goat/internal/simulate"
	"github.com/funnel-goat/funnel-goat/internal/stats"
	"github.com/funnel-goat/funnel-goat/internal/store"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "5,000", formatNumber(5000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestFormatLift(t *testing.T) {
	assert.Equal(t, "N/A", formatLift(math.NaN(), false))
	assert.Equal(t, "+12.50%", formatLift(0.125, true))
	assert.Equal(t, "-5.00%", formatLift(-0.05, true))
}

func TestLoadReport_SimulatedExperiment(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()

	cfg := simulate.DefaultConfig()
	cfg.UsersPerVariant = 800
	result, err := simulate.Run(cfg)
	require.NoError(t, err)

	_, err = s.CreateExperiment(ctx, "sim", []string{"A", "B"}, result.Populations, cfg.Seed)
	require.NoError(t, err)
	require.NoError(t, s.RecordEvents(ctx, "sim", result.Events))

	report, err := loadReport(ctx, s, "sim", stats.DefaultConfig())
	require.NoError(t, err)

	require.Len(t, report.CTRTable, 2)
	assert.Equal(t, 800, report.CTRTable[0].TotalUsers)
	assert.Equal(t, 800, report.FunnelTable[0].Step1PageView)
	require.NotNil(t, report.Significance)
	require.NotNil(t, report.Leakage)
}

func TestLoadReport_MissingExperiment(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = loadReport(context.Background(), s, "nope", stats.DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
