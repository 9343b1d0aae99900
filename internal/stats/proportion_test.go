package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestTwoProportions_EqualRatesExactly(t *testing.T) {
	// Identical observed rates must give z = 0 and p = 1.0 exactly,
	// regardless of sample size.
	cases := []struct {
		name           string
		n1, s1, n2, s2 int
	}{
		{"same counts", 5000, 160, 5000, 160},
		{"same rate different n", 1000, 100, 2000, 200},
		{"all successes", 500, 500, 500, 500},
		{"no successes", 500, 0, 500, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := TestTwoProportions(tc.n1, tc.s1, tc.n2, tc.s2, 0.05)
			require.NoError(t, err)

			assert.Equal(t, 0.0, result.ZStatistic)
			assert.Equal(t, 1.0, result.PValue)
			assert.Equal(t, 0.0, result.AbsoluteLift)
			assert.False(t, result.Significant)
		})
	}
}

func TestTestTwoProportions_Antisymmetric(t *testing.T) {
	forward, err := TestTwoProportions(1000, 50, 1200, 90, 0.05)
	require.NoError(t, err)
	reverse, err := TestTwoProportions(1200, 90, 1000, 50, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, -forward.ZStatistic, reverse.ZStatistic, 1e-12)
	assert.InDelta(t, -forward.AbsoluteLift, reverse.AbsoluteLift, 1e-12)
	assert.InDelta(t, forward.PValue, reverse.PValue, 1e-12)
}

func TestTestTwoProportions_ClearDifference(t *testing.T) {
	// 5% vs 10% on 1000 users each is strongly significant.
	result, err := TestTwoProportions(1000, 50, 1000, 100, 0.05)
	require.NoError(t, err)

	assert.True(t, result.Significant)
	assert.Less(t, result.PValue, 0.05)
	assert.Greater(t, result.ZStatistic, 0.0)
	assert.InDelta(t, 0.05, result.AbsoluteLift, 1e-12)
	require.True(t, result.RelativeLiftDefined)
	assert.InDelta(t, 1.0, result.RelativeLift, 1e-12)
}

func TestTestTwoProportions_Direction(t *testing.T) {
	// z follows variant 2 minus variant 1.
	result, err := TestTwoProportions(1000, 100, 1000, 50, 0.05)
	require.NoError(t, err)

	assert.Less(t, result.ZStatistic, 0.0)
	assert.Less(t, result.AbsoluteLift, 0.0)
}

func TestTestTwoProportions_UndefinedRelativeLift(t *testing.T) {
	// Zero baseline rate: relative lift has no value and must not be
	// reported as 0.
	result, err := TestTwoProportions(1000, 0, 1000, 30, 0.05)
	require.NoError(t, err)

	assert.False(t, result.RelativeLiftDefined)
	assert.True(t, math.IsNaN(result.RelativeLift))
	assert.InDelta(t, 0.03, result.AbsoluteLift, 1e-12)
}

func TestTestTwoProportions_InvalidInput(t *testing.T) {
	cases := []struct {
		name           string
		n1, s1, n2, s2 int
		alpha          float64
	}{
		{"zero n1", 0, 0, 100, 10, 0.05},
		{"zero n2", 100, 10, 0, 0, 0.05},
		{"negative n", -5, 0, 100, 10, 0.05},
		{"successes above n", 100, 101, 100, 10, 0.05},
		{"negative successes", 100, -1, 100, 10, 0.05},
		{"alpha zero", 100, 10, 100, 10, 0},
		{"alpha one", 100, 10, 100, 10, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TestTwoProportions(tc.n1, tc.s1, tc.n2, tc.s2, tc.alpha)
			require.Error(t, err)

			var invalid *InvalidInputError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestTestTwoProportions_PValueRange(t *testing.T) {
	for _, s2 := range []int{0, 10, 40, 55, 100, 500} {
		result, err := TestTwoProportions(800, 40, 900, s2, 0.05)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.PValue, 0.0)
		assert.LessOrEqual(t, result.PValue, 1.0)
	}
}

func TestNormalCDF(t *testing.T) {
	// Spot checks against standard normal table values.
	assert.InDelta(t, 0.5, normalCDF(0), 1e-7)
	assert.InDelta(t, 0.8413, normalCDF(1), 1e-4)
	assert.InDelta(t, 0.9772, normalCDF(2), 1e-4)
	assert.InDelta(t, 0.0228, normalCDF(-2), 1e-4)
}
