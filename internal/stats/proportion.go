package stats

import "math"

// ProportionTestResult holds the outcome of a pooled two-proportion z-test
// comparing variant 2 against variant 1. Results are immutable; callers
// decide which variant plays which role.
type ProportionTestResult struct {
	ZStatistic   float64 `json:"z_statistic"`
	PValue       float64 `json:"p_value"`
	AbsoluteLift float64 `json:"absolute_lift"` // p2 - p1
	RelativeLift float64 `json:"relative_lift"` // p2/p1 - 1, NaN when p1 = 0
	Alpha        float64 `json:"alpha"`
	Significant  bool    `json:"significant"`

	// RelativeLiftDefined is false when the baseline proportion is zero and
	// RelativeLift is NaN. Render as N/A, never as 0.
	RelativeLiftDefined bool `json:"relative_lift_defined"`
}

// TestTwoProportions performs a two-tailed two-proportion z-test with the
// pooled proportion as the null-hypothesis rate.
//
// When the pooled standard error is zero (both proportions identical and
// extremal) there is no evidence of a difference: z = 0 and p = 1.
func TestTwoProportions(n1, successes1, n2, successes2 int, alpha float64) (*ProportionTestResult, error) {
	if n1 <= 0 || n2 <= 0 {
		return nil, invalidInputErrorf("sample sizes must be positive, got n1=%d n2=%d", n1, n2)
	}
	if successes1 < 0 || successes1 > n1 {
		return nil, invalidInputErrorf("successes1=%d outside [0, %d]", successes1, n1)
	}
	if successes2 < 0 || successes2 > n2 {
		return nil, invalidInputErrorf("successes2=%d outside [0, %d]", successes2, n2)
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, invalidInputErrorf("alpha must be in (0, 1), got %g", alpha)
	}

	p1 := float64(successes1) / float64(n1)
	p2 := float64(successes2) / float64(n2)

	// Pooled proportion under the null hypothesis p1 = p2
	pooled := float64(successes1+successes2) / float64(n1+n2)

	// Standard error of the difference
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(n1) + 1/float64(n2)))

	var z float64
	if se > 0 {
		z = (p2 - p1) / se
	}

	// p = 2 * (1 - Phi(|z|)). Identical proportions must yield exactly 1,
	// which the CDF approximation does not hit on its own.
	p := 1.0
	if z != 0 {
		p = 2 * (1 - normalCDF(math.Abs(z)))
		if p < 0 {
			p = 0
		} else if p > 1 {
			p = 1
		}
	}

	result := &ProportionTestResult{
		ZStatistic:   z,
		PValue:       p,
		AbsoluteLift: p2 - p1,
		Alpha:        alpha,
		Significant:  p < alpha,
	}

	if p1 > 0 {
		result.RelativeLift = p2/p1 - 1
		result.RelativeLiftDefined = true
	} else {
		result.RelativeLift = math.NaN()
	}

	return result, nil
}

// normalCDF approximates the cumulative distribution function
// of the standard normal distribution
func normalCDF(x float64) float64 {
	// Use the approximation from Abramowitz and Stegun
	// Handbook of Mathematical Functions, formula 7.1.26
	a1 := 0.254829592
	a2 := -0.284496736
	a3 := 1.421413741
	a4 := -1.453152027
	a5 := 1.061405429
	p := 0.3275911

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt(2)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}
