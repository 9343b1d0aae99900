package stats

// StageCount is one funnel stage and the number of distinct users who
// reached it.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// FunnelTransition describes user movement between two adjacent funnel
// stages. Percentages are unrounded; rounding happens at the reporting
// boundary only, so chained computations never compound rounding error.
type FunnelTransition struct {
	FromStage     string  `json:"from_stage"`
	ToStage       string  `json:"to_stage"`
	FromCount     int     `json:"from_count"`
	ToCount       int     `json:"to_count"`
	ConversionPct float64 `json:"conversion_pct"` // [0, 100]
	DropoffPct    float64 `json:"dropoff_pct"`    // 100 - ConversionPct

	// Defined is false when FromCount is zero and the conversion rate has
	// no value. ConversionPct is 0 in that case; render as N/A.
	Defined bool `json:"defined"`
}

// AnalyzeFunnel walks an ordered stage sequence pairwise and computes the
// conversion and drop-off percentage for each adjacent pair. The stage order
// is entirely caller-supplied; the analyzer does not know or care what the
// stages mean.
func AnalyzeFunnel(stages []StageCount) ([]FunnelTransition, error) {
	for _, s := range stages {
		if s.Count < 0 {
			return nil, validationErrorf("stage %q has negative count %d", s.Stage, s.Count)
		}
	}

	if len(stages) < 2 {
		return nil, nil
	}

	transitions := make([]FunnelTransition, 0, len(stages)-1)
	for i := 0; i < len(stages)-1; i++ {
		from, to := stages[i], stages[i+1]

		t := FunnelTransition{
			FromStage: from.Stage,
			ToStage:   to.Stage,
			FromCount: from.Count,
			ToCount:   to.Count,
		}

		if from.Count > 0 {
			t.ConversionPct = 100 * float64(to.Count) / float64(from.Count)
			t.DropoffPct = 100 - t.ConversionPct
			t.Defined = true
		} else {
			// Nobody reached the upstream stage: the rate is undefined,
			// flagged rather than guessed.
			t.ConversionPct = 0
			t.DropoffPct = 0
		}

		transitions = append(transitions, t)
	}

	return transitions, nil
}
