package stats

// LeakageEstimate quantifies revenue foregone to drop-off at one designated
// funnel transition, under a hypothetical partial-recovery scenario.
//
// The estimate assumes recovered users would convert at the same average
// revenue-per-user as the existing population. That is a stated simplifying
// assumption, not a causal claim.
type LeakageEstimate struct {
	DesignatedStage     string  `json:"designated_stage"`
	AvgDropoffRate      float64 `json:"avg_dropoff_rate"` // [0, 1], mean across variants
	RecoveryFraction    float64 `json:"recovery_fraction"`
	RecoveredUsers      float64 `json:"recovered_users_estimate"`
	PotentialRevenue    float64 `json:"potential_revenue"`
	CurrentTotalRevenue float64 `json:"current_total_revenue"`
	LeakagePct          float64 `json:"leakage_pct"` // 0 when no revenue exists
}

// EstimateLeakage estimates recoverable revenue from the drop-off into
// cfg.LeakageStage, summed over however many variants are present.
//
// The recovered-user base is the upstream-stage count of the designated
// transition summed across variants, scaled by the mean drop-off rate and
// the recovery fraction. Transitions with a zero upstream count carry no
// information and are left out of the mean.
func EstimateLeakage(variants []VariantMetrics, transitionsByVariant map[string][]FunnelTransition, cfg Config) (*LeakageEstimate, error) {
	if len(variants) == 0 {
		return nil, validationErrorf("no variants to estimate leakage for")
	}

	var (
		dropoffSum   float64
		dropoffCount int
		upstreamSum  int
		revPerUser   float64
		totalRevenue float64
	)

	for _, v := range variants {
		transitions, ok := transitionsByVariant[v.VariantID]
		if !ok {
			return nil, validationErrorf("variant %q has no funnel transitions", v.VariantID)
		}

		found := false
		for _, t := range transitions {
			if t.ToStage != cfg.LeakageStage {
				continue
			}
			found = true
			upstreamSum += t.FromCount
			if t.Defined {
				dropoffSum += t.DropoffPct / 100
				dropoffCount++
			}
			break
		}
		if !found {
			return nil, validationErrorf("variant %q has no transition into stage %q", v.VariantID, cfg.LeakageStage)
		}

		revPerUser += v.RevenuePerUser()
		totalRevenue += v.TotalRevenue
	}

	avgDropoff := 0.0
	if dropoffCount > 0 {
		avgDropoff = dropoffSum / float64(dropoffCount)
	}
	avgRevPerUser := revPerUser / float64(len(variants))

	recovered := float64(upstreamSum) * avgDropoff * cfg.RecoveryFraction
	potential := recovered * avgRevPerUser

	est := &LeakageEstimate{
		DesignatedStage:     cfg.LeakageStage,
		AvgDropoffRate:      avgDropoff,
		RecoveryFraction:    cfg.RecoveryFraction,
		RecoveredUsers:      recovered,
		PotentialRevenue:    potential,
		CurrentTotalRevenue: totalRevenue,
	}
	if totalRevenue > 0 {
		est.LeakagePct = 100 * potential / totalRevenue
	}

	return est, nil
}
