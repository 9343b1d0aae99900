package simulate

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/funnel-goat/funnel-goat/internal/stats"
	"github.com/funnel-goat/funnel-goat/internal/store"
)

// VariantConfig holds the behavioral rates for one experiment arm. Each rate
// is conditional on the user having reached the previous stage.
type VariantConfig struct {
	ID           string
	ClickRate    float64 // P(click | page_view)
	CartRate     float64 // P(add_to_cart | click)
	PurchaseRate float64 // P(purchase | add_to_cart)
}

// Config drives one simulation run. The same seed always produces the same
// population, events and revenue.
type Config struct {
	Variants        []VariantConfig
	UsersPerVariant int
	Seed            int64

	// Order values are drawn from a normal distribution, floored at 1.00.
	OrderValueMean   float64
	OrderValueStddev float64

	// DuplicateRate is the chance that a non-purchase event is emitted
	// twice, simulating page reloads and double clicks. Duplicates must not
	// change any distinct-user count downstream.
	DuplicateRate float64
}

// DefaultConfig returns a two-arm experiment with a small CTR lift on B.
func DefaultConfig() Config {
	return Config{
		Variants: []VariantConfig{
			{ID: "A", ClickRate: 0.032, CartRate: 0.75, PurchaseRate: 0.58},
			{ID: "B", ClickRate: 0.036, CartRate: 0.69, PurchaseRate: 0.55},
		},
		UsersPerVariant:  5000,
		Seed:             42,
		OrderValueMean:   58.0,
		OrderValueStddev: 12.0,
		DuplicateRate:    0.03,
	}
}

// Result is one generated experiment: the raw event stream plus the assigned
// population per variant (which exceeds the page_view count when some users
// bounce before the page renders; here every assigned user views).
type Result struct {
	Events      []store.Event
	Populations map[string]int
}

// Run generates a synthetic experiment population.
func Run(cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	result := &Result{
		Populations: make(map[string]int, len(cfg.Variants)),
	}

	for _, v := range cfg.Variants {
		result.Populations[v.ID] = cfg.UsersPerVariant

		for i := 0; i < cfg.UsersPerVariant; i++ {
			uid, err := userID(rng)
			if err != nil {
				return nil, err
			}

			emit := func(eventType string, revenue float64) {
				result.Events = append(result.Events, store.Event{
					Variant:   v.ID,
					UserID:    uid,
					EventType: eventType,
					Revenue:   revenue,
				})
				if eventType != stats.StagePurchase && rng.Float64() < cfg.DuplicateRate {
					result.Events = append(result.Events, store.Event{
						Variant:   v.ID,
						UserID:    uid,
						EventType: eventType,
						Revenue:   revenue,
					})
				}
			}

			emit(stats.StagePageView, 0)
			if rng.Float64() >= v.ClickRate {
				continue
			}
			emit(stats.StageClick, 0)
			if rng.Float64() >= v.CartRate {
				continue
			}
			emit(stats.StageAddToCart, 0)
			if rng.Float64() >= v.PurchaseRate {
				continue
			}
			emit(stats.StagePurchase, orderValue(rng, cfg))
		}
	}

	return result, nil
}

func validate(cfg Config) error {
	if len(cfg.Variants) == 0 {
		return fmt.Errorf("no variants configured")
	}
	if cfg.UsersPerVariant <= 0 {
		return fmt.Errorf("users per variant must be positive, got %d", cfg.UsersPerVariant)
	}
	if cfg.DuplicateRate < 0 || cfg.DuplicateRate > 1 {
		return fmt.Errorf("duplicate rate %g outside [0, 1]", cfg.DuplicateRate)
	}

	ids := make(map[string]bool, len(cfg.Variants))
	for _, v := range cfg.Variants {
		if v.ID == "" {
			return fmt.Errorf("variant with empty ID")
		}
		if ids[v.ID] {
			return fmt.Errorf("duplicate variant ID %q", v.ID)
		}
		ids[v.ID] = true

		for name, rate := range map[string]float64{
			"click": v.ClickRate, "cart": v.CartRate, "purchase": v.PurchaseRate,
		} {
			if rate < 0 || rate > 1 {
				return fmt.Errorf("variant %q: %s rate %g outside [0, 1]", v.ID, name, rate)
			}
		}
	}

	return nil
}

// userID draws a UUID from the seeded stream so runs reproduce exactly.
func userID(rng *rand.Rand) (string, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return "", fmt.Errorf("failed to generate user id: %w", err)
	}
	return id.String(), nil
}

func orderValue(rng *rand.Rand, cfg Config) float64 {
	v := cfg.OrderValueMean + rng.NormFloat64()*cfg.OrderValueStddev
	if v < 1.0 {
		v = 1.0
	}
	// Cents precision, like a real order total
	return float64(int(v*100)) / 100
}
