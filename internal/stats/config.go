package stats

// Funnel stage identifiers, in funnel order.
const (
	StagePageView  = "page_view"
	StageClick     = "click"
	StageAddToCart = "add_to_cart"
	StagePurchase  = "purchase"
)

// DefaultStages returns the standard e-commerce funnel order.
func DefaultStages() []string {
	return []string{StagePageView, StageClick, StageAddToCart, StagePurchase}
}

// Config carries the tunable parameters of an analysis run. It is passed
// explicitly into each entry point; there is no shared process state.
type Config struct {
	// Alpha is the significance threshold for the two-proportion test.
	Alpha float64

	// RecoveryFraction is the hypothetical share of dropped-off users
	// recovered in the leakage scenario.
	RecoveryFraction float64

	// LeakageStage is the to_stage of the funnel transition whose drop-off
	// feeds the leakage estimate.
	LeakageStage string

	// Stages is the funnel order used for aggregation and reporting.
	Stages []string

	// Strict makes funnel monotonicity violations fatal. When false they
	// are reported through Warnf and aggregation continues.
	Strict bool

	// Warnf receives permissive-mode warnings. Nil means log.Printf.
	Warnf func(format string, args ...any)
}

// DefaultConfig returns the standard analysis configuration.
func DefaultConfig() Config {
	return Config{
		Alpha:            0.05,
		RecoveryFraction: 0.5,
		LeakageStage:     StageAddToCart,
		Stages:           DefaultStages(),
	}
}
