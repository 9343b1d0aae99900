package store

import "time"

type Experiment struct {
	ID          int64
	Name        string
	Variants    []string       // Decoded from JSON
	Populations map[string]int // Assigned users per variant, decoded from JSON
	Seed        int64          // Simulation seed, kept so runs can be reproduced
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Event struct {
	ID         int64
	Experiment string
	Variant    string
	UserID     string
	EventType  string // "page_view", "click", "add_to_cart" or "purchase"
	Revenue    float64
	CreatedAt  time.Time
}

// VariantStats holds distinct-user counts per funnel stage plus purchase
// revenue, as computed by the database.
type VariantStats struct {
	Variant      string
	PageViews    int
	Clicks       int
	CartAdds     int
	Purchases    int
	TotalRevenue float64
}
