package store

import "context"

// Store defines the interface for experiment storage operations
type Store interface {
	// Experiment operations
	CreateExperiment(ctx context.Context, name string, variants []string, populations map[string]int, seed int64) (*Experiment, error)
	GetExperiment(ctx context.Context, name string) (*Experiment, error)
	ListExperiments(ctx context.Context) ([]*Experiment, error)
	DeleteExperiment(ctx context.Context, name string) error

	// Event operations
	RecordEvents(ctx context.Context, experiment string, events []Event) error
	GetVariantStats(ctx context.Context, experiment string) ([]VariantStats, error)
	GetEvents(ctx context.Context, experiment string) ([]*Event, error)

	// Lifecycle
	Close() error
}
