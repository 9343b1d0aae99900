package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    variants TEXT NOT NULL,
    populations TEXT NOT NULL,
    seed INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_experiments_name ON experiments(name);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    experiment TEXT NOT NULL,
    variant TEXT NOT NULL,
    user_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    revenue REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    FOREIGN KEY (experiment) REFERENCES experiments(name)
);

CREATE INDEX IF NOT EXISTS idx_events_experiment ON events(experiment);
CREATE INDEX IF NOT EXISTS idx_events_experiment_type ON events(experiment, event_type);
CREATE UNIQUE INDEX IF NOT EXISTS idx_events_dedup ON events(experiment, user_id, event_type);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateExperiment(ctx context.Context, name string, variants []string, populations map[string]int, seed int64) (*Experiment, error) {
	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variants: %w", err)
	}

	populationsJSON, err := json.Marshal(populations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal populations: %w", err)
	}

	now := time.Now().Unix()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO experiments (name, variants, populations, seed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, string(variantsJSON), string(populationsJSON), seed, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert experiment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &Experiment{
		ID:          id,
		Name:        name,
		Variants:    variants,
		Populations: populations,
		Seed:        seed,
		CreatedAt:   time.Unix(now, 0),
		UpdatedAt:   time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) GetExperiment(ctx context.Context, name string) (*Experiment, error) {
	var exp Experiment
	var variantsJSON, populationsJSON string
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, variants, populations, seed, created_at, updated_at
		 FROM experiments WHERE name = ?`, name,
	).Scan(&exp.ID, &exp.Name, &variantsJSON, &populationsJSON, &exp.Seed, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	if err := json.Unmarshal([]byte(variantsJSON), &exp.Variants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
	}
	if err := json.Unmarshal([]byte(populationsJSON), &exp.Populations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal populations: %w", err)
	}

	exp.CreatedAt = time.Unix(createdAt, 0)
	exp.UpdatedAt = time.Unix(updatedAt, 0)

	return &exp, nil
}

func (s *SQLiteStore) ListExperiments(ctx context.Context) ([]*Experiment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, variants, populations, seed, created_at, updated_at
		 FROM experiments ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var experiments []*Experiment
	for rows.Next() {
		var exp Experiment
		var variantsJSON, populationsJSON string
		var createdAt, updatedAt int64

		err := rows.Scan(&exp.ID, &exp.Name, &variantsJSON, &populationsJSON, &exp.Seed, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}

		if err := json.Unmarshal([]byte(variantsJSON), &exp.Variants); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
		}
		if err := json.Unmarshal([]byte(populationsJSON), &exp.Populations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal populations: %w", err)
		}

		exp.CreatedAt = time.Unix(createdAt, 0)
		exp.UpdatedAt = time.Unix(updatedAt, 0)

		experiments = append(experiments, &exp)
	}

	return experiments, nil
}

func (s *SQLiteStore) DeleteExperiment(ctx context.Context, name string) error {
	// First delete related events
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE experiment = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM experiments WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete experiment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// RecordEvents inserts a batch of events in one transaction. Duplicate
// (experiment, user, event_type) rows are dropped by the unique index, so a
// user counts once per stage no matter how often an event repeats.
func (s *SQLiteStore) RecordEvents(ctx context.Context, experiment string, events []Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO events (experiment, variant, user_id, event_type, revenue, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, experiment, e.Variant, e.UserID, e.EventType, e.Revenue, now); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetVariantStats(ctx context.Context, experiment string) ([]VariantStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			variant,
			COUNT(DISTINCT CASE WHEN event_type = 'page_view' THEN user_id END) as page_views,
			COUNT(DISTINCT CASE WHEN event_type = 'click' THEN user_id END) as clicks,
			COUNT(DISTINCT CASE WHEN event_type = 'add_to_cart' THEN user_id END) as cart_adds,
			COUNT(DISTINCT CASE WHEN event_type = 'purchase' THEN user_id END) as purchases,
			COALESCE(SUM(CASE WHEN event_type = 'purchase' THEN revenue END), 0) as total_revenue
		FROM events
		WHERE experiment = ?
		GROUP BY variant
		ORDER BY variant
	`, experiment)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant stats: %w", err)
	}
	defer rows.Close()

	var stats []VariantStats
	for rows.Next() {
		var s VariantStats
		if err := rows.Scan(&s.Variant, &s.PageViews, &s.Clicks, &s.CartAdds, &s.Purchases, &s.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, nil
}

func (s *SQLiteStore) GetEvents(ctx context.Context, experiment string) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, experiment, variant, user_id, event_type, revenue, created_at
		 FROM events WHERE experiment = ? ORDER BY id`,
		experiment,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Experiment, &e.Variant, &e.UserID, &e.EventType, &e.Revenue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, &e)
	}

	return events, nil
}
