package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// PlaylistCounter is the name of the process-wide created-playlists metric.
const PlaylistCounter = "playlists"

// CounterRepository persists monotonic named counters.
//
// Counters are observability-only; nothing reads them back on the conversion
// path.
type CounterRepository struct {
	db *sql.DB
}

// NewCounterRepository creates a new CounterRepository with the given database connection
func NewCounterRepository(db *sql.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Incr atomically increments the named counter, creating it at 1 on first use.
func (r *CounterRepository) Incr(name string) error {
	query := `
		INSERT INTO counters (name, value, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = value + 1,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, name, time.Now()); err != nil {
		return fmt.Errorf("failed to increment counter %q: %w", name, err)
	}

	return nil
}

// Value returns the current value of the named counter, zero when absent.
func (r *CounterRepository) Value(name string) (int64, error) {
	var value int64
	err := r.db.QueryRow("SELECT value FROM counters WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %q: %w", name, err)
	}
	return value, nil
}
