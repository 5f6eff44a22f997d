package decisions

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists decision records.
type SQLiteStore struct {
	db        *sql.DB
	closeOnce sync.Once

	insertStmt *sql.Stmt
}

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
    id          TEXT PRIMARY KEY,
    entity_id   TEXT NOT NULL,
    channel_id  TEXT NOT NULL,
    decision    TEXT NOT NULL,
    retry_ms    INTEGER NOT NULL,
    fact_count  INTEGER NOT NULL,
    error_count INTEGER NOT NULL,
    duration_us INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_created ON decisions(created_at);
CREATE INDEX IF NOT EXISTS idx_decisions_entity ON decisions(entity_id, created_at);
`

// OpenStore opens (creating if necessary) the decision store at path.
func OpenStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("decision store path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open decision store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize decision schema: %w", err)
	}

	insertStmt, err := db.Prepare(
		`INSERT INTO decisions
		 (id, entity_id, channel_id, decision, retry_ms, fact_count, error_count, duration_us, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	return &SQLiteStore{db: db, insertStmt: insertStmt}, nil
}

// Close releases the database handle. Safe to call more than once.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.insertStmt.Close()
		err = s.db.Close()
	})
	return err
}

// Insert appends one record.
func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	_, err := s.insertStmt.ExecContext(ctx,
		rec.ID, rec.EntityID, rec.ChannelID, rec.Decision, rec.RetryMs,
		rec.FactCount, rec.ErrorCount, rec.Duration.Microseconds(),
		rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	return nil
}

// Recent returns up to limit records for an entity, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, entityID string, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_id, channel_id, decision, retry_ms, fact_count, error_count, duration_us, created_at
		 FROM decisions WHERE entity_id = ? ORDER BY created_at DESC LIMIT ?`,
		entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var durationUs, createdAt int64
		if err := rows.Scan(&rec.ID, &rec.EntityID, &rec.ChannelID, &rec.Decision,
			&rec.RetryMs, &rec.FactCount, &rec.ErrorCount, &durationUs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		rec.Duration = time.Duration(durationUs) * time.Microsecond
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// PruneBefore deletes records created before the cutoff and returns the
// number removed.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM decisions WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune decisions: %w", err)
	}
	return res.RowsAffected()
}
