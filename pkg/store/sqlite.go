package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"anima-hq/tulpa/pkg/facts"
)

// SQLiteStore persists entities in a SQLite database. It uses WAL mode
// for concurrent readers and prepared statements on the hot paths.
type SQLiteStore struct {
	db        *sql.DB
	closeOnce sync.Once
	mu        sync.RWMutex

	getEntityStmt *sql.Stmt
	getFactsStmt  *sql.Stmt
}

// Config configures the SQLite store.
type Config struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS entities (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    owner_id      TEXT NOT NULL,
    defaults_json TEXT,
    updated_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entity_facts (
    entity_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    seq       INTEGER NOT NULL,
    fact      TEXT NOT NULL,
    PRIMARY KEY (entity_id, seq)
);
`

// Open opens (creating if necessary) the entity store.
func Open(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if s.getEntityStmt, err = db.Prepare(
		"SELECT id, name, owner_id, defaults_json FROM entities WHERE id = ?"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare entity query: %w", err)
	}
	if s.getFactsStmt, err = db.Prepare(
		"SELECT fact FROM entity_facts WHERE entity_id = ? ORDER BY seq"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare facts query: %w", err)
	}
	return s, nil
}

// Close releases the database handle. Safe to call more than once.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.getEntityStmt.Close()
		s.getFactsStmt.Close()
		err = s.db.Close()
	})
	return err
}

// PutEntity inserts or replaces an entity and its full fact list in one
// transaction.
func (s *SQLiteStore) PutEntity(ctx context.Context, e *facts.Entity) error {
	if e.ID == "" {
		return fmt.Errorf("entity id cannot be empty")
	}

	var defaultsJSON []byte
	if e.Defaults != nil {
		var err error
		defaultsJSON, err = json.Marshal(e.Defaults)
		if err != nil {
			return fmt.Errorf("failed to encode defaults: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entities (id, name, owner_id, defaults_json, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   owner_id = excluded.owner_id,
		   defaults_json = excluded.defaults_json,
		   updated_at = excluded.updated_at`,
		e.ID, e.Name, e.OwnerID, nullable(defaultsJSON), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to upsert entity: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM entity_facts WHERE entity_id = ?", e.ID); err != nil {
		return fmt.Errorf("failed to clear facts: %w", err)
	}
	for i, fact := range e.Facts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entity_facts (entity_id, seq, fact) VALUES (?, ?, ?)",
			e.ID, i, fact); err != nil {
			return fmt.Errorf("failed to insert fact %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetEntity loads an entity snapshot, including its ordered facts.
// Returns (nil, nil) when the entity does not exist.
func (s *SQLiteStore) GetEntity(ctx context.Context, id string) (*facts.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e facts.Entity
	var defaultsJSON sql.NullString
	err := s.getEntityStmt.QueryRowContext(ctx, id).
		Scan(&e.ID, &e.Name, &e.OwnerID, &defaultsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entity %q: %w", id, err)
	}

	if defaultsJSON.Valid && defaultsJSON.String != "" {
		var d facts.Defaults
		if err := json.Unmarshal([]byte(defaultsJSON.String), &d); err != nil {
			return nil, fmt.Errorf("failed to decode defaults for %q: %w", id, err)
		}
		e.Defaults = &d
	}

	rows, err := s.getFactsStmt.QueryContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load facts for %q: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var fact string
		if err := rows.Scan(&fact); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		e.Facts = append(e.Facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate facts: %w", err)
	}
	return &e, nil
}

// ListEntityIDs returns the IDs of all stored entities.
func (s *SQLiteStore) ListEntityIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM entities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entity id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteEntity removes an entity and its facts.
func (s *SQLiteStore) DeleteEntity(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM entities WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete entity %q: %w", id, err)
	}
	return nil
}

// AppendFact appends one fact to the end of an entity's list.
func (s *SQLiteStore) AppendFact(ctx context.Context, entityID, fact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entity_facts (entity_id, seq, fact)
		 VALUES (?, (SELECT COALESCE(MAX(seq) + 1, 0) FROM entity_facts WHERE entity_id = ?), ?)`,
		entityID, entityID, fact)
	if err != nil {
		return fmt.Errorf("failed to append fact: %w", err)
	}
	return nil
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
