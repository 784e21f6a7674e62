package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/simplebot/pkg/domain"
	_ "modernc.org/sqlite"
)

// Store implements ports.StateStore on a single SQLite table.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and ensures the schema.
// Use ":memory:" for an ephemeral database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY under concurrent turns,
	// and keeps ":memory:" databases from being split per connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS state_bags (
		scope_key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create state_bags table: %w", err)
	}
	return nil
}

// Save upserts the bag.
func (s *Store) Save(ctx context.Context, key string, bag domain.Bag) error {
	data, err := json.Marshal(bag)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO state_bags (scope_key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(scope_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, key, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

// Load retrieves the bag.
func (s *Store) Load(ctx context.Context, key string) (domain.Bag, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM state_bags WHERE scope_key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("load state %s: %w", key, err)
	}

	var bag domain.Bag
	if err := json.Unmarshal([]byte(data), &bag); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if bag == nil {
		bag = domain.Bag{}
	}
	return bag, nil
}

// Delete removes the bag.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state_bags WHERE scope_key = ?`, key); err != nil {
		return fmt.Errorf("delete state %s: %w", key, err)
	}
	return nil
}

// List returns all keys ordered lexically.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT scope_key FROM state_bags ORDER BY scope_key`)
	if err != nil {
		return nil, fmt.Errorf("list state: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan state key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsBusyError reports whether err is a SQLite concurrency error (SQLITE_BUSY or locked).
func IsBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
