// Package store persists cave projects and the declination cache in
// SQLite. Caves are stored as their export JSON documents: the
// reconstruction engine rebuilds all derived state from that shape, so
// nothing derived is persisted.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

var ErrCaveNotFound = errors.New("cave not found")

const schema = `
CREATE TABLE IF NOT EXISTS caves (
	name       TEXT PRIMARY KEY,
	document   BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS declination_cache (
	key          TEXT PRIMARY KEY,
	declination  REAL NOT NULL,
	fetched_at   INTEGER NOT NULL
);
`

// Store wraps a SQLite database holding cave documents.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal=WAL&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveCave upserts a cave's export document.
func (s *Store) SaveCave(ctx context.Context, cave *model.Cave) error {
	doc, err := json.Marshal(cave.ToExport())
	if err != nil {
		return fmt.Errorf("marshal cave %q: %w", cave.Name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO caves (name, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		cave.Name, doc, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save cave %q: %w", cave.Name, err)
	}
	return nil
}

// GetCave loads and rebuilds a cave by name.
func (s *Store) GetCave(ctx context.Context, name string) (*model.Cave, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM caves WHERE name = ?`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrCaveNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get cave %q: %w", name, err)
	}

	var export model.CaveExport
	if err := json.Unmarshal(doc, &export); err != nil {
		return nil, fmt.Errorf("decode cave %q: %w", name, err)
	}
	return model.CaveFromExport(export)
}

// ListCaveNames returns the stored cave names in alphabetical order.
func (s *Store) ListCaveNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM caves ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list caves: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteCave removes a cave document. Deleting a missing cave fails
// with ErrCaveNotFound.
func (s *Store) DeleteCave(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM caves WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete cave %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", ErrCaveNotFound, name)
	}
	return nil
}

// GetDeclination returns a cached declination value and whether the
// cache held it.
func (s *Store) GetDeclination(ctx context.Context, key string) (float64, bool, error) {
	var value float64
	err := s.db.QueryRowContext(ctx,
		`SELECT declination FROM declination_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("declination cache read: %w", err)
	}
	return value, true, nil
}

// PutDeclination caches a declination value.
func (s *Store) PutDeclination(ctx context.Context, key string, value float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO declination_cache (key, declination, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET declination = excluded.declination, fetched_at = excluded.fetched_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("declination cache write: %w", err)
	}
	return nil
}
