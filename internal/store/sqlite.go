package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteTable = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id         TEXT PRIMARY KEY,
    seq        INTEGER NOT NULL,
    data       TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_seq ON %[1]s(seq);
`

// SQLiteDB is a SQLite database holding one table per collection.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (and creates when missing) the database at dbPath.
// ":memory:" opens a private in-memory database.
func OpenSQLite(dbPath string) (*SQLiteDB, error) {
	if dbPath == ":memory:" {
		db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
		return &SQLiteDB{db: db}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// Init creates the given tables if they don't exist.
func (s *SQLiteDB) Init(ctx context.Context, tables ...string) error {
	for _, t := range tables {
		if err := checkTable(t); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(sqliteTable, t)); err != nil {
			return fmt.Errorf("creating table %s: %w", t, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// TableCounts returns the number of rows in each of the given tables.
func (s *SQLiteDB) TableCounts(ctx context.Context, tables ...string) (map[string]int, error) {
	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		if err := checkTable(t); err != nil {
			return nil, err
		}
		var c int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t).Scan(&c); err != nil {
			return nil, fmt.Errorf("counting %s: %w", t, err)
		}
		counts[t] = c
	}
	return counts, nil
}

// SQLiteCollection stores records as JSON documents in one table.
type SQLiteCollection[T Record] struct {
	db    *sql.DB
	table string
}

// NewSQLiteCollection returns a collection over table, creating it if needed.
func NewSQLiteCollection[T Record](ctx context.Context, s *SQLiteDB, table string) (*SQLiteCollection[T], error) {
	if err := s.Init(ctx, table); err != nil {
		return nil, err
	}
	return &SQLiteCollection[T]{db: s.db, table: table}, nil
}

// Get returns the record with the given id.
func (c *SQLiteCollection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	var data string
	err := c.db.QueryRowContext(ctx, `SELECT data FROM `+c.table+` WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("reading %s %s: %w", c.table, id, err)
	}
	return decode[T](data)
}

// List returns every record in insertion order.
func (c *SQLiteCollection[T]) List(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT data FROM `+c.table+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.table, err)
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	out := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		v, err := decode[T](data)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Put inserts the record at the end or replaces it in place.
func (c *SQLiteCollection[T]) Put(ctx context.Context, rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", c.table, err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO `+c.table+` (id, seq, data, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM `+c.table+`), ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, rec.RecordID(), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing %s %s: %w", c.table, rec.RecordID(), err)
	}
	return nil
}

// Delete removes the record with the given id.
func (c *SQLiteCollection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM `+c.table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", c.table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decode[T any](data string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return v, fmt.Errorf("decoding record: %w", err)
	}
	return v, nil
}
