package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresTable = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id         TEXT PRIMARY KEY,
    seq        BIGSERIAL,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_seq ON %[1]s(seq);
`

// pgQuerier is the subset of *pgxpool.Pool the collections use.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OpenPostgres connects a pool to dsn and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// PostgresCollection stores records as JSONB documents in one table.
type PostgresCollection[T Record] struct {
	db    pgQuerier
	table string
}

// NewPostgresCollection returns a collection over table, creating it if needed.
func NewPostgresCollection[T Record](ctx context.Context, pool *pgxpool.Pool, table string) (*PostgresCollection[T], error) {
	return newPostgresCollection[T](ctx, pool, table)
}

func newPostgresCollection[T Record](ctx context.Context, db pgQuerier, table string) (*PostgresCollection[T], error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if _, err := db.Exec(ctx, fmt.Sprintf(postgresTable, table)); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}
	return &PostgresCollection[T]{db: db, table: table}, nil
}

// Get returns the record with the given id.
func (c *PostgresCollection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	var data []byte
	err := c.db.QueryRow(ctx, `SELECT data FROM `+c.table+` WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("reading %s %s: %w", c.table, id, err)
	}
	return decode[T](string(data))
}

// List returns every record in insertion order.
func (c *PostgresCollection[T]) List(ctx context.Context) ([]T, error) {
	rows, err := c.db.Query(ctx, `SELECT data FROM `+c.table+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		v, err := decode[T](string(data))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Put inserts the record or replaces it, keeping its sequence number.
func (c *PostgresCollection[T]) Put(ctx context.Context, rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", c.table, err)
	}
	_, err = c.db.Exec(ctx, `
		INSERT INTO `+c.table+` (id, data, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = NOW()
	`, rec.RecordID(), string(data))
	if err != nil {
		return fmt.Errorf("writing %s %s: %w", c.table, rec.RecordID(), err)
	}
	return nil
}

// Delete removes the record with the given id.
func (c *PostgresCollection[T]) Delete(ctx context.Context, id string) error {
	tag, err := c.db.Exec(ctx, `DELETE FROM `+c.table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", c.table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
