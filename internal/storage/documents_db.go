package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

const createDocumentsTable = `
	CREATE TABLE IF NOT EXISTS posboard_documents (
		name       TEXT PRIMARY KEY,
		body       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type PostgresDocuments struct {
	db *sql.DB
}

func OpenPostgresDocuments(ctx context.Context, url string) (*PostgresDocuments, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}

	d := &PostgresDocuments{db: db}
	if err := d.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func NewPostgresDocuments(db *sql.DB) *PostgresDocuments {
	return &PostgresDocuments{db: db}
}

func (d *PostgresDocuments) migrate(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := d.db.ExecContext(ctx, createDocumentsTable)
		return err
	})
}

func (d *PostgresDocuments) Load(ctx context.Context, name string) ([]byte, error) {
	var body string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return d.db.QueryRowContext(ctx, `
			SELECT body::text
			FROM posboard_documents
			WHERE name = $1
		`, name).Scan(&body)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (d *PostgresDocuments) Save(ctx context.Context, name string, data []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO posboard_documents (name, body, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (name) DO UPDATE
			SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
		`, name, string(data))
		return err
	})
}

func (d *PostgresDocuments) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return d.db.PingContext(ctx)
	})
}

func (d *PostgresDocuments) Close() error {
	return d.db.Close()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
