package publisher

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jpxcli/internal/config"
)

// PostgresDestination publishes to a table holding one row of text cells
// per surface row: (row_index integer primary key, cells text[]).
type PostgresDestination struct {
	pool *pgxpool.Pool
}

// BuildConnString builds a PostgreSQL connection string from config. URL
// wins over the individual fields.
func BuildConnString(cfg config.PostgresConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// ConnectPostgres creates a pool and verifies it with a ping.
func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig) (*PostgresDestination, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresDestination{pool: pool}, nil
}

// Close closes the connection pool.
func (p *PostgresDestination) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Name implements Destination.
func (p *PostgresDestination) Name() string { return "postgres" }

// Exists implements Destination.
func (p *PostgresDestination) Exists(ctx context.Context, surface string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table(surface)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", table(surface), err)
	}
	return exists, nil
}

// Create implements Destination. Tables have no fixed grid, so rows and
// cols only end up in the table comment.
func (p *PostgresDestination) Create(ctx context.Context, surface string, rows, cols int) error {
	t := table(surface)
	_, err := p.pool.Exec(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (row_index integer PRIMARY KEY, cells text[] NOT NULL)", t))
	if err != nil {
		return fmt.Errorf("create table %s: %w", t, err)
	}
	_, err = p.pool.Exec(ctx, fmt.Sprintf("COMMENT ON TABLE %s IS '%dx%d'", t, rows, cols))
	if err != nil {
		return fmt.Errorf("comment table %s: %w", t, err)
	}
	return nil
}

// Clear implements Destination.
func (p *PostgresDestination) Clear(ctx context.Context, surface string) error {
	if _, err := p.pool.Exec(ctx, "TRUNCATE "+table(surface)); err != nil {
		return fmt.Errorf("truncate %s: %w", table(surface), err)
	}
	return nil
}

// WriteRows implements Destination with a single COPY. Existing rows in
// the target range are replaced.
func (p *PostgresDestination) WriteRows(ctx context.Context, surface string, startRow int, rows [][]string) error {
	t := table(surface)
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	end := startRow + len(rows) - 1
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE row_index BETWEEN $1 AND $2", t), startRow, end); err != nil {
		return fmt.Errorf("delete range in %s: %w", t, err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{surface},
		[]string{"row_index", "cells"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{startRow + i, rows[i]}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy into %s: %w", t, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", t, n, len(rows))
	}
	return tx.Commit(ctx)
}

// Rows returns every stored row ordered by row_index.
func (p *PostgresDestination) Rows(ctx context.Context, surface string) ([][]string, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf("SELECT cells FROM %s ORDER BY row_index", table(surface)))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table(surface), err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]string, error) {
		var cells []string
		err := row.Scan(&cells)
		return cells, err
	})
}

func table(surface string) string {
	return pgx.Identifier{surface}.Sanitize()
}
