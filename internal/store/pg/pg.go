// Package pg implementa el repositorio de usuarios sobre Postgres (pgx).
//
// Esquema mínimo esperado:
//
//	CREATE TABLE users (
//	    id            TEXT PRIMARY KEY,
//	    email         TEXT NOT NULL UNIQUE,
//	    name          TEXT NOT NULL DEFAULT '',
//	    password_hash TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authgate/internal/store/core"
	migrations "github.com/dropDatabas3/authgate/migrations/postgres"
)

type Repo struct{ pool *pgxpool.Pool }

// New abre el pool y verifica la conexión.
func New(ctx context.Context, dsn string) (*Repo, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 5
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// EnsureSchema aplica las migraciones embebidas en orden lexicográfico.
// Los archivos son idempotentes, así que correrlo en cada arranque es seguro.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return fmt.Errorf("pg: list migrations: %w", err)
	}
	sort.Strings(entries)
	for _, name := range entries {
		sql, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("pg: read migration %s: %w", name, err)
		}
		if _, err := r.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("pg: apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	const q = `SELECT id, email, name, password_hash, created_at
	           FROM users WHERE email = $1`
	var u core.User
	err := r.pool.QueryRow(ctx, q, strings.ToLower(email)).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user by email: %w", err)
	}
	return &u, nil
}

// Close cierra el pool. Idempotente.
func (r *Repo) Close() {
	if r != nil && r.pool != nil {
		r.pool.Close()
	}
}
