// Package store is the PostgreSQL persistence layer. The only state the
// server keeps is the session table: upstream API tokens sealed at rest,
// keyed by the session ID carried in the browser cookie.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store aggregates repositories backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool

	Sessions *SessionRepo
}

// New wires concrete repository implementations with a shared connection
// pool. The secret seeds the at-rest sealing key for session tokens.
func New(pool *pgxpool.Pool, secret string) *Store {
	return &Store{
		pool:     pool,
		Sessions: newSessionRepo(pool, secret),
	}
}

// HealthCheck verifies that the underlying database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeDB(ctx, "db.healthcheck")()
	return s.pool.Ping(ctx)
}
