package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lewkins/storefront/internal/domain/auth"
)

const (
	insertSessionSQL = `INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`

	getSessionSQL = `SELECT id, user_id, expires_at FROM sessions WHERE id = $1 AND expires_at > now()`

	deleteSessionSQL = `DELETE FROM sessions WHERE id = $1`
)

var _ auth.SessionRepository = (*SessionRepository)(nil)

// SessionRepository implements auth.SessionRepository backed by PostgreSQL.
// A session row existing means the token has not been revoked; expired rows
// are treated as absent.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a SessionRepository that uses the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create records an issued session.
func (r *SessionRepository) Create(ctx context.Context, s *auth.Session) error {
	_, err := r.pool.Exec(ctx, insertSessionSQL, s.ID, s.UserID, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// FindByID returns the live session with the given ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*auth.Session, error) {
	rows, err := r.pool.Query(ctx, getSessionSQL, id)
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[auth.Session])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &s, nil
}

// Delete revokes a session. Deleting a missing session is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
