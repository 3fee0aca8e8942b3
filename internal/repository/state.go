package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lewkins/storefront/internal/store"
)

const (
	upsertStateSQL = `INSERT INTO client_state (owner_id, key, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (owner_id, key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

	getStateSQL = `SELECT payload FROM client_state WHERE owner_id = $1 AND key = $2`

	deleteStateSQL = `DELETE FROM client_state WHERE owner_id = $1 AND key = ANY($2)`
)

var _ store.StateRepository = (*StateRepository)(nil)

// StateRepository implements store.StateRepository backed by PostgreSQL.
// Each (owner, key) pair maps to one JSONB row holding the serialized
// collection, mirroring the browser localStorage layout the clients expect.
type StateRepository struct {
	pool *pgxpool.Pool
}

// NewStateRepository returns a StateRepository that uses the given pool.
func NewStateRepository(pool *pgxpool.Pool) *StateRepository {
	return &StateRepository{pool: pool}
}

// Save upserts the payload stored under (ownerID, key).
func (r *StateRepository) Save(ctx context.Context, ownerID, key string, payload []byte) error {
	if _, err := r.pool.Exec(ctx, upsertStateSQL, ownerID, key, payload); err != nil {
		return fmt.Errorf("saving state %s/%s: %w", ownerID, key, err)
	}
	return nil
}

// Load returns the payload stored under (ownerID, key), or store.ErrStateAbsent.
func (r *StateRepository) Load(ctx context.Context, ownerID, key string) ([]byte, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, getStateSQL, ownerID, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrStateAbsent
		}
		return nil, fmt.Errorf("loading state %s/%s: %w", ownerID, key, err)
	}
	return payload, nil
}

// Delete removes the rows for the given keys in a single statement, so one
// key cannot fail while leaving the others behind.
func (r *StateRepository) Delete(ctx context.Context, ownerID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, deleteStateSQL, ownerID, keys); err != nil {
		return fmt.Errorf("deleting state for %s: %w", ownerID, err)
	}
	return nil
}
