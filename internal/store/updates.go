package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Updates reads previously distributed update records.
type Updates struct {
	pool *pgxpool.Pool
}

func NewUpdates(pool *pgxpool.Pool) *Updates {
	return &Updates{pool: pool}
}

func (s *Updates) GetByID(ctx context.Context, id string) (Update, error) {
	var update Update
	err := s.pool.QueryRow(ctx,
		`SELECT id, parent_id FROM updates WHERE id = $1`,
		id,
	).Scan(&update.ID, &update.AccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Update{}, ErrNotFound
	}
	if err != nil {
		return Update{}, fmt.Errorf("get update: %w", err)
	}
	return update, nil
}
