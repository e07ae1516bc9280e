package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recipients reads the recipients an update's account distributes to.
type Recipients struct {
	pool *pgxpool.Pool
}

func NewRecipients(pool *pgxpool.Pool) *Recipients {
	return &Recipients{pool: pool}
}

// GetActiveByEmail finds an active recipient on the given account whose
// email matches the sender, case-insensitively.
func (s *Recipients) GetActiveByEmail(ctx context.Context, accountID, email string) (Recipient, error) {
	var recipient Recipient
	err := s.pool.QueryRow(ctx,
		`SELECT id, parent_id, email, is_active
		 FROM recipients
		 WHERE parent_id = $1 AND lower(email) = lower($2) AND is_active`,
		accountID, email,
	).Scan(&recipient.ID, &recipient.AccountID, &recipient.Email, &recipient.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipient{}, ErrNotFound
	}
	if err != nil {
		return Recipient{}, fmt.Errorf("get recipient: %w", err)
	}
	return recipient, nil
}
