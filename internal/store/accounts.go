package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tribehq/tribemail/internal/db"
)

// Accounts reads family administrator profiles.
type Accounts struct {
	pool *pgxpool.Pool
}

func NewAccounts(pool *pgxpool.Pool) *Accounts {
	return &Accounts{pool: pool}
}

// GetByEmail looks an account up by exact (case-insensitive) email.
func (s *Accounts) GetByEmail(ctx context.Context, email string) (Account, error) {
	var (
		account     Account
		displayName pgtype.Text
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name FROM profiles WHERE lower(email) = lower($1)`,
		email,
	).Scan(&account.ID, &account.Email, &displayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account by email: %w", err)
	}
	account.DisplayName = db.TextToString(displayName)
	return account, nil
}
