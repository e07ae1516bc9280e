package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Children reads the children belonging to an account.
type Children struct {
	pool *pgxpool.Pool
}

func NewChildren(pool *pgxpool.Pool) *Children {
	return &Children{pool: pool}
}

// ListByAccount returns the account's children, most recently born first.
func (s *Children) ListByAccount(ctx context.Context, accountID string) ([]Child, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, parent_id, name, birth_date
		 FROM children
		 WHERE parent_id = $1
		 ORDER BY birth_date DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []Child
	for rows.Next() {
		var child Child
		if err := rows.Scan(&child.ID, &child.AccountID, &child.Name, &child.BirthDate); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return children, nil
}
