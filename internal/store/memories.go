package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tribehq/tribemail/internal/db"
)

// Memories creates draft memory records.
type Memories struct {
	pool *pgxpool.Pool
}

func NewMemories(pool *pgxpool.Pool) *Memories {
	return &Memories{pool: pool}
}

// Insert persists a new memory in draft distribution status and returns
// its id.
func (s *Memories) Insert(ctx context.Context, memory NewMemory) (string, error) {
	mediaURLs := memory.MediaURLs
	if mediaURLs == nil {
		mediaURLs = []string{}
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO memories
		   (parent_id, child_id, subject, content, rich_content, content_format, media_urls, distribution_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'draft')
		 RETURNING id`,
		memory.AccountID,
		memory.ChildID,
		db.ToText(memory.Subject),
		db.ToText(memory.Content),
		db.ToText(memory.RichContent),
		memory.ContentFormat,
		mediaURLs,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert memory: %w", err)
	}
	return id, nil
}
