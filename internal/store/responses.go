package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tribehq/tribemail/internal/db"
)

// Responses persists threaded replies to updates.
type Responses struct {
	pool *pgxpool.Pool
}

func NewResponses(pool *pgxpool.Pool) *Responses {
	return &Responses{pool: pool}
}

// GetByExternalID looks a response up by its idempotency key.
func (s *Responses) GetByExternalID(ctx context.Context, externalID string) (Response, error) {
	var response Response
	err := s.pool.QueryRow(ctx,
		`SELECT id, update_id, recipient_id, channel, coalesce(content, ''), media_urls, external_id, received_at
		 FROM responses
		 WHERE external_id = $1`,
		externalID,
	).Scan(
		&response.ID,
		&response.UpdateID,
		&response.RecipientID,
		&response.Channel,
		&response.Content,
		&response.MediaURLs,
		&response.ExternalID,
		&response.ReceivedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Response{}, ErrNotFound
	}
	if err != nil {
		return Response{}, fmt.Errorf("get response by external id: %w", err)
	}
	return response, nil
}

// Insert persists a new email-channel response. The unique index on
// external_id makes a concurrent duplicate delivery lose the insert; in
// that case the winner's row is read back and returned, so callers see a
// duplicate as success.
func (s *Responses) Insert(ctx context.Context, response NewResponse) (string, error) {
	mediaURLs := response.MediaURLs
	if mediaURLs == nil {
		mediaURLs = []string{}
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO responses
		   (update_id, recipient_id, channel, content, media_urls, external_id, received_at)
		 VALUES ($1, $2, 'email', $3, $4, $5, $6)
		 ON CONFLICT (external_id) DO NOTHING
		 RETURNING id`,
		response.UpdateID,
		response.RecipientID,
		db.ToText(response.Content),
		mediaURLs,
		response.ExternalID,
		response.ReceivedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race to a concurrent delivery of the same message.
		existing, getErr := s.GetByExternalID(ctx, response.ExternalID)
		if getErr != nil {
			return "", fmt.Errorf("resolve conflicting response: %w", getErr)
		}
		return existing.ID, nil
	}
	if err != nil {
		return "", fmt.Errorf("insert response: %w", err)
	}
	return id, nil
}
