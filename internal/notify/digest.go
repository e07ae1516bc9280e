package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// digestTask is the JSON envelope the downstream digest worker consumes.
type digestTask struct {
	ID        string            `json:"id"`
	Event     string            `json:"event"`
	AccountID string            `json:"account_id"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

// DigestQueue publishes pipeline events onto the digest Redis list. This
// service only enqueues; scheduling and draining belong to the digest
// subsystem.
type DigestQueue struct {
	rdb       *redis.Client
	queueName string
}

func NewDigestQueue(rdb *redis.Client, queueName string) *DigestQueue {
	return &DigestQueue{rdb: rdb, queueName: queueName}
}

func (q *DigestQueue) Publish(ctx context.Context, event, accountID string, payload map[string]string) error {
	task := digestTask{
		ID:        uuid.NewString(),
		Event:     event,
		AccountID: accountID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal digest task: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.queueName, body).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (q *DigestQueue) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return q.rdb.Ping(ctx).Err()
}
