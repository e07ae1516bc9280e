// Package pipeline routes parsed inbound email to the memory and
// response handlers and owns the processing outcome shape.
package pipeline

import (
	"context"

	"github.com/tribehq/tribemail/internal/mail"
	"github.com/tribehq/tribemail/internal/store"
)

// Narrow per-capability ports so the handlers can be tested against
// fakes. The pgx stores in internal/store satisfy these.

type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (store.Account, error)
}

type ChildLookup interface {
	// ListByAccount returns children most recently born first.
	ListByAccount(ctx context.Context, accountID string) ([]store.Child, error)
}

type MemoryWriter interface {
	Insert(ctx context.Context, memory store.NewMemory) (string, error)
}

type UpdateLookup interface {
	GetByID(ctx context.Context, id string) (store.Update, error)
}

type RecipientLookup interface {
	GetActiveByEmail(ctx context.Context, accountID, email string) (store.Recipient, error)
}

type ResponseStore interface {
	GetByExternalID(ctx context.Context, externalID string) (store.Response, error)
	Insert(ctx context.Context, response store.NewResponse) (string, error)
}

// AttachmentUploader persists acceptable attachments and returns the
// public URLs of those that succeeded.
type AttachmentUploader interface {
	Process(ctx context.Context, ownerID string, infos map[string]mail.AttachmentInfo) []string
}

// Notifier is the one-way, best-effort confirmation boundary. Its
// implementations never return errors to the pipeline.
type Notifier interface {
	MemoryCreated(ctx context.Context, accountID, authorEmail, memoryID, subject string)
	ResponseReceived(ctx context.Context, accountID, updateID, responseID, from string)
}
