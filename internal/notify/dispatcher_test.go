package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestMemoryCreatedSendsConfirmation(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}
	d := NewDispatcher(slog.Default(), sender, nil)

	d.MemoryCreated(context.Background(), "acct-1", "jane@example.com", "mem-1", "First steps")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jane@example.com", sender.sent[0].To)
	assert.Equal(t, "Memory received", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "First steps")
}

func TestMemoryCreatedEmptySubjectPlaceholder(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}
	d := NewDispatcher(slog.Default(), sender, nil)

	d.MemoryCreated(context.Background(), "acct-1", "jane@example.com", "mem-1", "")

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "your new memory")
}

func TestDispatchSwallowsSendErrors(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{err: errors.New("smtp down")}
	d := NewDispatcher(slog.Default(), sender, nil)

	// Must not panic or propagate anything.
	d.MemoryCreated(context.Background(), "acct-1", "jane@example.com", "mem-1", "subject")
	d.ResponseReceived(context.Background(), "acct-1", "upd-1", "resp-1", "grandma@example.com")
}

func TestDispatchWithNothingConfigured(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(slog.Default(), nil, nil)

	d.MemoryCreated(context.Background(), "acct-1", "jane@example.com", "mem-1", "subject")
	d.ResponseReceived(context.Background(), "acct-1", "upd-1", "resp-1", "grandma@example.com")
}
