// Package notify performs the best-effort side effects after a handler
// run: a confirmation email back to the author and a digest-queue event
// for the downstream notification subsystem. Dispatch never fails the
// pipeline; every error stops at this boundary and is only logged.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Message is one outbound confirmation email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers confirmation email through a configured provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans a pipeline event out to the confirmation sender and
// the digest queue. Either collaborator may be nil (disabled).
type Dispatcher struct {
	sender Sender
	queue  *DigestQueue
	logger *slog.Logger
}

func NewDispatcher(log *slog.Logger, sender Sender, queue *DigestQueue) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		queue:  queue,
		logger: log.With(slog.String("component", "notify")),
	}
}

// MemoryCreated confirms a new draft memory to its author.
func (d *Dispatcher) MemoryCreated(ctx context.Context, accountID, authorEmail, memoryID, subject string) {
	title := subject
	if title == "" {
		title = "your new memory"
	}
	d.send(ctx, Message{
		To:      authorEmail,
		Subject: "Memory received",
		Body:    fmt.Sprintf("We saved %s as a draft. It will be shared once you review it.", title),
	})
	d.publish(ctx, "memory_created", accountID, map[string]string{
		"memory_id": memoryID,
	})
}

// ResponseReceived notifies the owning account that a recipient replied
// to one of their updates.
func (d *Dispatcher) ResponseReceived(ctx context.Context, accountID, updateID, responseID, from string) {
	d.publish(ctx, "response_received", accountID, map[string]string{
		"update_id":   updateID,
		"response_id": responseID,
		"from":        from,
	})
}

func (d *Dispatcher) send(ctx context.Context, msg Message) {
	if d.sender == nil || msg.To == "" {
		return
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("confirmation send failed",
			slog.String("to", msg.To),
			slog.Any("error", err))
	}
}

func (d *Dispatcher) publish(ctx context.Context, event, accountID string, payload map[string]string) {
	if d.queue == nil {
		return
	}
	if err := d.queue.Publish(ctx, event, accountID, payload); err != nil {
		d.logger.Error("digest publish failed",
			slog.String("event", event),
			slog.String("account_id", accountID),
			slog.Any("error", err))
	}
}
