package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tribehq/tribemail/internal/mail"
	"github.com/tribehq/tribemail/internal/store"
)

// ResponseHandler attaches a reply email to an existing update as a
// threaded response, deduplicating retried deliveries by message id.
type ResponseHandler struct {
	updates     UpdateLookup
	recipients  RecipientLookup
	responses   ResponseStore
	attachments AttachmentUploader
	notifier    Notifier
	sanitizer   *mail.Sanitizer
	maxContent  int
	logger      *slog.Logger
}

func NewResponseHandler(
	log *slog.Logger,
	updates UpdateLookup,
	recipients RecipientLookup,
	responses ResponseStore,
	attachments AttachmentUploader,
	notifier Notifier,
	sanitizer *mail.Sanitizer,
	maxContent int,
) *ResponseHandler {
	return &ResponseHandler{
		updates:     updates,
		recipients:  recipients,
		responses:   responses,
		attachments: attachments,
		notifier:    notifier,
		sanitizer:   sanitizer,
		maxContent:  maxContent,
		logger:      log.With(slog.String("handler", "response")),
	}
}

func (h *ResponseHandler) Handle(ctx context.Context, in mail.InboundEmail, updateID string) (Outcome, error) {
	if _, err := uuid.Parse(updateID); err != nil {
		return failure(KindResponse, "Invalid email format"), nil
	}

	update, err := h.updates.GetByID(ctx, updateID)
	if errors.Is(err, store.ErrNotFound) {
		return failure(KindResponse, "Update not found"), nil
	}
	if err != nil {
		return Outcome{Kind: KindResponse}, fmt.Errorf("update lookup: %w", err)
	}

	recipient, err := h.recipients.GetActiveByEmail(ctx, update.AccountID, in.From)
	if errors.Is(err, store.ErrNotFound) {
		h.logger.Info("no active recipient for sender",
			slog.String("update_id", updateID),
			slog.String("from", in.From))
		return failure(KindResponse, "Unknown recipient"), nil
	}
	if err != nil {
		return Outcome{Kind: KindResponse}, fmt.Errorf("recipient lookup: %w", err)
	}

	mediaURLs := h.attachments.Process(ctx, update.AccountID, in.Attachments)

	content := h.sanitizer.CleanBody(in.Text, in.HTML)
	if err := mail.ValidateContent(content, h.maxContent); err != nil {
		return failure(KindResponse, err.Error()), nil
	}
	if content == "" && len(mediaURLs) == 0 {
		return failure(KindResponse, "Response is empty"), nil
	}

	externalID := idempotencyKey(in)

	// Fast path for retried deliveries; the unique index on external_id
	// covers the race this check cannot.
	existing, err := h.responses.GetByExternalID(ctx, externalID)
	if err == nil {
		h.logger.Info("duplicate delivery suppressed",
			slog.String("external_id", externalID),
			slog.String("response_id", existing.ID))
		return Outcome{Success: true, Kind: KindResponse, EntityID: existing.ID}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Outcome{Kind: KindResponse}, fmt.Errorf("duplicate check: %w", err)
	}

	responseID, err := h.responses.Insert(ctx, store.NewResponse{
		UpdateID:    update.ID,
		RecipientID: recipient.ID,
		Content:     content,
		MediaURLs:   mediaURLs,
		ExternalID:  externalID,
		ReceivedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Outcome{Kind: KindResponse}, fmt.Errorf("persist response: %w", err)
	}

	h.logger.Info("response created",
		slog.String("response_id", responseID),
		slog.String("update_id", update.ID),
		slog.String("recipient_id", recipient.ID))

	h.notifier.ResponseReceived(ctx, update.AccountID, update.ID, responseID, in.From)

	return Outcome{Success: true, Kind: KindResponse, EntityID: responseID}, nil
}

// idempotencyKey picks the external id used to deduplicate retried
// webhook deliveries: the message-id header, then the envelope's
// message_id, then a generated fallback.
func idempotencyKey(in mail.InboundEmail) string {
	if in.MessageID != "" {
		return in.MessageID
	}
	if id := mail.EnvelopeMessageID(in.EnvelopeJSON); id != "" {
		return id
	}
	return "tribemail-" + uuid.NewString()
}
