package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/tribehq/tribemail/internal/mail"
	"github.com/tribehq/tribemail/internal/store"
)

// MemoryHandler turns an email sent to the memory inbox into a draft
// memory record for the sender's account.
type MemoryHandler struct {
	accounts    AccountLookup
	children    ChildLookup
	memories    MemoryWriter
	attachments AttachmentUploader
	notifier    Notifier
	sanitizer   *mail.Sanitizer
	maxSubject  int
	maxContent  int
	logger      *slog.Logger
}

func NewMemoryHandler(
	log *slog.Logger,
	accounts AccountLookup,
	children ChildLookup,
	memories MemoryWriter,
	attachments AttachmentUploader,
	notifier Notifier,
	sanitizer *mail.Sanitizer,
	maxSubject, maxContent int,
) *MemoryHandler {
	return &MemoryHandler{
		accounts:    accounts,
		children:    children,
		memories:    memories,
		attachments: attachments,
		notifier:    notifier,
		sanitizer:   sanitizer,
		maxSubject:  maxSubject,
		maxContent:  maxContent,
		logger:      log.With(slog.String("handler", "memory")),
	}
}

func (h *MemoryHandler) Handle(ctx context.Context, in mail.InboundEmail) (Outcome, error) {
	if err := mail.AuthenticateSender(h.logger, in); err != nil {
		return failure(KindMemory, "Unknown sender"), nil
	}

	account, err := h.accounts.GetByEmail(ctx, in.From)
	if errors.Is(err, store.ErrNotFound) {
		h.logger.Info("no account for sender", slog.String("from", in.From))
		return failure(KindMemory, "Unknown sender"), nil
	}
	if err != nil {
		return Outcome{Kind: KindMemory}, fmt.Errorf("account lookup: %w", err)
	}

	parsed := mail.ParseSubject(in.Subject)
	if err := mail.ValidateSubject(parsed.Content, h.maxSubject); err != nil {
		return failure(KindMemory, err.Error()), nil
	}

	child, err := h.resolveChild(ctx, account.ID, parsed.ChildName)
	if errors.Is(err, store.ErrNotFound) {
		return failure(KindMemory, "No child found"), nil
	}
	if err != nil {
		return Outcome{Kind: KindMemory}, fmt.Errorf("child lookup: %w", err)
	}

	mediaURLs := h.attachments.Process(ctx, account.ID, in.Attachments)

	content := h.sanitizer.CleanBody(in.Text, in.HTML)
	if err := mail.ValidateContent(content, h.maxContent); err != nil {
		return failure(KindMemory, err.Error()), nil
	}
	if err := mail.ValidateNotEmpty(parsed.Content, content, mediaURLs); err != nil {
		return failure(KindMemory, "Email is empty"), nil
	}

	memoryID, err := h.memories.Insert(ctx, store.NewMemory{
		AccountID:     account.ID,
		ChildID:       child.ID,
		Subject:       parsed.Content,
		Content:       content,
		RichContent:   richContent(h.logger, in.HTML),
		ContentFormat: "email",
		MediaURLs:     mediaURLs,
	})
	if err != nil {
		return Outcome{Kind: KindMemory}, fmt.Errorf("persist memory: %w", err)
	}

	h.logger.Info("memory created",
		slog.String("memory_id", memoryID),
		slog.String("account_id", account.ID),
		slog.String("child_id", child.ID),
		slog.Int("media", len(mediaURLs)))

	h.notifier.MemoryCreated(ctx, account.ID, account.Email, memoryID, parsed.Content)

	return Outcome{Success: true, Kind: KindMemory, EntityID: memoryID}, nil
}

// resolveChild picks the child a memory belongs to: a case-insensitive
// name match when the subject named one, otherwise (or when the name
// matches nothing) the account's most recently born child.
func (h *MemoryHandler) resolveChild(ctx context.Context, accountID, childName string) (store.Child, error) {
	children, err := h.children.ListByAccount(ctx, accountID)
	if err != nil {
		return store.Child{}, err
	}
	if len(children) == 0 {
		return store.Child{}, store.ErrNotFound
	}

	if childName != "" {
		for _, child := range children {
			if strings.EqualFold(child.Name, childName) {
				return child, nil
			}
		}
	}

	// Children are ordered most recently born first.
	return children[0], nil
}

// richContent converts an HTML body to markdown for the rich_content
// column; plain-text-only email leaves it empty.
func richContent(log *slog.Logger, html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		log.Warn("rich content conversion failed", slog.Any("error", err))
		return ""
	}
	return markdown
}
