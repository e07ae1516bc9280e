package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehq/tribemail/internal/mail"
	"github.com/tribehq/tribemail/internal/store"
)

type memoryFixture struct {
	handler  *MemoryHandler
	memories *fakeMemories
	notifier *fakeNotifier
}

func newMemoryFixture(uploaded []string) *memoryFixture {
	accounts := &fakeAccounts{byEmail: map[string]store.Account{
		"jane@example.com": {ID: "acct-1", Email: "jane@example.com", DisplayName: "Jane"},
	}}
	children := &fakeChildren{byAccount: map[string][]store.Child{
		"acct-1": {
			{ID: "child-emma", AccountID: "acct-1", Name: "Emma", BirthDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "child-liam", AccountID: "acct-1", Name: "Liam", BirthDate: time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}}
	memories := &fakeMemories{}
	notifier := &fakeNotifier{}
	handler := NewMemoryHandler(
		testLogger(), accounts, children, memories,
		&fakeUploader{urls: uploaded}, notifier,
		mail.NewSanitizer(2000), 200, 10000,
	)
	return &memoryFixture{handler: handler, memories: memories, notifier: notifier}
}

func TestMemoryHandlerCreatesMemory(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture(nil)

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		To:      "memory@example.com",
		From:    "jane@example.com",
		Subject: "First steps",
		Text:    "She walked across the whole kitchen!",
	})

	require.NoError(t, err)
	require.True(t, out.Success)
	assert.Equal(t, KindMemory, out.Kind)
	assert.Equal(t, "mem-1", out.EntityID)

	require.Len(t, fx.memories.inserted, 1)
	inserted := fx.memories.inserted[0]
	assert.Equal(t, "acct-1", inserted.AccountID)
	assert.Equal(t, "First steps", inserted.Subject)
	assert.Equal(t, "She walked across the whole kitchen!", inserted.Content)
	assert.Equal(t, "email", inserted.ContentFormat)
	assert.Empty(t, inserted.RichContent)

	assert.Equal(t, 1, fx.notifier.memoryCreated)
}

func TestMemoryHandlerChildByName(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture(nil)

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		From:    "jane@example.com",
		Subject: "Memory for liam: First tooth",
		Text:    "Bottom left.",
	})

	require.NoError(t, err)
	require.True(t, out.Success)
	require.Len(t, fx.memories.inserted, 1)
	assert.Equal(t, "child-liam", fx.memories.inserted[0].ChildID)
	assert.Equal(t, "First tooth", fx.memories.inserted[0].Subject)
}

func TestMemoryHandlerFallsBackToYoungestChild(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture(nil)

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		From:    "jane@example.com",
		Subject: "Memory for Nobody: still works",
		Text:    "Unmatched names fall back.",
	})

	require.NoError(t, err)
	require.True(t, out.Success)
	require.Len(t, fx.memories.inserted, 1)
	assert.Equal(t, "child-emma", fx.memories.inserted[0].ChildID)
}

func TestMemoryHandlerUnknownSender(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture(nil)

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		From:    "stranger@example.com",
		Subject: "hi",
		Text:    "hello",
	})

	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Unknown sender", out.Reason)
	assert.Empty(t, fx.memories.inserted)
	assert.Zero(t, fx.notifier.memoryCreated)
}

func TestMemoryHandlerSPFFailure(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture(nil)

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		From:      "jane@example.com",
		Subject:   "hi",
		Text:      "hello",
		SPFResult: "fail",
	})

	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Unknown sender", out.Reason)
	assert.Empty(t, fx.memories.inserted)
}

func TestMemoryHandlerSoftfailSPFAccepted(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture(nil)

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		From:      "jane@example.com",
		Subject:   "hi",
		Text:      "hello",
		SPFResult: "softfail",
	})

	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestMemoryHandlerNoChildren(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byEmail: map[string]store.Account{
		"jane@example.com": {ID: "acct-1", Email: "jane@example.com"},
	}}
	memories := &fakeMemories{}
	handler := NewMemoryHandler(
		testLogger(), accounts, &fakeChildren{}, memories,
		&fakeUploader{}, &fakeNotifier{},
		mail.NewSanitizer(2000), 200, 10000,
	)

	out, err := handler.Handle(context.Background(), mail.InboundEmail{
		From:    "jane@example.com",
		Subject: "hi",
		Text:    "hello",
	})

	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "No child found", out.Reason)
	assert.Empty(t, memories.inserted)
}

func TestMemoryHandlerEmptyEmail(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture(nil)

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		From: "jane@example.com",
	})

	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Email is empty", out.Reason)
}

func TestMemoryHandlerMediaOnlyEmail(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture([]string{"https://media.example.com/acct-1/a.jpg"})

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		From:        "jane@example.com",
		Attachments: map[string]mail.AttachmentInfo{"a.jpg": {Filename: "a.jpg"}},
	})

	require.NoError(t, err)
	require.True(t, out.Success)
	require.Len(t, fx.memories.inserted, 1)
	assert.Equal(t, []string{"https://media.example.com/acct-1/a.jpg"}, fx.memories.inserted[0].MediaURLs)
}

func TestMemoryHandlerRichContentFromHTML(t *testing.T) {
	t.Parallel()
	fx := newMemoryFixture(nil)

	out, err := fx.handler.Handle(context.Background(), mail.InboundEmail{
		From:    "jane@example.com",
		Subject: "Beach day",
		HTML:    "<p>Waves were <strong>huge</strong></p>",
	})

	require.NoError(t, err)
	require.True(t, out.Success)
	require.Len(t, fx.memories.inserted, 1)
	assert.Contains(t, fx.memories.inserted[0].RichContent, "**huge**")
	assert.Contains(t, fx.memories.inserted[0].Content, "Waves were")
}

func TestMemoryHandlerLookupErrorPropagates(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{err: context.DeadlineExceeded}
	handler := NewMemoryHandler(
		testLogger(), accounts, &fakeChildren{}, &fakeMemories{},
		&fakeUploader{}, &fakeNotifier{},
		mail.NewSanitizer(2000), 200, 10000,
	)

	_, err := handler.Handle(context.Background(), mail.InboundEmail{
		From: "jane@example.com",
		Text: "hello",
	})
	require.Error(t, err)
}
