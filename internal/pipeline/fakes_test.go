package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tribehq/tribemail/internal/mail"
	"github.com/tribehq/tribemail/internal/store"
)

// In-memory fakes for the pipeline ports.

type fakeAccounts struct {
	byEmail map[string]store.Account
	err     error
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (store.Account, error) {
	if f.err != nil {
		return store.Account{}, f.err
	}
	account, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return store.Account{}, store.ErrNotFound
	}
	return account, nil
}

type fakeChildren struct {
	byAccount map[string][]store.Child
}

func (f *fakeChildren) ListByAccount(ctx context.Context, accountID string) ([]store.Child, error) {
	return f.byAccount[accountID], nil
}

type fakeMemories struct {
	inserted []store.NewMemory
	err      error
}

func (f *fakeMemories) Insert(ctx context.Context, memory store.NewMemory) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.inserted = append(f.inserted, memory)
	return fmt.Sprintf("mem-%d", len(f.inserted)), nil
}

type fakeUpdates struct {
	byID map[string]store.Update
}

func (f *fakeUpdates) GetByID(ctx context.Context, id string) (store.Update, error) {
	update, ok := f.byID[id]
	if !ok {
		return store.Update{}, store.ErrNotFound
	}
	return update, nil
}

type fakeRecipients struct {
	byEmail map[string]store.Recipient
}

func (f *fakeRecipients) GetActiveByEmail(ctx context.Context, accountID, email string) (store.Recipient, error) {
	recipient, ok := f.byEmail[strings.ToLower(email)]
	if !ok || recipient.AccountID != accountID {
		return store.Recipient{}, store.ErrNotFound
	}
	return recipient, nil
}

// fakeResponses enforces external_id uniqueness the way the table's
// unique index does.
type fakeResponses struct {
	byExternalID map[string]store.Response
	inserts      int
}

func (f *fakeResponses) GetByExternalID(ctx context.Context, externalID string) (store.Response, error) {
	response, ok := f.byExternalID[externalID]
	if !ok {
		return store.Response{}, store.ErrNotFound
	}
	return response, nil
}

func (f *fakeResponses) Insert(ctx context.Context, response store.NewResponse) (string, error) {
	if existing, ok := f.byExternalID[response.ExternalID]; ok {
		return existing.ID, nil
	}
	f.inserts++
	id := fmt.Sprintf("resp-%d", f.inserts)
	if f.byExternalID == nil {
		f.byExternalID = map[string]store.Response{}
	}
	f.byExternalID[response.ExternalID] = store.Response{
		ID:          id,
		UpdateID:    response.UpdateID,
		RecipientID: response.RecipientID,
		Content:     response.Content,
		MediaURLs:   response.MediaURLs,
		ExternalID:  response.ExternalID,
		ReceivedAt:  response.ReceivedAt,
	}
	return id, nil
}

type fakeUploader struct {
	urls []string
}

func (f *fakeUploader) Process(ctx context.Context, ownerID string, infos map[string]mail.AttachmentInfo) []string {
	if len(infos) == 0 {
		return nil
	}
	return f.urls
}

type fakeNotifier struct {
	memoryCreated    int
	responseReceived int
}

func (f *fakeNotifier) MemoryCreated(ctx context.Context, accountID, authorEmail, memoryID, subject string) {
	f.memoryCreated++
}

func (f *fakeNotifier) ResponseReceived(ctx context.Context, accountID, updateID, responseID, from string) {
	f.responseReceived++
}

func testLogger() *slog.Logger { return slog.Default() }
