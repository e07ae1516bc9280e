// Package store implements the Postgres row stores behind the pipeline's
// narrow lookup and writer ports.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned by point lookups that match no row.
var ErrNotFound = errors.New("not found")

// Account is a family administrator profile. The pipeline reads accounts
// by email and never creates them.
type Account struct {
	ID          string
	Email       string
	DisplayName string
}

type Child struct {
	ID        string
	AccountID string
	Name      string
	BirthDate time.Time
}

// NewMemory is the insert payload for a draft memory record.
type NewMemory struct {
	AccountID     string
	ChildID       string
	Subject       string
	Content       string
	RichContent   string
	ContentFormat string
	MediaURLs     []string
}

type Memory struct {
	ID                 string
	AccountID          string
	ChildID            string
	Subject            string
	Content            string
	RichContent        string
	ContentFormat      string
	MediaURLs          []string
	DistributionStatus string
	CreatedAt          time.Time
}

// Update is an existing, previously distributed memory record that
// recipients reply to. Read-only here.
type Update struct {
	ID        string
	AccountID string
}

type Recipient struct {
	ID        string
	AccountID string
	Email     string
	IsActive  bool
}

// NewResponse is the insert payload for a threaded reply. ExternalID is
// the inbound message id and must be unique across all responses.
type NewResponse struct {
	UpdateID    string
	RecipientID string
	Content     string
	MediaURLs   []string
	ExternalID  string
	ReceivedAt  time.Time
}

type Response struct {
	ID          string
	UpdateID    string
	RecipientID string
	Channel     string
	Content     string
	MediaURLs   []string
	ExternalID  string
	ReceivedAt  time.Time
}
