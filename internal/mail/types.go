// Package mail parses and cleans inbound email submissions delivered by
// the transactional-email provider's inbound-parse webhook.
package mail

// InboundEmail is the typed form of one inbound-parse submission. It is
// built once per request and never mutated afterwards.
type InboundEmail struct {
	To              string
	From            string // address only, display name stripped
	Subject         string
	Text            string
	HTML            string
	AttachmentCount int
	Attachments     map[string]AttachmentInfo
	EnvelopeJSON    string
	SPFResult       string
	DKIMResult      string
	MessageID       string
	InReplyTo       string
	References      string
}

// AttachmentInfo describes one attachment entry from the provider's
// attachment-info JSON field.
type AttachmentInfo struct {
	Filename  string `json:"filename"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Content   string `json:"content"` // base64
	ContentID string `json:"content-id"`
	Size      int64  `json:"size,omitempty"`
}
