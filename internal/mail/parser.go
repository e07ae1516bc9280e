package mail

import (
	"encoding/json"
	"log/slog"
	netmail "net/mail"
	"net/url"
	"strconv"
	"strings"
)

// ParseForm converts a parsed multipart form into an InboundEmail. Every
// field is optional with a zero default; a missing field is never an
// error. Only the webhook handler decides which fields are required.
func ParseForm(log *slog.Logger, form url.Values) InboundEmail {
	in := InboundEmail{
		To:           strings.TrimSpace(form.Get("to")),
		From:         normalizeFrom(form.Get("from")),
		Subject:      form.Get("subject"),
		Text:         form.Get("text"),
		HTML:         form.Get("html"),
		EnvelopeJSON: form.Get("envelope"),
		SPFResult:    form.Get("SPF"),
		DKIMResult:   form.Get("dkim"),
		MessageID:    strings.TrimSpace(form.Get("message-id")),
		InReplyTo:    strings.TrimSpace(form.Get("in-reply-to")),
		References:   form.Get("references"),
	}

	if n, err := strconv.Atoi(strings.TrimSpace(form.Get("attachments"))); err == nil && n > 0 {
		in.AttachmentCount = n
	}

	if raw := form.Get("attachment-info"); raw != "" {
		var infos map[string]AttachmentInfo
		if err := json.Unmarshal([]byte(raw), &infos); err != nil {
			// Tolerated: the email is still processable without media.
			log.Warn("attachment-info decode failed", slog.Any("error", err))
		} else {
			for name, info := range infos {
				if info.Filename == "" {
					info.Filename = name
					infos[name] = info
				}
			}
			in.Attachments = infos
		}
	}

	return in
}

// normalizeFrom reduces "Name <address>" to the bare address.
func normalizeFrom(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if addr, err := netmail.ParseAddress(raw); err == nil {
		return addr.Address
	}
	return raw
}

// EnvelopeMessageID extracts the message_id from the raw envelope JSON,
// if present.
func EnvelopeMessageID(envelopeJSON string) string {
	if envelopeJSON == "" {
		return ""
	}
	var envelope struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal([]byte(envelopeJSON), &envelope); err != nil {
		return ""
	}
	return strings.TrimSpace(envelope.MessageID)
}
