package mail

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/k3a/html2text"
)

// Sanitizer turns a raw email body into short plain text suitable for
// storage. It is a heuristic cleaner, not a thread parser; over-aggressive
// stripping is accepted in exchange for short, relevant content.
type Sanitizer struct {
	maxLen int
}

func NewSanitizer(maxLen int) *Sanitizer {
	if maxLen <= 0 {
		maxLen = 2000
	}
	return &Sanitizer{maxLen: maxLen}
}

var (
	replyMarkerRe  = regexp.MustCompile(`(?i)^\s*On\s.+\bwrote:`)
	quotedHeaderRe = regexp.MustCompile(`(?i)^\s*(From|To|Date|Subject):`)
	mobileSigRe    = regexp.MustCompile(`(?i)^\s*sent from my (iphone|ipad|android|galaxy|mobile device)\b.*$`)
	outlookSigRe   = regexp.MustCompile(`(?i)^\s*get outlook for (ios|android)\b.*$`)
	sigDelimiterRe = regexp.MustCompile(`^--\s*$`)
	htmlTagRe      = regexp.MustCompile(`<[^>]*>`)
	htmlEntityRe   = regexp.MustCompile(`&#?[a-zA-Z0-9]{1,10};`)
	spaceRunRe     = regexp.MustCompile(`[ \t]+`)
	blankRunRe     = regexp.MustCompile(`\n{4,}`)
	separatorRe    = regexp.MustCompile(`^[-_=]{5,}$`)
	quotedLineRe   = regexp.MustCompile(`^>+`)
	stopMarkerRe   = regexp.MustCompile(`(?i)^(On\s.+\bwrote:|From:|Sent:)`)
)

// CleanBody sanitizes an email body, preferring the plain-text part and
// falling back to the HTML part.
func (s *Sanitizer) CleanBody(text, html string) string {
	if strings.TrimSpace(text) != "" {
		return s.Clean(text)
	}
	if strings.TrimSpace(html) != "" {
		return s.Clean(html2text.HTML2Text(html))
	}
	return ""
}

// Clean runs the full sanitation pass: forwarded-thread and signature
// removal, header stripping, HTML removal, whitespace normalization,
// quoted-line filtering, and truncation. Running Clean on its own output
// yields the same result.
func (s *Sanitizer) Clean(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if replyMarkerRe.MatchString(line) {
			break
		}
		if sigDelimiterRe.MatchString(line) {
			break
		}
		if quotedHeaderRe.MatchString(line) {
			continue
		}
		if mobileSigRe.MatchString(line) || outlookSigRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = htmlTagRe.ReplaceAllString(text, " ")
	text = htmlEntityRe.ReplaceAllString(text, " ")

	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")

	lines = strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimLeft(line, " \t")
		if len(out) == 0 && line == "" {
			continue
		}
		if quotedLineRe.MatchString(line) {
			continue
		}
		if separatorRe.MatchString(line) {
			continue
		}
		if stopMarkerRe.MatchString(line) {
			break
		}
		out = append(out, line)
	}

	return s.truncate(strings.TrimSpace(strings.Join(out, "\n")))
}

// truncate caps the text at maxLen bytes, preferring to cut at a line
// boundary and never splitting a UTF-8 sequence.
func (s *Sanitizer) truncate(text string) string {
	if len(text) <= s.maxLen {
		return text
	}
	cut := s.maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	head := text[:cut]
	if idx := strings.LastIndexByte(head, '\n'); idx > 0 {
		head = head[:idx]
	}
	return strings.TrimSpace(head)
}
