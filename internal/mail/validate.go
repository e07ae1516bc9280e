package mail

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSubjectTooLong    = errors.New("subject exceeds maximum length")
	ErrSubjectDangerous  = errors.New("subject contains disallowed content")
	ErrContentTooLong    = errors.New("content exceeds maximum length")
	ErrEmptySubmission   = errors.New("email has no subject, content, or media")
	ErrSPFFailed         = errors.New("sender failed SPF verification")
)

// injectionMarkers are obvious script-injection fragments that cause a
// hard reject rather than a cleanup attempt.
var injectionMarkers = []string{"<script", "javascript:"}

// ValidateSubject bound-checks a subject line. Empty is valid.
func ValidateSubject(subject string, maxLen int) error {
	if len(subject) > maxLen {
		return fmt.Errorf("%w: %d > %d", ErrSubjectTooLong, len(subject), maxLen)
	}
	lowered := strings.ToLower(subject)
	for _, marker := range injectionMarkers {
		if strings.Contains(lowered, marker) {
			return ErrSubjectDangerous
		}
	}
	return nil
}

// ValidateContent bound-checks sanitized body content. Empty is valid; a
// memory may consist of only media or only a subject.
func ValidateContent(content string, maxLen int) error {
	if len(content) > maxLen {
		return fmt.Errorf("%w: %d > %d", ErrContentTooLong, len(content), maxLen)
	}
	return nil
}

// ValidateNotEmpty rejects a submission with no subject, no content, and
// no successfully uploaded media.
func ValidateNotEmpty(subject, content string, mediaURLs []string) error {
	if strings.TrimSpace(subject) == "" && strings.TrimSpace(content) == "" && len(mediaURLs) == 0 {
		return ErrEmptySubmission
	}
	return nil
}
