package mail

import (
	"regexp"
	"strings"
)

// ParsedSubject is the result of splitting a subject line into an
// optional child-name hint and the remaining human content.
type ParsedSubject struct {
	ChildName string
	Content   string
}

var (
	memorySubjectRe = regexp.MustCompile(`(?i)^Memory\s+for\s+([^:]+):\s*(.+)$`)
	hasLetterRe     = regexp.MustCompile(`[a-zA-Z]`)
)

// ParseSubject extracts a "Memory for <child>: <content>" hint from the
// subject. A captured name is only accepted when it is 1-50 characters and
// contains at least one letter; anything else falls through to the whole
// trimmed subject as content.
func ParseSubject(subject string) ParsedSubject {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return ParsedSubject{}
	}

	if m := memorySubjectRe.FindStringSubmatch(trimmed); m != nil {
		name := strings.TrimSpace(m[1])
		if len(name) >= 1 && len(name) <= 50 && hasLetterRe.MatchString(name) {
			return ParsedSubject{
				ChildName: name,
				Content:   strings.TrimSpace(m[2]),
			}
		}
	}

	return ParsedSubject{Content: trimmed}
}
