package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSubject(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateSubject("First steps", 200))
	assert.NoError(t, ValidateSubject("", 200))

	err := ValidateSubject(strings.Repeat("x", 201), 200)
	require.ErrorIs(t, err, ErrSubjectTooLong)

	require.ErrorIs(t, ValidateSubject("hi <SCRIPT>alert(1)</script>", 200), ErrSubjectDangerous)
	require.ErrorIs(t, ValidateSubject("click javascript:void(0)", 200), ErrSubjectDangerous)
}

func TestValidateContent(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateContent("", 10))
	assert.NoError(t, ValidateContent("short", 10))
	require.ErrorIs(t, ValidateContent(strings.Repeat("y", 11), 10), ErrContentTooLong)
}

func TestValidateNotEmpty(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, ValidateNotEmpty("", "", nil), ErrEmptySubmission)
	require.ErrorIs(t, ValidateNotEmpty("   ", "\n\t", nil), ErrEmptySubmission)

	assert.NoError(t, ValidateNotEmpty("subject only", "", nil))
	assert.NoError(t, ValidateNotEmpty("", "content only", nil))
	assert.NoError(t, ValidateNotEmpty("", "", []string{"https://cdn.example.com/a.jpg"}))
}
