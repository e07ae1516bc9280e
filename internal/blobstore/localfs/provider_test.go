package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadWritesUnderMediaRoot(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	p, err := New(root, "https://media.example.com/")
	require.NoError(t, err)

	err = p.Upload(context.Background(), "acct-1/email-attachments/photo.jpg", []byte("data"), "image/jpeg")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(root, "media", "acct-1", "email-attachments", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestUploadRejectsTraversal(t *testing.T) {
	t.Parallel()
	p, err := New(t.TempDir(), "https://media.example.com")
	require.NoError(t, err)

	assert.Error(t, p.Upload(context.Background(), "../escape.jpg", []byte("x"), "image/jpeg"))
	assert.Error(t, p.Upload(context.Background(), "a/../../../escape.jpg", []byte("x"), "image/jpeg"))
	assert.Error(t, p.Upload(context.Background(), "/abs/path.jpg", []byte("x"), "image/jpeg"))
}

func TestPublicURL(t *testing.T) {
	t.Parallel()
	p, err := New(t.TempDir(), "https://media.example.com/")
	require.NoError(t, err)

	assert.Equal(t, "https://media.example.com/acct-1/a.jpg", p.PublicURL("acct-1/a.jpg"))
	assert.Equal(t, "https://media.example.com/a.jpg", p.PublicURL("/a.jpg"))
}
