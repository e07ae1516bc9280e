// Package localfs implements blobstore.Store on the local filesystem.
// Files written under <dataRoot>/media/<key> are served by the static
// media host at <publicBase>/<key>.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Provider struct {
	dataRoot   string
	publicBase string
}

// New creates a filesystem-backed blob store rooted at dataRoot.
func New(dataRoot, publicBase string) (*Provider, error) {
	abs, err := filepath.Abs(dataRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}
	return &Provider{
		dataRoot:   abs,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

func (p *Provider) Upload(_ context.Context, key string, data []byte, _ string) error {
	dest, err := p.hostPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (p *Provider) PublicURL(key string) string {
	return p.publicBase + "/" + strings.TrimLeft(key, "/")
}

// hostPath converts a storage key into a file path under dataRoot,
// rejecting absolute keys and traversal attempts.
func (p *Provider) hostPath(key string) (string, error) {
	clean := filepath.Clean(key)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("absolute key is forbidden: %s", key)
	}
	if strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("path traversal is forbidden: %s", key)
	}
	joined := filepath.Join(p.dataRoot, "media", clean)
	if !strings.HasPrefix(joined, p.dataRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes data root: %s", key)
	}
	return joined, nil
}
