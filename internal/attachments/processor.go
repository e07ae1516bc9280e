// Package attachments validates, decodes, and persists inbound email
// attachments as media, returning public URLs for the stored files.
package attachments

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tribehq/tribemail/internal/blobstore"
	"github.com/tribehq/tribemail/internal/mail"
)

var imageExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
	"heif": "image/heif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"svg":  "image/svg+xml",
}

var videoExtensions = map[string]string{
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"flv":  "video/x-flv",
	"wmv":  "video/x-ms-wmv",
	"m4v":  "video/x-m4v",
	"3gp":  "video/3gpp",
}

// Processor uploads validated attachments to the blob store.
type Processor struct {
	store    blobstore.Store
	maxBytes int64
	logger   *slog.Logger
}

func NewProcessor(log *slog.Logger, store blobstore.Store, maxBytes int64) *Processor {
	return &Processor{
		store:    store,
		maxBytes: maxBytes,
		logger:   log.With(slog.String("component", "attachments")),
	}
}

// Process uploads every acceptable attachment and returns the public URLs
// of those that succeeded. Failures are isolated per attachment: an
// unsupported, oversized, malformed, or unstorable attachment is logged
// and skipped without affecting the rest of the batch.
func (p *Processor) Process(ctx context.Context, ownerID string, infos map[string]mail.AttachmentInfo) []string {
	if len(infos) == 0 {
		return nil
	}

	urls := make([]string, 0, len(infos))
	for name, info := range infos {
		url, err := p.processOne(ctx, ownerID, info)
		if err != nil {
			p.logger.Warn("attachment skipped",
				slog.String("filename", name),
				slog.Any("error", err))
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

func (p *Processor) processOne(ctx context.Context, ownerID string, info mail.AttachmentInfo) (string, error) {
	ext := fileExtension(info.Filename)
	contentType, ok := lookupContentType(ext)
	if !ok {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
	if info.Size > 0 && info.Size > p.maxBytes {
		return "", fmt.Errorf("attachment too large: %d > %d bytes", info.Size, p.maxBytes)
	}
	if strings.Contains(info.Filename, "..") ||
		strings.ContainsAny(info.Filename, "/\\") {
		return "", fmt.Errorf("unsafe filename %q", info.Filename)
	}

	data, err := base64.StdEncoding.DecodeString(info.Content)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return "", fmt.Errorf("attachment too large: %d > %d bytes", len(data), p.maxBytes)
	}

	// The stored name never carries untrusted filename text beyond the
	// extension itself.
	key := path.Join(
		ownerID,
		"email-attachments",
		fmt.Sprintf("%d-%s.%s", time.Now().Unix(), uuid.NewString(), ext),
	)

	if err := p.store.Upload(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return p.store.PublicURL(key), nil
}

func fileExtension(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	return strings.ToLower(ext)
}

func lookupContentType(ext string) (string, bool) {
	if mime, ok := imageExtensions[ext]; ok {
		return mime, true
	}
	if mime, ok := videoExtensions[ext]; ok {
		return mime, true
	}
	return "application/octet-stream", false
}
