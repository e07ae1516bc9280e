// Package blobstore abstracts the media blob storage consumed by the
// attachment processor.
package blobstore

import "context"

// Store persists raw media bytes under a storage key and exposes a
// public URL for each stored object.
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}
