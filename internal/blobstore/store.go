// Package blobstore abstracts where attachment payloads live.
//
// Every payload is addressed by a location derived only from the owning
// cipher and the attachment id. LocalStore maps it to
// {root}/{cipher_uuid}/{id} on disk, S3Store to an object key
// {prefix}/{cipher_uuid}/{id} in a bucket.
package blobstore

import (
	"context"
	"io"
	"time"
)

// Store is the payload collaborator of the attachment service.
type Store interface {
	// Path returns the deterministic location of a payload. It does no I/O.
	Path(cipherUUID, id string) string

	// Put writes a payload at path, replacing any previous content.
	Put(ctx context.Context, path string, r io.Reader) error

	// Remove deletes the payload at path. Callers treat it as best-effort.
	Remove(ctx context.Context, path string) error
}

// Presigner is implemented by stores that can hand out temporary download
// URLs, so payload bytes never pass through the server.
type Presigner interface {
	PresignGet(ctx context.Context, path string, ttl time.Duration) (string, error)
}
