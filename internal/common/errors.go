// Package common defines shared constants and sentinel errors used across
// the attachment store layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorPresignUnsupported = errors.New("storage backend cannot presign downloads")

	// Validation errors.
	ErrorInvalidCipherUUID = errors.New("invalid cipher uuid")
	ErrorEmptyAttachmentID = errors.New("empty attachment id")

	// Configuration errors.
	ErrorUnknownDriver         = errors.New("unknown database driver")
	ErrorUnknownStorageBackend = errors.New("unknown storage backend")
)
