// Package common contains shared constants and sentinel errors used across
// the attachment store components.
package common

// AttachmentObjectType is the fixed discriminator emitted in the "Object"
// field of every attachment representation.
const AttachmentObjectType = "attachment"

// AttachmentIDBytes is the number of random bytes behind a generated
// attachment id (hex encoded, so ids are twice as long).
const AttachmentIDBytes = 10
