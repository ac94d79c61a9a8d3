// Package models defines server-side data models persisted in the database.
package models

import (
	"strconv"

	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/shared"
)

// Attachment describes the metadata of one encrypted file bound to a cipher.
// The payload itself lives in a blob store at a location derived from
// (CipherUUID, ID).
type Attachment struct {
	// ID is the primary key and also the payload's file name.
	ID string
	// CipherUUID is the owning vault entry.
	CipherUUID string
	// FileName is the display name, usually ciphertext produced by the client.
	FileName string
	// FileSize is the byte length of the stored payload.
	FileSize int64
	// Key is the per-attachment key material, nil when the client sent none.
	Key *string
}

// NewAttachment builds an in-memory attachment without a key. Nothing is
// persisted until the record is saved.
func NewAttachment(id, cipherUUID, fileName string, fileSize int64) *Attachment {
	return &Attachment{
		ID:         id,
		CipherUUID: cipherUUID,
		FileName:   fileName,
		FileSize:   fileSize,
	}
}

// NewAttachmentID returns a random hex identifier suitable for a new attachment.
func NewAttachmentID() (string, error) {
	return shared.MakeRandHexString(common.AttachmentIDBytes)
}

// AttachmentRepresentation is the client-facing JSON shape of an attachment.
type AttachmentRepresentation struct {
	Id       string  `json:"Id"`
	Url      string  `json:"Url"`
	FileName string  `json:"FileName"`
	Size     string  `json:"Size"`
	SizeName string  `json:"SizeName"`
	Key      *string `json:"Key"`
	Object   string  `json:"Object"`
}

// Representation projects the attachment for API responses. host is the
// public base URL, e.g. "https://vault.example".
func (a *Attachment) Representation(host string) AttachmentRepresentation {
	return AttachmentRepresentation{
		Id:       a.ID,
		Url:      host + "/attachments/" + a.CipherUUID + "/" + a.ID,
		FileName: a.FileName,
		Size:     strconv.FormatInt(a.FileSize, 10),
		SizeName: shared.DisplaySize(a.FileSize),
		Key:      a.Key,
		Object:   common.AttachmentObjectType,
	}
}
