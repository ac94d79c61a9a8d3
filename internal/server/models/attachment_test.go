package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttachment_HasNoKey(t *testing.T) {
	a := NewAttachment("a1", "c1", "f.txt", 2048)

	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "c1", a.CipherUUID)
	assert.Equal(t, "f.txt", a.FileName)
	assert.Equal(t, int64(2048), a.FileSize)
	assert.Nil(t, a.Key)
}

func TestNewAttachmentID(t *testing.T) {
	a, err := NewAttachmentID()
	require.NoError(t, err)
	b, err := NewAttachmentID()
	require.NoError(t, err)

	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
}

func TestRepresentation_Shape(t *testing.T) {
	a := NewAttachment("a1", "c1", "f.txt", 2048)

	r := a.Representation("https://vault.example")

	assert.Equal(t, "a1", r.Id)
	assert.Equal(t, "https://vault.example/attachments/c1/a1", r.Url)
	assert.Equal(t, "f.txt", r.FileName)
	assert.Equal(t, "2048", r.Size)
	assert.Equal(t, "2 KB", r.SizeName)
	assert.Nil(t, r.Key)
	assert.Equal(t, "attachment", r.Object)
}

func TestRepresentation_JSON(t *testing.T) {
	a := NewAttachment("a1", "c1", "f.txt", 1536)

	b, err := json.Marshal(a.Representation("https://vault.example"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Id": "a1",
		"Url": "https://vault.example/attachments/c1/a1",
		"FileName": "f.txt",
		"Size": "1536",
		"SizeName": "1.5 KB",
		"Key": null,
		"Object": "attachment"
	}`, string(b))

	key := "2.k3y"
	a.Key = &key
	b, err = json.Marshal(a.Representation("https://vault.example"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Key":"2.k3y"`)
}
