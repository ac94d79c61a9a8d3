// Package attachments provides the persistence layer for attachment metadata.
//
// Two implementations share the Repository contract: PostgresRepository for
// the pgx driver and SQLiteRepository for modernc.org/sqlite. Both work over
// a dbx.DBTX so they can run on a pool or inside a transaction.
package attachments

import (
	"context"
	"database/sql"

	"github.com/magicJie/vaultwarden/internal/server/models"
)

// Repository describes the row-level operations on the attachments table.
type Repository interface {
	// Upsert inserts the attachment or replaces every column of the row with
	// the same id.
	Upsert(ctx context.Context, a *models.Attachment) error

	// DeleteByID removes the row with the given id and reports how many rows
	// were removed. Zero is not an error.
	DeleteByID(ctx context.Context, id string) (int64, error)

	// GetByID returns common.ErrorNotFound when no row matches.
	GetByID(ctx context.Context, id string) (*models.Attachment, error)

	SelectByCipher(ctx context.Context, cipherUUID string) ([]*models.Attachment, error)
	SelectByCiphers(ctx context.Context, cipherUUIDs []string) ([]*models.Attachment, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttachment(s rowScanner) (*models.Attachment, error) {
	var (
		a   models.Attachment
		key sql.NullString
	)
	if err := s.Scan(&a.ID, &a.CipherUUID, &a.FileName, &a.FileSize, &key); err != nil {
		return nil, err
	}
	if key.Valid {
		a.Key = &key.String
	}
	return &a, nil
}

func scanAttachments(rows *sql.Rows) ([]*models.Attachment, error) {
	defer rows.Close()

	result := []*models.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullableKey(key *string) sql.NullString {
	if key == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *key, Valid: true}
}
