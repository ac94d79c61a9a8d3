package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/dbx"
	"github.com/magicJie/vaultwarden/internal/server/models"
)

// PostgresRepository implements attachment storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes the attachment keyed by id. A repeated call with the same id
// overwrites every column.
func (r *PostgresRepository) Upsert(ctx context.Context, a *models.Attachment) error {
	query := `
		INSERT INTO attachments (id, cipher_uuid, file_name, file_size, akey)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			cipher_uuid = EXCLUDED.cipher_uuid,
			file_name = EXCLUDED.file_name,
			file_size = EXCLUDED.file_size,
			akey = EXCLUDED.akey;
	`
	res, err := r.db.ExecContext(ctx, query, a.ID, a.CipherUUID, a.FileName, a.FileSize, nullableKey(a.Key))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id=$1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attachment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	query := `SELECT id, cipher_uuid, file_name, file_size, akey FROM attachments WHERE id=$1`

	a, err := scanAttachment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select attachment: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) SelectByCipher(ctx context.Context, cipherUUID string) ([]*models.Attachment, error) {
	query := `SELECT id, cipher_uuid, file_name, file_size, akey FROM attachments WHERE cipher_uuid=$1`

	rows, err := r.db.QueryContext(ctx, query, cipherUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	return scanAttachments(rows)
}

func (r *PostgresRepository) SelectByCiphers(ctx context.Context, cipherUUIDs []string) ([]*models.Attachment, error) {
	if len(cipherUUIDs) == 0 {
		return []*models.Attachment{}, nil
	}

	// pgx encodes a []string argument as text[].
	query := `SELECT id, cipher_uuid, file_name, file_size, akey FROM attachments WHERE cipher_uuid = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, cipherUUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	return scanAttachments(rows)
}
