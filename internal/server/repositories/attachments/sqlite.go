package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/dbx"
	"github.com/magicJie/vaultwarden/internal/server/models"
)

// SQLiteRepository is the SQLite flavour of the attachment repository. It
// expects foreign keys to be enabled on the connection (see dbx.SQLiteDSN),
// otherwise deleting a cipher does not cascade.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, a *models.Attachment) error {
	query := `
		INSERT INTO attachments (id, cipher_uuid, file_name, file_size, akey)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			cipher_uuid = excluded.cipher_uuid,
			file_name = excluded.file_name,
			file_size = excluded.file_size,
			akey = excluded.akey;
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

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id=?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attachment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	query := `SELECT id, cipher_uuid, file_name, file_size, akey FROM attachments WHERE id=?`

	a, err := scanAttachment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select attachment: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) SelectByCipher(ctx context.Context, cipherUUID string) ([]*models.Attachment, error) {
	query := `SELECT id, cipher_uuid, file_name, file_size, akey FROM attachments WHERE cipher_uuid=?`

	rows, err := r.db.QueryContext(ctx, query, cipherUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	return scanAttachments(rows)
}

func (r *SQLiteRepository) SelectByCiphers(ctx context.Context, cipherUUIDs []string) ([]*models.Attachment, error) {
	if len(cipherUUIDs) == 0 {
		return []*models.Attachment{}, nil
	}

	query := `SELECT id, cipher_uuid, file_name, file_size, akey FROM attachments WHERE cipher_uuid IN (` +
		placeholders(len(cipherUUIDs)) + `)`

	rows, err := r.db.QueryContext(ctx, query, toArgs(cipherUUIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	return scanAttachments(rows)
}

// placeholders renders "?, ?, ..." for n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
