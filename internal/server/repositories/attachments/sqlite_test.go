package attachments

import (
	"context"
	"database/sql"
	"testing"

	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/dbx"
	"github.com/magicJie/vaultwarden/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", dbx.SQLiteDSN(":memory:"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE ciphers (
  uuid TEXT PRIMARY KEY NOT NULL
);
CREATE TABLE attachments (
  id TEXT PRIMARY KEY NOT NULL,
  cipher_uuid TEXT NOT NULL REFERENCES ciphers (uuid) ON DELETE CASCADE,
  file_name TEXT NOT NULL,
  file_size INTEGER NOT NULL,
  akey TEXT
);
INSERT INTO ciphers (uuid) VALUES ('c1'), ('c2'), ('c3');
`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB, cipherUUID string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM attachments WHERE cipher_uuid=?`, cipherUUID).Scan(&n))
	return n
}

func ids(as []*models.Attachment) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.ID)
	}
	return out
}

func TestSQLiteUpsert_InsertThenReplace(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, models.NewAttachment("a1", "c1", "first.txt", 10)))

	second := models.NewAttachment("a1", "c1", "second.txt", 20)
	key := "2.key"
	second.Key = &key
	require.NoError(t, r.Upsert(ctx, second))

	assert.Equal(t, 1, countRows(t, db, "c1"))

	got, err := r.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "second.txt", got.FileName)
	assert.Equal(t, int64(20), got.FileSize)
	require.NotNil(t, got.Key)
	assert.Equal(t, "2.key", *got.Key)
}

func TestSQLiteUpsert_UnknownCipherViolatesForeignKey(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	err := r.Upsert(context.Background(), models.NewAttachment("a1", "missing", "f", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestSQLiteDeleteByID_Idempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, models.NewAttachment("a1", "c1", "f", 1)))

	n, err := r.DeleteByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = r.DeleteByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLiteGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLiteSelectByCipherAndCiphers(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, models.NewAttachment("a1", "c1", "f", 1)))
	require.NoError(t, r.Upsert(ctx, models.NewAttachment("a2", "c1", "f", 1)))
	require.NoError(t, r.Upsert(ctx, models.NewAttachment("b1", "c2", "f", 1)))
	require.NoError(t, r.Upsert(ctx, models.NewAttachment("x1", "c3", "f", 1)))

	got, err := r.SelectByCipher(ctx, "c1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2"}, ids(got))

	got, err = r.SelectByCipher(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.SelectByCiphers(ctx, []string{"c1", "c2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2", "b1"}, ids(got))

	got, err = r.SelectByCiphers(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteCipherDeleteCascades(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, models.NewAttachment("a1", "c1", "f", 1)))
	require.NoError(t, r.Upsert(ctx, models.NewAttachment("a2", "c1", "f", 1)))

	_, err := db.Exec(`DELETE FROM ciphers WHERE uuid='c1'`)
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, db, "c1"))
}

func TestSQLiteRepository_WorksInsideTx(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).Upsert(ctx, models.NewAttachment("a1", "c1", "f", 1))
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db, "c1"))
}
