// Package services implements the attachment store: metadata persistence
// through the repository layer plus cleanup of the payloads in a blob store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/magicJie/vaultwarden/internal/blobstore"
	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/dbx"
	"github.com/magicJie/vaultwarden/internal/logging"
	"github.com/magicJie/vaultwarden/internal/retryx"
	"github.com/magicJie/vaultwarden/internal/server/models"
	"github.com/magicJie/vaultwarden/internal/server/repositories/attachments"
	"github.com/magicJie/vaultwarden/internal/server/repositories/repomanager"
)

// AttachmentService owns the lifecycle of attachment rows and their payloads.
// It holds no locks; concurrent callers rely on the database for isolation.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       blobstore.Store
	logger      logging.Logger
	policy      retryx.Policy
	metrics     *Metrics
}

// AttachmentOption customises an AttachmentService.
type AttachmentOption func(*AttachmentService)

func WithLogger(l logging.Logger) AttachmentOption {
	return func(s *AttachmentService) { s.logger = l }
}

// WithDeletePolicy overrides retryx.DefaultDeletePolicy for row deletes.
func WithDeletePolicy(p retryx.Policy) AttachmentOption {
	return func(s *AttachmentService) { s.policy = p }
}

func WithMetrics(m *Metrics) AttachmentOption {
	return func(s *AttachmentService) { s.metrics = m }
}

func NewAttachmentService(db *sql.DB, repomanager repomanager.RepositoryManager, files blobstore.Store, opts ...AttachmentOption) *AttachmentService {
	s := &AttachmentService{
		db:          db,
		repomanager: repomanager,
		files:       files,
		logger:      logging.NewNopLogger(),
		policy:      retryx.DefaultDeletePolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "attachments")
	return s
}

// FilePath returns where the payload of a lives in the blob store.
func (s *AttachmentService) FilePath(a *models.Attachment) string {
	return s.files.Path(a.CipherUUID, a.ID)
}

// Representation projects a for API responses under the given public host.
func (s *AttachmentService) Representation(a *models.Attachment, host string) models.AttachmentRepresentation {
	return a.Representation(host)
}

// DownloadURL returns a temporary URL for the payload of a, valid for ttl.
// Only stores implementing blobstore.Presigner support it.
func (s *AttachmentService) DownloadURL(ctx context.Context, a *models.Attachment, ttl time.Duration) (string, error) {
	p, ok := s.files.(blobstore.Presigner)
	if !ok {
		return "", common.ErrorPresignUnsupported
	}
	return p.PresignGet(ctx, s.FilePath(a), ttl)
}

// Save upserts a by id. It is used both for the initial insert and for later
// updates such as attaching a key. Errors are returned without retrying.
func (s *AttachmentService) Save(ctx context.Context, a *models.Attachment) error {
	err := s.save(ctx, s.repomanager.Attachments(s.db), a)
	s.metrics.observe("save", err)
	return err
}

// SaveAll upserts several attachments in one transaction: either all rows
// are written or none.
func (s *AttachmentService) SaveAll(ctx context.Context, as []*models.Attachment) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Attachments(tx)
		for _, a := range as {
			if err := s.save(ctx, repo, a); err != nil {
				return err
			}
		}
		return nil
	})
	s.metrics.observe("save_all", err)
	return err
}

// Upload saves a and writes its payload from r. When the payload cannot be
// stored the row is deleted again, so no attachment points at a missing file.
func (s *AttachmentService) Upload(ctx context.Context, a *models.Attachment, r io.Reader) error {
	if err := s.save(ctx, s.repomanager.Attachments(s.db), a); err != nil {
		s.metrics.observe("upload", err)
		return err
	}

	if err := s.files.Put(ctx, s.FilePath(a), r); err != nil {
		if derr := s.deleteRow(ctx, a); derr != nil {
			s.logger.Error(ctx, "attachment row left without payload", "id", a.ID, "error", derr)
		}
		err = fmt.Errorf("store payload of %s: %w", a.ID, err)
		s.metrics.observe("upload", err)
		return err
	}

	s.metrics.observe("upload", nil)
	return nil
}

func (s *AttachmentService) save(ctx context.Context, repo attachments.Repository, a *models.Attachment) error {
	if a.ID == "" {
		return common.ErrorEmptyAttachmentID
	}
	if err := repo.Upsert(ctx, a); err != nil {
		return fmt.Errorf("save attachment %s: %w", a.ID, err)
	}
	return nil
}

// Delete removes a in two phases. The row delete is authoritative and is
// retried under the delete policy; a row that is already gone counts as
// deleted. Only once the row is gone is the payload removed, best-effort:
// a failure there is logged and never returned.
//
// When every row attempt fails the error of the last attempt is returned
// and the payload is left untouched.
func (s *AttachmentService) Delete(ctx context.Context, a *models.Attachment) error {
	if err := s.deleteRow(ctx, a); err != nil {
		s.metrics.observe("delete", err)
		return err
	}

	s.cleanupPayload(ctx, a)
	s.metrics.observe("delete", nil)
	return nil
}

func (s *AttachmentService) deleteRow(ctx context.Context, a *models.Attachment) error {
	repo := s.repomanager.Attachments(s.db)

	err := retryx.Do(ctx, s.policy, func(ctx context.Context) error {
		_, err := repo.DeleteByID(ctx, a.ID)
		return err
	}, func(attempt, retriesLeft uint64, err error) {
		s.metrics.retry()
		s.logger.Info(ctx, "attachment delete retry",
			"id", a.ID, "attempt", attempt, "retries_left", retriesLeft, "error", err)
	})
	if err != nil {
		s.metrics.deleteFailed()
		s.logger.Error(ctx, "attachment delete failed after retries",
			"id", a.ID, "attempts", s.policy.Attempts(), "error", err)
		return err
	}
	return nil
}

func (s *AttachmentService) cleanupPayload(ctx context.Context, a *models.Attachment) {
	path := s.FilePath(a)
	if err := s.files.Remove(ctx, path); err != nil {
		s.metrics.cleanupFailed()
		s.logger.Info(ctx, "attachment payload not removed", "id", a.ID, "path", path, "error", err)
	}
}

// DeleteAllByCipher deletes every attachment of cipherUUID one by one with
// Delete, in lookup order. It stops at the first failure and returns that
// error unchanged; attachments deleted before it stay deleted.
func (s *AttachmentService) DeleteAllByCipher(ctx context.Context, cipherUUID string) error {
	as, err := s.FindByCipher(ctx, cipherUUID)
	if err != nil {
		return err
	}

	for _, a := range as {
		if err := s.Delete(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// FindByID returns the attachment with the given id. found is false, with a
// nil error, when no such row exists.
func (s *AttachmentService) FindByID(ctx context.Context, id string) (a *models.Attachment, found bool, err error) {
	a, err = s.repomanager.Attachments(s.db).GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// FindByCipher lists the attachments owned by cipherUUID. The slice is empty,
// not nil, when there are none.
func (s *AttachmentService) FindByCipher(ctx context.Context, cipherUUID string) ([]*models.Attachment, error) {
	as, err := s.repomanager.Attachments(s.db).SelectByCipher(ctx, cipherUUID)
	if err != nil {
		return nil, fmt.Errorf("error loading attachments: %w", err)
	}
	return as, nil
}

// FindByCiphers lists the attachments owned by any of cipherUUIDs.
func (s *AttachmentService) FindByCiphers(ctx context.Context, cipherUUIDs []string) ([]*models.Attachment, error) {
	as, err := s.repomanager.Attachments(s.db).SelectByCiphers(ctx, cipherUUIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading attachments: %w", err)
	}
	return as, nil
}

// MustFindByCipher is FindByCipher for callers that treat a failing lookup
// against a healthy store as unrecoverable. It panics on error.
func (s *AttachmentService) MustFindByCipher(ctx context.Context, cipherUUID string) []*models.Attachment {
	as, err := s.FindByCipher(ctx, cipherUUID)
	if err != nil {
		s.logger.Error(ctx, "attachment lookup failed", "cipher_uuid", cipherUUID, "error", err)
		panic(err)
	}
	return as
}

// MustFindByCiphers is FindByCiphers that panics on error.
func (s *AttachmentService) MustFindByCiphers(ctx context.Context, cipherUUIDs []string) []*models.Attachment {
	as, err := s.FindByCiphers(ctx, cipherUUIDs)
	if err != nil {
		s.logger.Error(ctx, "attachment lookup failed", "ciphers", len(cipherUUIDs), "error", err)
		panic(err)
	}
	return as
}
