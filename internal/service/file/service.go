package file

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	"github.com/clinicmgr/clinic-api/internal/storage"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
	"github.com/clinicmgr/clinic-api/pkg/logger"
)

// Service gates file operations. Payloads stream to the object store;
// ownership metadata lands in Postgres. There is no update operation on
// files for any role, uploads are immutable.
type Service struct {
	repo   repository.FileRepository
	store  storage.ObjectStore
	engine *policy.Engine
	log    *logger.Logger
}

func NewService(repo repository.FileRepository, store storage.ObjectStore,
	engine *policy.Engine, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, engine: engine, log: log}
}

// Upload streams the payload into the object store under a fresh unique
// name, then records the metadata row. The stored object name prefixes the
// original filename with a UUID so uploads never collide.
func (s *Service) Upload(ctx context.Context, id model.Identity, req *model.FileUploadRequest,
	originalName, contentType string, payload io.Reader) (*model.File, error) {
	if err := policy.Authorize(id, policy.ResourceFile, policy.ActionCreate); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s_%s", uuid.New().String(), originalName)

	url, err := s.store.Upload(ctx, objectName, contentType, payload)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	created, err := s.repo.Create(ctx, &model.File{
		ObjectName:    objectName,
		OriginalName:  originalName,
		URL:           url,
		MimeType:      contentType,
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		DiagnosisID:   req.DiagnosisID,
		AppointmentID: req.AppointmentID,
	})
	if err != nil {
		// The metadata row failed, so the stored object is unreachable.
		// Best-effort cleanup; an orphan is only wasted space.
		if rmErr := s.store.Remove(ctx, objectName); rmErr != nil {
			s.log.Error(rmErr, "failed to remove orphaned object", "object", objectName)
		}
		return nil, err
	}

	return created, nil
}

func (s *Service) List(ctx context.Context, id model.Identity) ([]*model.File, error) {
	if err := policy.Authorize(id, policy.ResourceFile, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, policy.ScopeFor(id, policy.ResourceFile))
}

func (s *Service) Get(ctx context.Context, id model.Identity, fileID int64) (*model.File, error) {
	if err := policy.Authorize(id, policy.ResourceFile, policy.ActionRead); err != nil {
		return nil, err
	}

	f, err := s.repo.Get(ctx, fileID, policy.ScopeFor(id, policy.ResourceFile))
	if err != nil {
		return nil, err
	}

	ok, err := s.engine.CanAccessFile(ctx, id, f)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("file", nil)
	}

	return f, nil
}

// Delete removes the payload from the object store before dropping the
// metadata row. A missing or out-of-scope row aborts before any object is
// touched.
func (s *Service) Delete(ctx context.Context, id model.Identity, fileID int64) error {
	if err := policy.Authorize(id, policy.ResourceFile, policy.ActionDelete); err != nil {
		return err
	}

	scope := policy.ScopeFor(id, policy.ResourceFile)
	f, err := s.repo.Get(ctx, fileID, scope)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, f.ObjectName); err != nil {
		return apperrors.Internal(err)
	}

	return s.repo.Delete(ctx, fileID, scope)
}
