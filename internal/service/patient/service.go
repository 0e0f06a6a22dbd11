package patient

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

// Service gates patient record operations. The role gate runs first; row
// scoping is applied twice, as a SQL filter in the repository and as a
// record predicate here.
type Service struct {
	repo   repository.PatientRepository
	engine *policy.Engine
}

func NewService(repo repository.PatientRepository, engine *policy.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

func (s *Service) Create(ctx context.Context, id model.Identity, req *model.PatientCreate) (*model.Patient, error) {
	if err := policy.Authorize(id, policy.ResourcePatient, policy.ActionCreate); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req)
}

// List returns the patients visible to the caller. Out-of-scope rows are
// silently absent, never an error.
func (s *Service) List(ctx context.Context, id model.Identity) ([]*model.Patient, error) {
	if err := policy.Authorize(id, policy.ResourcePatient, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, policy.ScopeFor(id, policy.ResourcePatient))
}

func (s *Service) Get(ctx context.Context, id model.Identity, username string) (*model.Patient, error) {
	if err := policy.Authorize(id, policy.ResourcePatient, policy.ActionRead); err != nil {
		return nil, err
	}

	patient, err := s.repo.Get(ctx, username, policy.ScopeFor(id, policy.ResourcePatient))
	if err != nil {
		return nil, err
	}

	ok, err := s.engine.CanAccessPatient(ctx, id, patient)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}

	return patient, nil
}

func (s *Service) Update(ctx context.Context, id model.Identity, username string, req *model.PatientUpdate) (*model.Patient, error) {
	if err := policy.Authorize(id, policy.ResourcePatient, policy.ActionUpdate); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, username, req, policy.ScopeFor(id, policy.ResourcePatient))
}

func (s *Service) Delete(ctx context.Context, id model.Identity, username string) error {
	if err := policy.Authorize(id, policy.ResourcePatient, policy.ActionDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, username, policy.ScopeFor(id, policy.ResourcePatient))
}
