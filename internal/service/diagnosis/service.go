package diagnosis

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

// Service gates diagnosis operations. Writes belong to doctors alone, and a
// doctor's writes are scoped to their own diagnoses. Admins have no read
// access to clinical content.
type Service struct {
	repo   repository.DiagnosisRepository
	engine *policy.Engine
}

func NewService(repo repository.DiagnosisRepository, engine *policy.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

func (s *Service) Create(ctx context.Context, id model.Identity, req *model.DiagnosisCreate) (*model.Diagnosis, error) {
	if err := policy.Authorize(id, policy.ResourceDiagnosis, policy.ActionCreate); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) List(ctx context.Context, id model.Identity) ([]*model.Diagnosis, error) {
	if err := policy.Authorize(id, policy.ResourceDiagnosis, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, policy.ScopeFor(id, policy.ResourceDiagnosis))
}

func (s *Service) Get(ctx context.Context, id model.Identity, diagnosisID int64) (*model.Diagnosis, error) {
	if err := policy.Authorize(id, policy.ResourceDiagnosis, policy.ActionRead); err != nil {
		return nil, err
	}

	diag, err := s.repo.Get(ctx, diagnosisID, policy.ScopeFor(id, policy.ResourceDiagnosis))
	if err != nil {
		return nil, err
	}

	ok, err := s.engine.CanAccessDiagnosis(ctx, id, diag)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("diagnosis", nil)
	}

	return diag, nil
}

func (s *Service) Update(ctx context.Context, id model.Identity, diagnosisID int64, req *model.DiagnosisUpdate) (*model.Diagnosis, error) {
	if err := policy.Authorize(id, policy.ResourceDiagnosis, policy.ActionUpdate); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, diagnosisID, req, policy.ScopeFor(id, policy.ResourceDiagnosis))
}

func (s *Service) Delete(ctx context.Context, id model.Identity, diagnosisID int64) error {
	if err := policy.Authorize(id, policy.ResourceDiagnosis, policy.ActionDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, diagnosisID, policy.ScopeFor(id, policy.ResourceDiagnosis))
}
