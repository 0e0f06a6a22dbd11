package doctor

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

// Service gates doctor record operations. Patients only see doctors they
// have a diagnosis relationship with; doctors see each other unrestricted.
type Service struct {
	repo   repository.DoctorRepository
	engine *policy.Engine
}

func NewService(repo repository.DoctorRepository, engine *policy.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

func (s *Service) Create(ctx context.Context, id model.Identity, req *model.DoctorCreate) (*model.Doctor, error) {
	if err := policy.Authorize(id, policy.ResourceDoctor, policy.ActionCreate); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) List(ctx context.Context, id model.Identity) ([]*model.Doctor, error) {
	if err := policy.Authorize(id, policy.ResourceDoctor, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, policy.ScopeFor(id, policy.ResourceDoctor))
}

func (s *Service) Get(ctx context.Context, id model.Identity, username string) (*model.Doctor, error) {
	if err := policy.Authorize(id, policy.ResourceDoctor, policy.ActionRead); err != nil {
		return nil, err
	}

	doctor, err := s.repo.Get(ctx, username, policy.ScopeFor(id, policy.ResourceDoctor))
	if err != nil {
		return nil, err
	}

	ok, err := s.engine.CanAccessDoctor(ctx, id, doctor)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}

	return doctor, nil
}

func (s *Service) Update(ctx context.Context, id model.Identity, username string, req *model.DoctorUpdate) (*model.Doctor, error) {
	if err := policy.Authorize(id, policy.ResourceDoctor, policy.ActionUpdate); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, username, req, policy.ScopeFor(id, policy.ResourceDoctor))
}

func (s *Service) Delete(ctx context.Context, id model.Identity, username string) error {
	if err := policy.Authorize(id, policy.ResourceDoctor, policy.ActionDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, username, policy.ScopeFor(id, policy.ResourceDoctor))
}
