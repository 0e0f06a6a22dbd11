package appointment

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

// Service gates appointment operations. Scheduling is an administrative
// concern; participants get read access to their own appointments.
type Service struct {
	repo   repository.AppointmentRepository
	engine *policy.Engine
}

func NewService(repo repository.AppointmentRepository, engine *policy.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

func (s *Service) Create(ctx context.Context, id model.Identity, req *model.AppointmentCreate) (*model.Appointment, error) {
	if err := policy.Authorize(id, policy.ResourceAppointment, policy.ActionCreate); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) List(ctx context.Context, id model.Identity) ([]*model.Appointment, error) {
	if err := policy.Authorize(id, policy.ResourceAppointment, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, policy.ScopeFor(id, policy.ResourceAppointment))
}

func (s *Service) Get(ctx context.Context, id model.Identity, appointmentID int64) (*model.Appointment, error) {
	if err := policy.Authorize(id, policy.ResourceAppointment, policy.ActionRead); err != nil {
		return nil, err
	}

	ap, err := s.repo.Get(ctx, appointmentID, policy.ScopeFor(id, policy.ResourceAppointment))
	if err != nil {
		return nil, err
	}

	ok, err := s.engine.CanAccessAppointment(ctx, id, ap)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}

	return ap, nil
}

func (s *Service) Update(ctx context.Context, id model.Identity, appointmentID int64, req *model.AppointmentUpdate) (*model.Appointment, error) {
	if err := policy.Authorize(id, policy.ResourceAppointment, policy.ActionUpdate); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, appointmentID, req, policy.ScopeFor(id, policy.ResourceAppointment))
}

func (s *Service) Delete(ctx context.Context, id model.Identity, appointmentID int64) error {
	if err := policy.Authorize(id, policy.ResourceAppointment, policy.ActionDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, appointmentID, policy.ScopeFor(id, policy.ResourceAppointment))
}
