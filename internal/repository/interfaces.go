package repository

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
)

// UserRepository is the credential store: identity -> secret hash + role.
type UserRepository interface {
	Get(ctx context.Context, username string) (*model.User, error)
	// CreateWithGrants persists the credential row and the database-level
	// grant scaffolding for the new identity in a single transaction.
	// Duplicate usernames surface as Conflict.
	CreateWithGrants(ctx context.Context, user *model.User) error
}

// Scoped read/mutation methods take the caller's row scope; the repository
// applies it as a SQL filter so a policy-engine bug upstream cannot leak
// rows. Keyed lookups excluded by scope report NotFound, indistinguishable
// from genuine absence.
type PatientRepository interface {
	Create(ctx context.Context, req *model.PatientCreate) (*model.Patient, error)
	List(ctx context.Context, scope policy.Scope) ([]*model.Patient, error)
	Get(ctx context.Context, username string, scope policy.Scope) (*model.Patient, error)
	Update(ctx context.Context, username string, req *model.PatientUpdate, scope policy.Scope) (*model.Patient, error)
	Delete(ctx context.Context, username string, scope policy.Scope) error
}

type DoctorRepository interface {
	Create(ctx context.Context, req *model.DoctorCreate) (*model.Doctor, error)
	List(ctx context.Context, scope policy.Scope) ([]*model.Doctor, error)
	Get(ctx context.Context, username string, scope policy.Scope) (*model.Doctor, error)
	Update(ctx context.Context, username string, req *model.DoctorUpdate, scope policy.Scope) (*model.Doctor, error)
	Delete(ctx context.Context, username string, scope policy.Scope) error
}

type DiagnosisRepository interface {
	Create(ctx context.Context, req *model.DiagnosisCreate) (*model.Diagnosis, error)
	List(ctx context.Context, scope policy.Scope) ([]*model.Diagnosis, error)
	Get(ctx context.Context, id int64, scope policy.Scope) (*model.Diagnosis, error)
	Update(ctx context.Context, id int64, req *model.DiagnosisUpdate, scope policy.Scope) (*model.Diagnosis, error)
	Delete(ctx context.Context, id int64, scope policy.Scope) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, req *model.AppointmentCreate) (*model.Appointment, error)
	List(ctx context.Context, scope policy.Scope) ([]*model.Appointment, error)
	Get(ctx context.Context, id int64, scope policy.Scope) (*model.Appointment, error)
	Update(ctx context.Context, id int64, req *model.AppointmentUpdate, scope policy.Scope) (*model.Appointment, error)
	Delete(ctx context.Context, id int64, scope policy.Scope) error
	// ListUpcoming returns scheduled appointments starting within the
	// window, for the reminder worker.
	ListUpcoming(ctx context.Context, withinHours int) ([]*model.Appointment, error)
}

type FileRepository interface {
	Create(ctx context.Context, file *model.File) (*model.File, error)
	List(ctx context.Context, scope policy.Scope) ([]*model.File, error)
	Get(ctx context.Context, id int64, scope policy.Scope) (*model.File, error)
	Delete(ctx context.Context, id int64, scope policy.Scope) error
}
