package policy

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicmgr/clinic-api/internal/model"
)

// RelationStore answers the ownership-relationship questions the in-memory
// predicates need. The postgres repository implements it.
type RelationStore interface {
	DoctorTreatsPatient(ctx context.Context, doctor, patient string) (bool, error)
	DoctorAuthoredDiagnosis(ctx context.Context, doctor string, diagnosisID int64) (bool, error)
	DoctorHasAppointment(ctx context.Context, doctor string, appointmentID int64) (bool, error)
}

const (
	relationTTL   = 30 * time.Second
	relationSweep = time.Minute
)

// Engine evaluates row-level predicates against individual records at the
// service layer. Relationship lookups are cached briefly; a stale positive
// can only widen access to rows the caller was related to seconds ago.
type Engine struct {
	relations RelationStore
	cache     *gocache.Cache
}

func NewEngine(relations RelationStore) *Engine {
	return &Engine{
		relations: relations,
		cache:     gocache.New(relationTTL, relationSweep),
	}
}

// CanAccessPatient is the row predicate for a single patient record.
func (e *Engine) CanAccessPatient(ctx context.Context, id model.Identity, p *model.Patient) (bool, error) {
	switch id.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RolePatient:
		return p.Username == id.Username, nil
	case model.RoleDoctor:
		return e.doctorTreats(ctx, id.Username, p.Username)
	default:
		return false, nil
	}
}

// CanAccessDoctor is the row predicate for a single doctor record. Doctor
// peers see each other unrestricted; patients see only doctors they have a
// diagnosis relationship with.
func (e *Engine) CanAccessDoctor(ctx context.Context, id model.Identity, d *model.Doctor) (bool, error) {
	switch id.Role {
	case model.RoleAdmin, model.RoleDoctor:
		return true, nil
	case model.RolePatient:
		return e.doctorTreats(ctx, d.Username, id.Username)
	default:
		return false, nil
	}
}

// CanAccessDiagnosis is the row predicate for a single diagnosis record,
// covering reads and doctor-side mutations alike.
func (e *Engine) CanAccessDiagnosis(_ context.Context, id model.Identity, diag *model.Diagnosis) (bool, error) {
	switch id.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RolePatient:
		return diag.PatientID == id.Username, nil
	case model.RoleDoctor:
		return diag.DoctorID != nil && *diag.DoctorID == id.Username, nil
	default:
		return false, nil
	}
}

// CanAccessAppointment is the row predicate for a single appointment record.
func (e *Engine) CanAccessAppointment(_ context.Context, id model.Identity, ap *model.Appointment) (bool, error) {
	switch id.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RolePatient:
		return ap.PatientID == id.Username, nil
	case model.RoleDoctor:
		return ap.DoctorID != nil && *ap.DoctorID == id.Username, nil
	default:
		return false, nil
	}
}

// CanAccessFile is the row predicate for a single file record. Doctors reach
// a file directly or transitively through a related patient, diagnosis, or
// appointment.
func (e *Engine) CanAccessFile(ctx context.Context, id model.Identity, f *model.File) (bool, error) {
	switch id.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RolePatient:
		return f.PatientID == id.Username, nil
	case model.RoleDoctor:
		if f.DoctorID != nil && *f.DoctorID == id.Username {
			return true, nil
		}
		if ok, err := e.doctorTreats(ctx, id.Username, f.PatientID); err != nil || ok {
			return ok, err
		}
		if f.DiagnosisID != nil {
			ok, err := e.cached(
				fmt.Sprintf("diag:%s:%d", id.Username, *f.DiagnosisID),
				func() (bool, error) {
					return e.relations.DoctorAuthoredDiagnosis(ctx, id.Username, *f.DiagnosisID)
				})
			if err != nil || ok {
				return ok, err
			}
		}
		if f.AppointmentID != nil {
			return e.cached(
				fmt.Sprintf("appt:%s:%d", id.Username, *f.AppointmentID),
				func() (bool, error) {
					return e.relations.DoctorHasAppointment(ctx, id.Username, *f.AppointmentID)
				})
		}
		return false, nil
	default:
		return false, nil
	}
}

func (e *Engine) doctorTreats(ctx context.Context, doctor, patient string) (bool, error) {
	return e.cached(
		fmt.Sprintf("treats:%s:%s", doctor, patient),
		func() (bool, error) {
			return e.relations.DoctorTreatsPatient(ctx, doctor, patient)
		})
}

func (e *Engine) cached(key string, lookup func() (bool, error)) (bool, error) {
	if v, ok := e.cache.Get(key); ok {
		return v.(bool), nil
	}
	ok, err := lookup()
	if err != nil {
		return false, err
	}
	e.cache.SetDefault(key, ok)
	return ok, nil
}
