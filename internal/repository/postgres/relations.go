package postgres

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/policy"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

// relationStore answers the ownership-relationship lookups behind the
// in-memory row predicates.
type relationStore struct {
	BaseRepository
}

func NewRelationStore(base BaseRepository) policy.RelationStore {
	return &relationStore{base}
}

func (r *relationStore) DoctorTreatsPatient(ctx context.Context, doctor, patient string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM diagnosis WHERE doctor_id = $1 AND patient_id = $2
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, doctor, patient); err != nil {
		return false, apperrors.Internal(err)
	}
	return exists, nil
}

func (r *relationStore) DoctorAuthoredDiagnosis(ctx context.Context, doctor string, diagnosisID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM diagnosis WHERE id_diagnosis = $1 AND doctor_id = $2
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, diagnosisID, doctor); err != nil {
		return false, apperrors.Internal(err)
	}
	return exists, nil
}

func (r *relationStore) DoctorHasAppointment(ctx context.Context, doctor string, appointmentID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments WHERE id_appointment = $1 AND doctor_id = $2
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, appointmentID, doctor); err != nil {
		return false, apperrors.Internal(err)
	}
	return exists, nil
}
