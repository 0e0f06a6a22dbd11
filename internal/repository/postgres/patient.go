package postgres

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, req *model.PatientCreate) (*model.Patient, error) {
	query := `
		INSERT INTO patients (username, name, birthdate)
		VALUES ($1, $2, $3)
		RETURNING username, name, birthdate
	`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query,
		req.Username, req.Name, req.BirthDate); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("patient username already exists", err)
		}
		return nil, apperrors.Internal(err)
	}

	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, scope policy.Scope) ([]*model.Patient, error) {
	clause, args := policy.Filter(policy.ResourcePatient, scope)
	query := r.db.Rebind(`
		SELECT username, name, birthdate
		FROM patients
		WHERE ` + clause + `
		ORDER BY username
	`)

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, apperrors.Internal(err)
	}

	return patients, nil
}

func (r *patientRepository) Get(ctx context.Context, username string, scope policy.Scope) (*model.Patient, error) {
	clause, args := policy.Filter(policy.ResourcePatient, scope)
	query := r.db.Rebind(`
		SELECT username, name, birthdate
		FROM patients
		WHERE username = ? AND ` + clause)

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query,
		append([]interface{}{username}, args...)...); err != nil {
		return nil, mapNoRows(err, "patient")
	}

	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, username string, req *model.PatientUpdate, scope policy.Scope) (*model.Patient, error) {
	clause, args := policy.Filter(policy.ResourcePatient, scope)
	query := r.db.Rebind(`
		UPDATE patients
		SET name = COALESCE(?, name),
		    birthdate = COALESCE(?, birthdate)
		WHERE username = ? AND ` + clause + `
		RETURNING username, name, birthdate
	`)

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query,
		append([]interface{}{req.Name, req.BirthDate, username}, args...)...); err != nil {
		return nil, mapNoRows(err, "patient")
	}

	return &patient, nil
}

func (r *patientRepository) Delete(ctx context.Context, username string, scope policy.Scope) error {
	clause, args := policy.Filter(policy.ResourcePatient, scope)
	query := r.db.Rebind(`DELETE FROM patients WHERE username = ? AND ` + clause)

	result, err := r.db.ExecContext(ctx, query,
		append([]interface{}{username}, args...)...)
	if err != nil {
		return apperrors.Internal(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal(err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}

	return nil
}
