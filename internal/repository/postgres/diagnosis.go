package postgres

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

type diagnosisRepository struct {
	BaseRepository
}

func NewDiagnosisRepository(base BaseRepository) repository.DiagnosisRepository {
	return &diagnosisRepository{base}
}

func (r *diagnosisRepository) Create(ctx context.Context, req *model.DiagnosisCreate) (*model.Diagnosis, error) {
	query := `
		INSERT INTO diagnosis (diagnosis_date, icd, description, patient_id, doctor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_diagnosis, diagnosis_date, icd, description, patient_id, doctor_id
	`

	var diag model.Diagnosis
	if err := r.db.GetContext(ctx, &diag, query,
		req.DiagnosisDate, req.ICD, req.Description, req.PatientID, req.DoctorID); err != nil {
		return nil, apperrors.Internal(err)
	}

	return &diag, nil
}

func (r *diagnosisRepository) List(ctx context.Context, scope policy.Scope) ([]*model.Diagnosis, error) {
	clause, args := policy.Filter(policy.ResourceDiagnosis, scope)
	query := r.db.Rebind(`
		SELECT id_diagnosis, diagnosis_date, icd, description, patient_id, doctor_id
		FROM diagnosis
		WHERE ` + clause + `
		ORDER BY id_diagnosis
	`)

	diagnoses := []*model.Diagnosis{}
	if err := r.db.SelectContext(ctx, &diagnoses, query, args...); err != nil {
		return nil, apperrors.Internal(err)
	}

	return diagnoses, nil
}

func (r *diagnosisRepository) Get(ctx context.Context, id int64, scope policy.Scope) (*model.Diagnosis, error) {
	clause, args := policy.Filter(policy.ResourceDiagnosis, scope)
	query := r.db.Rebind(`
		SELECT id_diagnosis, diagnosis_date, icd, description, patient_id, doctor_id
		FROM diagnosis
		WHERE id_diagnosis = ? AND ` + clause)

	var diag model.Diagnosis
	if err := r.db.GetContext(ctx, &diag, query,
		append([]interface{}{id}, args...)...); err != nil {
		return nil, mapNoRows(err, "diagnosis")
	}

	return &diag, nil
}

func (r *diagnosisRepository) Update(ctx context.Context, id int64, req *model.DiagnosisUpdate, scope policy.Scope) (*model.Diagnosis, error) {
	clause, args := policy.Filter(policy.ResourceDiagnosis, scope)
	query := r.db.Rebind(`
		UPDATE diagnosis
		SET diagnosis_date = COALESCE(?, diagnosis_date),
		    icd = COALESCE(?, icd),
		    description = COALESCE(?, description)
		WHERE id_diagnosis = ? AND ` + clause + `
		RETURNING id_diagnosis, diagnosis_date, icd, description, patient_id, doctor_id
	`)

	var diag model.Diagnosis
	if err := r.db.GetContext(ctx, &diag, query,
		append([]interface{}{req.DiagnosisDate, req.ICD, req.Description, id}, args...)...); err != nil {
		return nil, mapNoRows(err, "diagnosis")
	}

	return &diag, nil
}

func (r *diagnosisRepository) Delete(ctx context.Context, id int64, scope policy.Scope) error {
	clause, args := policy.Filter(policy.ResourceDiagnosis, scope)
	query := r.db.Rebind(`DELETE FROM diagnosis WHERE id_diagnosis = ? AND ` + clause)

	result, err := r.db.ExecContext(ctx, query,
		append([]interface{}{id}, args...)...)
	if err != nil {
		return apperrors.Internal(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal(err)
	}
	if rows == 0 {
		return apperrors.NotFound("diagnosis", nil)
	}

	return nil
}
