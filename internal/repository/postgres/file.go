package postgres

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

type fileRepository struct {
	BaseRepository
}

func NewFileRepository(base BaseRepository) repository.FileRepository {
	return &fileRepository{base}
}

const fileColumns = `id_file, file_name, original_name, url, mime_type, uploaded_at,
	patient_id, doctor_id, diagnosis_id, appointment_id`

func (r *fileRepository) Create(ctx context.Context, file *model.File) (*model.File, error) {
	query := `
		INSERT INTO files (file_name, original_name, url, mime_type, uploaded_at,
			patient_id, doctor_id, diagnosis_id, appointment_id)
		VALUES ($1, $2, $3, $4, NOW(), $5, $6, $7, $8)
		RETURNING ` + fileColumns

	var created model.File
	if err := r.db.GetContext(ctx, &created, query,
		file.ObjectName, file.OriginalName, file.URL, file.MimeType,
		file.PatientID, file.DoctorID, file.DiagnosisID, file.AppointmentID); err != nil {
		return nil, apperrors.Internal(err)
	}

	return &created, nil
}

func (r *fileRepository) List(ctx context.Context, scope policy.Scope) ([]*model.File, error) {
	clause, args := policy.Filter(policy.ResourceFile, scope)
	query := r.db.Rebind(`
		SELECT ` + fileColumns + `
		FROM files
		WHERE ` + clause + `
		ORDER BY uploaded_at DESC
	`)

	files := []*model.File{}
	if err := r.db.SelectContext(ctx, &files, query, args...); err != nil {
		return nil, apperrors.Internal(err)
	}

	return files, nil
}

func (r *fileRepository) Get(ctx context.Context, id int64, scope policy.Scope) (*model.File, error) {
	clause, args := policy.Filter(policy.ResourceFile, scope)
	query := r.db.Rebind(`
		SELECT ` + fileColumns + `
		FROM files
		WHERE id_file = ? AND ` + clause)

	var file model.File
	if err := r.db.GetContext(ctx, &file, query,
		append([]interface{}{id}, args...)...); err != nil {
		return nil, mapNoRows(err, "file")
	}

	return &file, nil
}

func (r *fileRepository) Delete(ctx context.Context, id int64, scope policy.Scope) error {
	clause, args := policy.Filter(policy.ResourceFile, scope)
	query := r.db.Rebind(`DELETE FROM files WHERE id_file = ? AND ` + clause)

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
		return apperrors.NotFound("file", nil)
	}

	return nil
}
