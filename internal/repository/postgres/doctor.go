package postgres

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Create(ctx context.Context, req *model.DoctorCreate) (*model.Doctor, error) {
	query := `
		INSERT INTO doctors (username, name, specialty)
		VALUES ($1, $2, $3)
		RETURNING username, name, specialty
	`

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query,
		req.Username, req.Name, req.Specialty); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("doctor username already exists", err)
		}
		return nil, apperrors.Internal(err)
	}

	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, scope policy.Scope) ([]*model.Doctor, error) {
	clause, args := policy.Filter(policy.ResourceDoctor, scope)
	query := r.db.Rebind(`
		SELECT username, name, specialty
		FROM doctors
		WHERE ` + clause + `
		ORDER BY username
	`)

	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, apperrors.Internal(err)
	}

	return doctors, nil
}

func (r *doctorRepository) Get(ctx context.Context, username string, scope policy.Scope) (*model.Doctor, error) {
	clause, args := policy.Filter(policy.ResourceDoctor, scope)
	query := r.db.Rebind(`
		SELECT username, name, specialty
		FROM doctors
		WHERE username = ? AND ` + clause)

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query,
		append([]interface{}{username}, args...)...); err != nil {
		return nil, mapNoRows(err, "doctor")
	}

	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, username string, req *model.DoctorUpdate, scope policy.Scope) (*model.Doctor, error) {
	clause, args := policy.Filter(policy.ResourceDoctor, scope)
	query := r.db.Rebind(`
		UPDATE doctors
		SET name = COALESCE(?, name),
		    specialty = COALESCE(?, specialty)
		WHERE username = ? AND ` + clause + `
		RETURNING username, name, specialty
	`)

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query,
		append([]interface{}{req.Name, req.Specialty, username}, args...)...); err != nil {
		return nil, mapNoRows(err, "doctor")
	}

	return &doctor, nil
}

func (r *doctorRepository) Delete(ctx context.Context, username string, scope policy.Scope) error {
	clause, args := policy.Filter(policy.ResourceDoctor, scope)
	query := r.db.Rebind(`DELETE FROM doctors WHERE username = ? AND ` + clause)

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
		return apperrors.NotFound("doctor", nil)
	}

	return nil
}
