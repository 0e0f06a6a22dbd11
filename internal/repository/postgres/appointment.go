package postgres

import (
	"context"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, req *model.AppointmentCreate) (*model.Appointment, error) {
	query := `
		INSERT INTO appointments (appointment_date, reason, patient_id, doctor_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id_appointment, appointment_date, status, reason, patient_id, doctor_id
	`

	var ap model.Appointment
	if err := r.db.GetContext(ctx, &ap, query,
		req.AppointmentDate, req.Reason, req.PatientID, req.DoctorID); err != nil {
		return nil, apperrors.Internal(err)
	}

	return &ap, nil
}

func (r *appointmentRepository) List(ctx context.Context, scope policy.Scope) ([]*model.Appointment, error) {
	clause, args := policy.Filter(policy.ResourceAppointment, scope)
	query := r.db.Rebind(`
		SELECT id_appointment, appointment_date, status, reason, patient_id, doctor_id
		FROM appointments
		WHERE ` + clause + `
		ORDER BY appointment_date DESC
	`)

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, apperrors.Internal(err)
	}

	return appointments, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64, scope policy.Scope) (*model.Appointment, error) {
	clause, args := policy.Filter(policy.ResourceAppointment, scope)
	query := r.db.Rebind(`
		SELECT id_appointment, appointment_date, status, reason, patient_id, doctor_id
		FROM appointments
		WHERE id_appointment = ? AND ` + clause)

	var ap model.Appointment
	if err := r.db.GetContext(ctx, &ap, query,
		append([]interface{}{id}, args...)...); err != nil {
		return nil, mapNoRows(err, "appointment")
	}

	return &ap, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id int64, req *model.AppointmentUpdate, scope policy.Scope) (*model.Appointment, error) {
	clause, args := policy.Filter(policy.ResourceAppointment, scope)
	query := r.db.Rebind(`
		UPDATE appointments
		SET appointment_date = COALESCE(?, appointment_date),
		    status = COALESCE(?, status),
		    reason = COALESCE(?, reason)
		WHERE id_appointment = ? AND ` + clause + `
		RETURNING id_appointment, appointment_date, status, reason, patient_id, doctor_id
	`)

	var ap model.Appointment
	if err := r.db.GetContext(ctx, &ap, query,
		append([]interface{}{req.AppointmentDate, req.Status, req.Reason, id}, args...)...); err != nil {
		return nil, mapNoRows(err, "appointment")
	}

	return &ap, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id int64, scope policy.Scope) error {
	clause, args := policy.Filter(policy.ResourceAppointment, scope)
	query := r.db.Rebind(`DELETE FROM appointments WHERE id_appointment = ? AND ` + clause)

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
		return apperrors.NotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) ListUpcoming(ctx context.Context, withinHours int) ([]*model.Appointment, error) {
	query := `
		SELECT id_appointment, appointment_date, status, reason, patient_id, doctor_id
		FROM appointments
		WHERE status = $1
		  AND appointment_date BETWEEN NOW() AND NOW() + ($2 || ' hours')::interval
		ORDER BY appointment_date
	`

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query,
		model.AppointmentScheduled, withinHours); err != nil {
		return nil, apperrors.Internal(err)
	}

	return appointments, nil
}
