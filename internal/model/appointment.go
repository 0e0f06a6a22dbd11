package model

import "time"

// Appointment statuses
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

type Appointment struct {
	ID              int64     `db:"id_appointment" json:"id_appointment"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	Status          string    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	PatientID       string    `db:"patient_id" json:"patient_id"`
	DoctorID        *string   `db:"doctor_id" json:"doctor_id,omitempty"`
}

type AppointmentCreate struct {
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Reason          *string   `json:"reason"`
	PatientID       string    `json:"patient_id" binding:"required,max=50"`
	DoctorID        *string   `json:"doctor_id" binding:"omitempty,max=50"`
}

type AppointmentUpdate struct {
	AppointmentDate *time.Time `json:"appointment_date"`
	Status          *string    `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Reason          *string    `json:"reason"`
}
