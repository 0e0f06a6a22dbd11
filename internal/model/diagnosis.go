package model

import "time"

// Diagnosis links an owning patient with an optional authoring doctor.
// Ownership fields are set at creation and drive the row-level predicates.
type Diagnosis struct {
	ID            int64     `db:"id_diagnosis" json:"id_diagnosis"`
	DiagnosisDate time.Time `db:"diagnosis_date" json:"diagnosis_date"`
	ICD           *string   `db:"icd" json:"icd,omitempty"`
	Description   *string   `db:"description" json:"description,omitempty"`
	PatientID     string    `db:"patient_id" json:"patient_id"`
	DoctorID      *string   `db:"doctor_id" json:"doctor_id,omitempty"`
}

type DiagnosisCreate struct {
	DiagnosisDate time.Time `json:"diagnosis_date" binding:"required" time_format:"2006-01-02"`
	ICD           *string   `json:"icd" binding:"omitempty,max=7"`
	Description   *string   `json:"description"`
	PatientID     string    `json:"patient_id" binding:"required,max=50"`
	DoctorID      *string   `json:"doctor_id" binding:"omitempty,max=50"`
}

type DiagnosisUpdate struct {
	DiagnosisDate *time.Time `json:"diagnosis_date" time_format:"2006-01-02"`
	ICD           *string    `json:"icd" binding:"omitempty,max=7"`
	Description   *string    `json:"description"`
}
