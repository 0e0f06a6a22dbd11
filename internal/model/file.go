package model

import "time"

// File is attachment metadata. The payload lives in the object store under
// ObjectName; the row records ownership links used by the row-level
// predicates (patient always, doctor/diagnosis/appointment optional).
type File struct {
	ID            int64     `db:"id_file" json:"id_file"`
	ObjectName    string    `db:"file_name" json:"file_name"`
	OriginalName  string    `db:"original_name" json:"original_name"`
	URL           string    `db:"url" json:"url"`
	MimeType      string    `db:"mime_type" json:"mime_type"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploaded_at"`
	PatientID     string    `db:"patient_id" json:"patient_id"`
	DoctorID      *string   `db:"doctor_id" json:"doctor_id,omitempty"`
	DiagnosisID   *int64    `db:"diagnosis_id" json:"diagnosis_id,omitempty"`
	AppointmentID *int64    `db:"appointment_id" json:"appointment_id,omitempty"`
}

// FileUploadRequest is the query-side metadata accompanying a multipart
// upload.
type FileUploadRequest struct {
	PatientID     string  `form:"patient_id" binding:"required,max=50"`
	DoctorID      *string `form:"doctor_id" binding:"omitempty,max=50"`
	DiagnosisID   *int64  `form:"diagnosis_id"`
	AppointmentID *int64  `form:"appointment_id"`
}
