package model

import "time"

// Patient is a clinical patient record, keyed by the owning identity's
// username.
type Patient struct {
	Username  string    `db:"username" json:"username"`
	Name      string    `db:"name" json:"name"`
	BirthDate time.Time `db:"birthdate" json:"birth_date"`
}

type PatientCreate struct {
	Username  string    `json:"username" binding:"required,max=50"`
	Name      string    `json:"name" binding:"required,max=100"`
	BirthDate time.Time `json:"birth_date" binding:"required" time_format:"2006-01-02"`
}

type PatientUpdate struct {
	Name      *string    `json:"name" binding:"omitempty,max=100"`
	BirthDate *time.Time `json:"birth_date" time_format:"2006-01-02"`
}
