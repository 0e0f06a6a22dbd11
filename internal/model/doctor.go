package model

// Doctor is a clinical doctor record, keyed by the doctor identity's
// username.
type Doctor struct {
	Username  string  `db:"username" json:"username"`
	Name      string  `db:"name" json:"name"`
	Specialty *string `db:"specialty" json:"specialty,omitempty"`
}

type DoctorCreate struct {
	Username  string  `json:"username" binding:"required,max=50"`
	Name      string  `json:"name" binding:"required,max=100"`
	Specialty *string `json:"specialty" binding:"omitempty,max=100"`
}

type DoctorUpdate struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	Specialty *string `json:"specialty" binding:"omitempty,max=100"`
}
