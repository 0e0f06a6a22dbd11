package model

import "time"

// Role is the closed set of account roles. There are no dynamic roles;
// anything outside this set fails every role gate.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// User is a credential row. The username is the immutable primary key and
// the hash is never serialized.
type User struct {
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"hashed_password" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Identity is a verified {username, role} pair produced by token validation.
// A zero Role is a resolved but ungranted identity: it passes authentication
// and fails every role gate.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
