package policy

import (
	"github.com/clinicmgr/clinic-api/internal/model"
)

// Scope restricts which rows an identity may see or mutate after passing the
// role gate. Exactly one of All, Deny, Patient, Doctor is set.
type Scope struct {
	// All grants unrestricted row access (admin, and doctor-to-doctor
	// reads, which the row model leaves unrestricted on purpose).
	All bool
	// Deny yields no rows at all. Used for unknown roles: fail-closed,
	// never an implicit grant.
	Deny bool
	// Patient limits rows to those owned by this patient username.
	Patient string
	// Doctor limits rows to those associated with this doctor username,
	// transitively for patients and files.
	Doctor string
}

// ScopeFor derives the row scope for an identity on a resource. It assumes
// the role gate already passed; it still returns Deny for anything outside
// the closed role set.
func ScopeFor(id model.Identity, resource Resource) Scope {
	switch id.Role {
	case model.RoleAdmin:
		return Scope{All: true}
	case model.RolePatient:
		return Scope{Patient: id.Username}
	case model.RoleDoctor:
		if resource == ResourceDoctor {
			// Peer visibility: doctor reads of doctor rows pass on the
			// role gate alone.
			return Scope{All: true}
		}
		return Scope{Doctor: id.Username}
	default:
		return Scope{Deny: true}
	}
}

// Filter renders the scope as a SQL predicate over the resource's table,
// with "?" placeholders for sqlx.Rebind. This is the storage-boundary
// enforcement of the same predicate the Engine applies in memory.
func Filter(resource Resource, scope Scope) (string, []interface{}) {
	if scope.All {
		return "TRUE", nil
	}
	if scope.Deny {
		return "FALSE", nil
	}

	if scope.Patient != "" {
		switch resource {
		case ResourcePatient:
			return "username = ?", []interface{}{scope.Patient}
		case ResourceDoctor:
			// Patients see only doctors they have a diagnosis
			// relationship with.
			return "username IN (SELECT doctor_id FROM diagnosis WHERE patient_id = ?)",
				[]interface{}{scope.Patient}
		default:
			return "patient_id = ?", []interface{}{scope.Patient}
		}
	}

	if scope.Doctor != "" {
		switch resource {
		case ResourcePatient:
			return "username IN (SELECT patient_id FROM diagnosis WHERE doctor_id = ?)",
				[]interface{}{scope.Doctor}
		case ResourceDiagnosis, ResourceAppointment:
			return "doctor_id = ?", []interface{}{scope.Doctor}
		case ResourceFile:
			return `(doctor_id = ?
				OR patient_id IN (SELECT patient_id FROM diagnosis WHERE doctor_id = ?)
				OR diagnosis_id IN (SELECT id_diagnosis FROM diagnosis WHERE doctor_id = ?)
				OR appointment_id IN (SELECT id_appointment FROM appointments WHERE doctor_id = ?))`,
				[]interface{}{scope.Doctor, scope.Doctor, scope.Doctor, scope.Doctor}
		}
	}

	return "FALSE", nil
}
