// Package policy decides, per operation and per record, whether a resolved
// identity may proceed. It has two independent layers: a static role gate
// (resource kind x action -> permitted roles) and per-role row scopes. Each
// scope is defined once here and enforced twice: as an in-memory record
// predicate at the service layer and as a SQL filter at the repository
// layer, so a bug in either gate cannot leak rows on its own.
package policy

import (
	"github.com/clinicmgr/clinic-api/internal/model"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

// Resource identifies a record kind subject to access control.
type Resource string

const (
	ResourcePatient     Resource = "patient"
	ResourceDoctor      Resource = "doctor"
	ResourceDiagnosis   Resource = "diagnosis"
	ResourceAppointment Resource = "appointment"
	ResourceFile        Resource = "file"
)

// Action is one of the four CRUD operations.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type roleSet map[model.Role]struct{}

func roles(rs ...model.Role) roleSet {
	set := make(roleSet, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

// roleGate is the static allow-list of roles per operation. An empty cell
// (file update) means no role may attempt the operation.
var roleGate = map[Resource]map[Action]roleSet{
	ResourcePatient: {
		ActionCreate: roles(model.RoleAdmin),
		ActionRead:   roles(model.RoleAdmin, model.RoleDoctor, model.RolePatient),
		ActionUpdate: roles(model.RoleAdmin),
		ActionDelete: roles(model.RoleAdmin),
	},
	ResourceDoctor: {
		ActionCreate: roles(model.RoleAdmin),
		ActionRead:   roles(model.RoleAdmin, model.RoleDoctor, model.RolePatient),
		ActionUpdate: roles(model.RoleAdmin),
		ActionDelete: roles(model.RoleAdmin),
	},
	ResourceDiagnosis: {
		ActionCreate: roles(model.RoleDoctor),
		ActionRead:   roles(model.RoleDoctor, model.RolePatient),
		ActionUpdate: roles(model.RoleDoctor),
		ActionDelete: roles(model.RoleDoctor),
	},
	ResourceAppointment: {
		ActionCreate: roles(model.RoleAdmin),
		ActionRead:   roles(model.RoleAdmin, model.RoleDoctor, model.RolePatient),
		ActionUpdate: roles(model.RoleAdmin),
		ActionDelete: roles(model.RoleAdmin),
	},
	ResourceFile: {
		ActionCreate: roles(model.RoleAdmin, model.RoleDoctor),
		ActionRead:   roles(model.RoleAdmin, model.RoleDoctor, model.RolePatient),
		ActionDelete: roles(model.RoleAdmin, model.RoleDoctor),
	},
}

// Authorize applies the role gate. An identity whose role is absent from the
// cell fails with Forbidden regardless of record content. Unknown and empty
// roles fail every gate.
func Authorize(id model.Identity, resource Resource, action Action) error {
	if !id.Role.Valid() {
		return apperrors.Forbidden(nil)
	}
	gate, ok := roleGate[resource]
	if !ok {
		return apperrors.Forbidden(nil)
	}
	allowed, ok := gate[action]
	if !ok {
		return apperrors.Forbidden(nil)
	}
	if _, ok := allowed[id.Role]; !ok {
		return apperrors.Forbidden(nil)
	}
	return nil
}
