// Package policy is the single place where roles are mapped to what they may do.
package policy

import (
	"errors"

	"clinic-booking/internal/domain/entity"
)

// ErrForbidden is returned when the actor's role lacks a capability.
var ErrForbidden = errors.New("operation not permitted for this role")

type Capability string

const (
	BookAppointment     Capability = "appointment.book"
	ViewOwnAppointments Capability = "appointment.view_own"
	ViewAllAppointments Capability = "appointment.view_all"
	ManageQueue         Capability = "queue.manage"
	ViewReports         Capability = "report.view"
	ConfigureClinic     Capability = "clinic.configure"
	ManageStaff         Capability = "staff.manage"
	ViewAuditLog        Capability = "audit.view"
)

var grants = map[entity.Role]map[Capability]bool{
	entity.RoleUser: {
		BookAppointment:     true,
		ViewOwnAppointments: true,
	},
	entity.RoleAgent: {
		BookAppointment:     true,
		ViewOwnAppointments: true,
		ManageQueue:         true,
	},
	entity.RoleAdmin: {
		BookAppointment:     true,
		ViewOwnAppointments: true,
		ViewAllAppointments: true,
		ManageQueue:         true,
		ViewReports:         true,
		ConfigureClinic:     true,
		ManageStaff:         true,
		ViewAuditLog:        true,
	},
}

// Can reports whether actor holds capability c.
func Can(actor entity.Actor, c Capability) bool {
	return grants[actor.Role][c]
}

// Authorize is Can as an error, for usecases.
func Authorize(actor entity.Actor, c Capability) error {
	if !Can(actor, c) {
		return ErrForbidden
	}
	return nil
}

// EffectiveRole folds the identity's staff flag into its profile role.
// Staff identities act as administrators whatever their profile says.
func EffectiveRole(profileRole entity.Role, isStaff bool) entity.Role {
	if isStaff {
		return entity.RoleAdmin
	}
	if !profileRole.Valid() {
		return entity.RoleUser
	}
	return profileRole
}
