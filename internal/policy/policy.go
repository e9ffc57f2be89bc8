// Package policy holds the role capability table consulted by every mutating
// service operation.
package policy

import (
	"strings"

	"vidaview-backend/internal/domain"
)

type Action string

const (
	ActionCreateBooking    Action = "create_booking"
	ActionViewBooking      Action = "view_booking"
	ActionApproveBooking   Action = "approve_booking"
	ActionRejectBooking    Action = "reject_booking"
	ActionCancelBooking    Action = "cancel_booking"
	ActionUpdateBooking    Action = "update_booking"
	ActionCreatePayment    Action = "create_payment"
	ActionSubmitPayment    Action = "submit_payment_proof"
	ActionVerifyPayment    Action = "verify_payment"
	ActionCreateApartment  Action = "create_apartment"
	ActionUpdateApartment  Action = "update_apartment"
	ActionArchiveApartment Action = "archive_apartment"
	ActionDeleteApartment  Action = "delete_apartment"
	ActionCreateReview     Action = "create_review"
	ActionApproveReview    Action = "approve_review"
	ActionViewReports      Action = "view_reports"
	ActionViewRankings     Action = "view_rankings"
	ActionManageUsers      Action = "manage_users"
	ActionManageFacilities Action = "manage_facilities"
	ActionManagePromotions Action = "manage_promotions"
)

// Scope says how far a role's grant for an action reaches.
type Scope int

const (
	ScopeNone Scope = iota
	// ScopeSelf: the actor is the tenant on the resource.
	ScopeSelf
	// ScopeOwnApartment: the actor owns the apartment behind the resource.
	ScopeOwnApartment
	ScopeAny
)

// Capabilities is the declarative action x role table.
var Capabilities = map[Action]map[domain.Role]Scope{
	ActionCreateBooking: {
		domain.RoleTenant: ScopeSelf,
		domain.RoleAdmin:  ScopeAny,
	},
	ActionViewBooking: {
		domain.RoleTenant: ScopeSelf,
		domain.RoleOwner:  ScopeOwnApartment,
		domain.RoleAdmin:  ScopeAny,
	},
	ActionApproveBooking: {
		domain.RoleOwner: ScopeOwnApartment,
		domain.RoleAdmin: ScopeAny,
	},
	ActionRejectBooking: {
		domain.RoleOwner: ScopeOwnApartment,
		domain.RoleAdmin: ScopeAny,
	},
	ActionCancelBooking: {
		domain.RoleTenant: ScopeSelf,
		domain.RoleOwner:  ScopeOwnApartment,
		domain.RoleAdmin:  ScopeAny,
	},
	ActionUpdateBooking: {
		domain.RoleAdmin: ScopeAny,
	},
	ActionCreatePayment: {
		domain.RoleAdmin: ScopeAny,
	},
	ActionSubmitPayment: {
		domain.RoleTenant: ScopeSelf,
		domain.RoleAdmin:  ScopeAny,
	},
	ActionVerifyPayment: {
		domain.RoleOwner: ScopeOwnApartment,
		domain.RoleAdmin: ScopeAny,
	},
	ActionCreateApartment: {
		domain.RoleOwner: ScopeOwnApartment,
		domain.RoleAdmin: ScopeAny,
	},
	ActionUpdateApartment: {
		domain.RoleOwner: ScopeOwnApartment,
		domain.RoleAdmin: ScopeAny,
	},
	ActionArchiveApartment: {
		domain.RoleOwner: ScopeOwnApartment,
		domain.RoleAdmin: ScopeAny,
	},
	ActionDeleteApartment: {
		domain.RoleOwner: ScopeOwnApartment,
		domain.RoleAdmin: ScopeAny,
	},
	ActionCreateReview: {
		domain.RoleTenant: ScopeSelf,
	},
	ActionApproveReview: {
		domain.RoleAdmin: ScopeAny,
	},
	ActionViewReports: {
		domain.RoleOwner: ScopeOwnApartment,
		domain.RoleAdmin: ScopeAny,
	},
	ActionViewRankings: {
		domain.RoleAdmin: ScopeAny,
	},
	ActionManageUsers: {
		domain.RoleAdmin: ScopeAny,
	},
	ActionManageFacilities: {
		domain.RoleAdmin: ScopeAny,
	},
	ActionManagePromotions: {
		domain.RoleAdmin: ScopeAny,
	},
}

// Resource identifies the parties attached to whatever the action touches.
// Zero ids mean "no such party".
type Resource struct {
	TenantID int32
	OwnerID  int32
}

// Allowed evaluates the capability table without building an error.
func Allowed(actor domain.Actor, action Action, res Resource) bool {
	scope := Capabilities[action][actor.Role]
	switch scope {
	case ScopeAny:
		return true
	case ScopeSelf:
		return res.TenantID != 0 && res.TenantID == actor.UserID
	case ScopeOwnApartment:
		return res.OwnerID != 0 && res.OwnerID == actor.UserID
	default:
		return false
	}
}

// Authorize returns a permission error when the table denies the action.
func Authorize(actor domain.Actor, action Action, res Resource) error {
	if Allowed(actor, action, res) {
		return nil
	}
	return domain.Permission("%s is not allowed to %s", roleLabel(actor.Role), humanize(action))
}

// Can reports whether the role holds any grant at all for the action.
func Can(role domain.Role, action Action) bool {
	return Capabilities[action][role] != ScopeNone
}

func roleLabel(r domain.Role) string {
	if r == "" {
		return "anonymous user"
	}
	return string(r)
}

func humanize(a Action) string {
	return strings.ReplaceAll(string(a), "_", " ")
}
