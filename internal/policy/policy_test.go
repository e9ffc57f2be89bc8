package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview-backend/internal/domain"
)

func TestAllowed(t *testing.T) {
	tenant := domain.Actor{UserID: 20, Role: domain.RoleTenant}
	owner := domain.Actor{UserID: 10, Role: domain.RoleOwner}
	admin := domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	res := Resource{TenantID: 20, OwnerID: 10}

	tests := []struct {
		name   string
		actor  domain.Actor
		action Action
		res    Resource
		want   bool
	}{
		{"tenant books for self", tenant, ActionCreateBooking, Resource{TenantID: 20}, true},
		{"tenant books for another", tenant, ActionCreateBooking, Resource{TenantID: 21}, false},
		{"owner cannot book", owner, ActionCreateBooking, Resource{TenantID: 10}, false},
		{"owner approves own", owner, ActionApproveBooking, res, true},
		{"owner approves foreign", owner, ActionApproveBooking, Resource{TenantID: 20, OwnerID: 11}, false},
		{"tenant cannot approve", tenant, ActionApproveBooking, res, false},
		{"admin approves anything", admin, ActionApproveBooking, Resource{}, true},
		{"tenant cancels own", tenant, ActionCancelBooking, res, true},
		{"owner cancels on own unit", owner, ActionCancelBooking, res, true},
		{"only admin edits bookings", owner, ActionUpdateBooking, res, false},
		{"tenant submits proof", tenant, ActionSubmitPayment, res, true},
		{"owner cannot submit proof", owner, ActionSubmitPayment, res, false},
		{"owner verifies", owner, ActionVerifyPayment, res, true},
		{"tenant cannot verify", tenant, ActionVerifyPayment, res, false},
		{"only admin creates payments", owner, ActionCreatePayment, res, false},
		{"admin cannot review", admin, ActionCreateReview, res, false},
		{"admin manages users", admin, ActionManageUsers, Resource{}, true},
		{"owner cannot manage users", owner, ActionManageUsers, Resource{OwnerID: 10}, false},
		{"owner cannot manage promotions", owner, ActionManagePromotions, res, false},
		{"tenant cannot manage facilities", tenant, ActionManageFacilities, res, false},
		{"rankings are admin only", owner, ActionViewRankings, res, false},
		{"missing party never matches", tenant, ActionViewBooking, Resource{OwnerID: 10}, false},
		{"anonymous", domain.Actor{}, ActionViewBooking, res, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.actor, tt.action, tt.res))
		})
	}
}

func TestAuthorize(t *testing.T) {
	err := Authorize(domain.Actor{UserID: 20, Role: domain.RoleTenant}, ActionVerifyPayment, Resource{TenantID: 20, OwnerID: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPermission)
	assert.Equal(t, "tenant is not allowed to verify payment", err.Error())

	assert.NoError(t, Authorize(domain.Actor{UserID: 1, Role: domain.RoleAdmin}, ActionVerifyPayment, Resource{}))
}

func TestCan(t *testing.T) {
	assert.True(t, Can(domain.RoleOwner, ActionViewReports))
	assert.False(t, Can(domain.RoleTenant, ActionViewReports))
	assert.False(t, Can(domain.RoleTenant, Action("unknown")))
}
