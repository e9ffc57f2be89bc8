package http

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/service"
)

func TestUserHandler_AdminManagesAccounts(t *testing.T) {
	s := newTestServer(t)
	s.users.On("UpdateUserStatus", mock.Anything, admin, int32(20), domain.UserStatusSuspended).
		Return(&domain.User{ID: 20, Status: domain.UserStatusSuspended}, nil)
	s.users.On("DeleteUser", mock.Anything, admin, int32(21)).
		Return(domain.Conflict("user has bookings, deactivate the account instead"))
	token := s.accessToken(t, admin)

	rec := s.do(http.MethodPut, "/api/v1/users/20/status", `{"status":"suspended"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var u domain.User
	decodeBody(t, rec, &u)
	assert.Equal(t, domain.UserStatusSuspended, u.Status)

	rec = s.do(http.MethodPut, "/api/v1/users/20/status", `{"status":"banned"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/v1/users/21", "", token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUserHandler_ListFilter(t *testing.T) {
	s := newTestServer(t)
	s.users.On("ListUsers", mock.Anything, admin, domain.UserFilter{Role: domain.RoleOwner, Search: "budi", Page: 1, PageSize: 20}).
		Return([]domain.User{{ID: 10}}, int32(1), nil)

	rec := s.do(http.MethodGet, "/api/v1/users?role=owner&q=budi", "", s.accessToken(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	decodeBody(t, rec, &resp)
	assert.Equal(t, float64(1), resp["total"])
	assert.Equal(t, float64(20), resp["page_size"])
}

func TestUserHandler_Profile(t *testing.T) {
	s := newTestServer(t)
	name := "Sari Wulandari"
	s.users.On("UpdateProfile", mock.Anything, tenant, service.ProfileUpdate{FullName: &name}).
		Return(&domain.User{ID: 20, FullName: name}, nil)

	rec := s.do(http.MethodPut, "/api/v1/profile", `{"full_name":"Sari Wulandari"}`, s.accessToken(t, tenant))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("ChangePassword", mock.Anything, tenant.UserID, "old-secret", "new-secret-1").Return(nil)
	s.auth.On("ChangePassword", mock.Anything, tenant.UserID, "guess", "new-secret-1").Return(service.ErrWrongPassword)
	token := s.accessToken(t, tenant)

	rec := s.do(http.MethodPost, "/api/v1/auth/change-password", `{"current_password":"old-secret","new_password":"new-secret-1"}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/change-password", `{"current_password":"guess","new_password":"new-secret-1"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/change-password", `{"current_password":"old-secret","new_password":"short"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacilityHandler(t *testing.T) {
	s := newTestServer(t)
	s.fac.On("ListFacilities", mock.Anything, domain.FacilityFilter{Category: "unit"}).
		Return([]domain.Facility{{ID: 1, Name: "Air conditioning"}}, nil)
	s.fac.On("SetApartmentFacilities", mock.Anything, owner, int32(5), []int32{1, 2}).
		Return([]domain.Facility{{ID: 1}, {ID: 2}}, nil)

	rec := s.do(http.MethodGet, "/api/v1/facilities?category=unit", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []domain.Facility
	decodeBody(t, rec, &items)
	assert.Len(t, items, 1)

	rec = s.do(http.MethodPut, "/api/v1/apartments/5/facilities", `{"facility_ids":[1,2]}`, s.accessToken(t, owner))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &items)
	assert.Len(t, items, 2)

	rec = s.do(http.MethodPut, "/api/v1/apartments/5/facilities", `{"facility_ids":[0]}`, s.accessToken(t, owner))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/facilities", `{"name":"Gym"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPromotionHandler_Create(t *testing.T) {
	s := newTestServer(t)
	s.promos.On("CreatePromotion", mock.Anything, admin, mock.MatchedBy(func(p *domain.Promotion) bool {
		return p.Code == "welcome10" && p.Active && p.Type == domain.PromotionTypePercentage &&
			p.Value.Equal(decimal.NewFromInt(10)) && p.EndDate.Month() == 3
	})).Return(nil)

	body := `{"code":"welcome10","title":"Welcome","type":"percentage","value":"10","start_date":"2024-01-01","end_date":"2024-03-31"}`
	rec := s.do(http.MethodPost, "/api/v1/promotions", body, s.accessToken(t, admin))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/promotions", `{"code":"x","title":"t","type":"bogo","value":"1","start_date":"2024-01-01","end_date":"2024-01-02"}`, s.accessToken(t, admin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPromotionHandler_PublicAccess(t *testing.T) {
	s := newTestServer(t)
	s.promos.On("ListPromotions", mock.Anything, domain.Actor{}, domain.PromotionType("")).
		Return([]domain.Promotion{{ID: 1, Code: "WELCOME10", Active: true}}, nil)
	s.promos.On("ValidateCode", mock.Anything, "welcome10").
		Return(&domain.Promotion{ID: 1, Code: "WELCOME10"}, nil)
	s.promos.On("ValidateCode", mock.Anything, "old").
		Return(nil, domain.Validation("promotion code OLD has expired"))

	rec := s.do(http.MethodGet, "/api/v1/promotions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/promotions/validate/welcome10", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp promotionValidResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Valid)
	assert.Equal(t, "WELCOME10", resp.Promotion.Code)

	rec = s.do(http.MethodGet, "/api/v1/promotions/validate/old", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler(t *testing.T) {
	s := newTestServer(t)
	s.reports.On("Revenue", mock.Anything, owner, 2024).
		Return(&domain.RevenueReport{Year: 2024, Total: decimal.NewFromInt(3500000)}, nil)
	s.reports.On("TopApartments", mock.Anything, owner, int32(3)).
		Return(nil, domain.Permission("owner is not allowed to view rankings"))
	token := s.accessToken(t, owner)

	rec := s.do(http.MethodGet, "/api/v1/reports/revenue?year=2024", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.RevenueReport
	decodeBody(t, rec, &report)
	assert.Equal(t, 2024, report.Year)

	rec = s.do(http.MethodGet, "/api/v1/reports/top-apartments?limit=3", "", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
