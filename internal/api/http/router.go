// Package http exposes the services as a JSON API over gorilla/mux.
package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"vidaview-backend/internal/security"
	"vidaview-backend/internal/service"
)

// Services bundles everything the handlers call into.
type Services struct {
	Auth          service.AuthService
	Apartments    service.ApartmentService
	Bookings      service.BookingService
	Payments      service.PaymentService
	Reviews       service.ReviewService
	Notifications service.NotificationService
	Reports       service.ReportService
	Users         service.UserService
	Facilities    service.FacilityService
	Promotions    service.PromotionService
}

// NewRouter registers every route under /api/v1. Route names select the
// security level applied by AuthMiddleware.
func NewRouter(svcs Services, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(Recoverer, RequestID, Logging, NewAuthMiddleware(tokens).Handler)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("health")

	api := r.PathPrefix("/api/v1").Subrouter()

	auth := NewAuthHandler(svcs.Auth)
	api.HandleFunc("/auth/register", auth.Register).Methods(http.MethodPost).Name("auth.register")
	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost).Name("auth.login")
	api.HandleFunc("/auth/refresh", auth.Refresh).Methods(http.MethodPost).Name("auth.refresh")
	api.HandleFunc("/auth/me", auth.Me).Methods(http.MethodGet).Name("auth.me")
	api.HandleFunc("/auth/change-password", auth.ChangePassword).Methods(http.MethodPost).Name("auth.change_password")

	users := NewUserHandler(svcs.Users)
	api.HandleFunc("/profile", users.Profile).Methods(http.MethodGet).Name("profile.get")
	api.HandleFunc("/profile", users.UpdateProfile).Methods(http.MethodPut).Name("profile.update")
	api.HandleFunc("/users", users.List).Methods(http.MethodGet).Name("users.list")
	api.HandleFunc("/users/{id:[0-9]+}", users.Get).Methods(http.MethodGet).Name("users.get")
	api.HandleFunc("/users/{id:[0-9]+}", users.Delete).Methods(http.MethodDelete).Name("users.delete")
	api.HandleFunc("/users/{id:[0-9]+}/status", users.UpdateStatus).Methods(http.MethodPut).Name("users.status")

	apts := NewApartmentHandler(svcs.Apartments, svcs.Bookings, svcs.Reviews)
	api.HandleFunc("/apartments", apts.List).Methods(http.MethodGet).Name("apartments.list")
	api.HandleFunc("/apartments", apts.Create).Methods(http.MethodPost).Name("apartments.create")
	api.HandleFunc("/apartments/{id:[0-9]+}", apts.Get).Methods(http.MethodGet).Name("apartments.get")
	api.HandleFunc("/apartments/{id:[0-9]+}", apts.Update).Methods(http.MethodPut).Name("apartments.update")
	api.HandleFunc("/apartments/{id:[0-9]+}", apts.Delete).Methods(http.MethodDelete).Name("apartments.delete")
	api.HandleFunc("/apartments/{id:[0-9]+}/archive", apts.Archive).Methods(http.MethodPost).Name("apartments.archive")
	api.HandleFunc("/apartments/{id:[0-9]+}/availability", apts.Availability).Methods(http.MethodGet).Name("apartments.availability")
	api.HandleFunc("/apartments/{id:[0-9]+}/reviews", apts.Reviews).Methods(http.MethodGet).Name("apartments.reviews")
	api.HandleFunc("/apartments/{id:[0-9]+}/favorite", apts.ToggleFavorite).Methods(http.MethodPost).Name("apartments.favorite")
	api.HandleFunc("/my/apartments", apts.Mine).Methods(http.MethodGet).Name("apartments.mine")
	api.HandleFunc("/favorites", apts.Favorites).Methods(http.MethodGet).Name("favorites.list")

	facilities := NewFacilityHandler(svcs.Facilities)
	api.HandleFunc("/facilities", facilities.List).Methods(http.MethodGet).Name("facilities.list")
	api.HandleFunc("/facilities", facilities.Create).Methods(http.MethodPost).Name("facilities.create")
	api.HandleFunc("/facilities/{id:[0-9]+}", facilities.Update).Methods(http.MethodPut).Name("facilities.update")
	api.HandleFunc("/facilities/{id:[0-9]+}", facilities.Delete).Methods(http.MethodDelete).Name("facilities.delete")
	api.HandleFunc("/apartments/{id:[0-9]+}/facilities", facilities.ForApartment).Methods(http.MethodGet).Name("apartments.facilities")
	api.HandleFunc("/apartments/{id:[0-9]+}/facilities", facilities.SetForApartment).Methods(http.MethodPut).Name("apartments.set_facilities")

	promos := NewPromotionHandler(svcs.Promotions)
	api.HandleFunc("/promotions", promos.List).Methods(http.MethodGet).Name("promotions.list")
	api.HandleFunc("/promotions", promos.Create).Methods(http.MethodPost).Name("promotions.create")
	api.HandleFunc("/promotions/{id:[0-9]+}", promos.Get).Methods(http.MethodGet).Name("promotions.get")
	api.HandleFunc("/promotions/{id:[0-9]+}", promos.Update).Methods(http.MethodPut).Name("promotions.update")
	api.HandleFunc("/promotions/{id:[0-9]+}", promos.Delete).Methods(http.MethodDelete).Name("promotions.delete")
	api.HandleFunc("/promotions/validate/{code}", promos.Validate).Methods(http.MethodGet).Name("promotions.validate")

	bookings := NewBookingHandler(svcs.Bookings, svcs.Payments)
	api.HandleFunc("/bookings", bookings.Create).Methods(http.MethodPost).Name("bookings.create")
	api.HandleFunc("/bookings", bookings.List).Methods(http.MethodGet).Name("bookings.list")
	api.HandleFunc("/bookings/{id:[0-9]+}", bookings.Get).Methods(http.MethodGet).Name("bookings.get")
	api.HandleFunc("/bookings/{id:[0-9]+}", bookings.Update).Methods(http.MethodPut).Name("bookings.update")
	api.HandleFunc("/bookings/{id:[0-9]+}/approve", bookings.Approve).Methods(http.MethodPost).Name("bookings.approve")
	api.HandleFunc("/bookings/{id:[0-9]+}/reject", bookings.Reject).Methods(http.MethodPost).Name("bookings.reject")
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", bookings.Cancel).Methods(http.MethodPost).Name("bookings.cancel")
	api.HandleFunc("/bookings/{id:[0-9]+}/payments", bookings.Payments).Methods(http.MethodGet).Name("bookings.payments")

	payments := NewPaymentHandler(svcs.Payments)
	api.HandleFunc("/payments", payments.Create).Methods(http.MethodPost).Name("payments.create")
	api.HandleFunc("/payments", payments.List).Methods(http.MethodGet).Name("payments.list")
	api.HandleFunc("/payments/{id:[0-9]+}", payments.Get).Methods(http.MethodGet).Name("payments.get")
	api.HandleFunc("/payments/{id:[0-9]+}/proof", payments.SubmitProof).Methods(http.MethodPost).Name("payments.proof")
	api.HandleFunc("/payments/{id:[0-9]+}/verify", payments.Verify).Methods(http.MethodPost).Name("payments.verify")

	reviews := NewReviewHandler(svcs.Reviews)
	api.HandleFunc("/reviews", reviews.Create).Methods(http.MethodPost).Name("reviews.create")
	api.HandleFunc("/reviews/{id:[0-9]+}/approve", reviews.Approve).Methods(http.MethodPost).Name("reviews.approve")

	notes := NewNotificationHandler(svcs.Notifications)
	api.HandleFunc("/notifications", notes.List).Methods(http.MethodGet).Name("notifications.list")
	api.HandleFunc("/notifications/unread-count", notes.UnreadCount).Methods(http.MethodGet).Name("notifications.unread")
	api.HandleFunc("/notifications/{id:[0-9]+}/read", notes.MarkRead).Methods(http.MethodPost).Name("notifications.read")
	api.HandleFunc("/notifications/read-all", notes.MarkAllRead).Methods(http.MethodPost).Name("notifications.read_all")

	reports := NewReportHandler(svcs.Reports)
	api.HandleFunc("/reports/occupancy", reports.Occupancy).Methods(http.MethodGet).Name("reports.occupancy")
	api.HandleFunc("/reports/revenue", reports.Revenue).Methods(http.MethodGet).Name("reports.revenue")
	api.HandleFunc("/reports/top-apartments", reports.TopApartments).Methods(http.MethodGet).Name("reports.top_apartments")

	return r
}
