package http

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/service"
	"vidaview-backend/internal/utils"
)

type BookingHandler struct {
	bookingSvc service.BookingService
	paymentSvc service.PaymentService
}

func NewBookingHandler(bookingSvc service.BookingService, paymentSvc service.PaymentService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, paymentSvc: paymentSvc}
}

type createBookingRequest struct {
	ApartmentID    int32            `json:"apartment_id" validate:"required,gt=0"`
	TenantID       int32            `json:"tenant_id" validate:"gte=0"`
	StartDate      string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string           `json:"end_date" validate:"required,datetime=2006-01-02"`
	UtilityDeposit *decimal.Decimal `json:"utility_deposit"`
	AdminFee       *decimal.Decimal `json:"admin_fee"`
	Notes          string           `json:"notes" validate:"max=2000"`
}

type updateBookingRequest struct {
	StartDate         *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate           *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status            *string `json:"status" validate:"omitempty,oneof=pending confirmed active rejected cancelled completed"`
	Notes             *string `json:"notes"`
	ContractStartDate *string `json:"contract_start_date" validate:"omitempty,datetime=2006-01-02"`
	ContractEndDate   *string `json:"contract_end_date" validate:"omitempty,datetime=2006-01-02"`
}

type rejectBookingRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type createBookingResponse struct {
	Booking *domain.Booking `json:"booking"`
	Deposit *domain.Payment `json:"deposit_payment"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	// The validator has already checked the layout.
	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)

	booking, deposit, err := h.bookingSvc.CreateBooking(r.Context(), actor, service.CreateBookingInput{
		ApartmentID:    req.ApartmentID,
		TenantID:       req.TenantID,
		StartDate:      start,
		EndDate:        end,
		UtilityDeposit: req.UtilityDeposit,
		AdminFee:       req.AdminFee,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createBookingResponse{Booking: booking, Deposit: deposit})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, r, domain.Validation("unknown booking status %q", status))
		return
	}
	page, pageSize := pageParams(r)
	items, total, err := h.bookingSvc.ListBookings(r.Context(), actor, status, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Booking]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookingSvc.GetBooking)
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookingSvc.ApproveBooking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookingSvc.CancelBooking)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rejectBookingRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	booking, err := h.bookingSvc.RejectBooking(r.Context(), actor, id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in := service.UpdateBookingInput{
		StartDate:         optionalDate(req.StartDate),
		EndDate:           optionalDate(req.EndDate),
		Notes:             req.Notes,
		ContractStartDate: optionalDate(req.ContractStartDate),
		ContractEndDate:   optionalDate(req.ContractEndDate),
	}
	if req.Status != nil {
		status := domain.BookingStatus(*req.Status)
		in.Status = &status
	}
	booking, err := h.bookingSvc.UpdateBooking(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Payments(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := h.paymentSvc.ListPaymentsForBooking(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error)) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	booking, err := op(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// optionalDate parses a date the validator has already accepted.
func optionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	d, err := utils.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &d
}
