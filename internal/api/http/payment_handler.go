package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/service"
)

type PaymentHandler struct {
	paymentSvc service.PaymentService
}

func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

type createPaymentRequest struct {
	BookingID   int32           `json:"booking_id" validate:"required,gt=0"`
	PaymentType string          `json:"payment_type" validate:"required,oneof=deposit rent other"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *string         `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Notes       string          `json:"notes" validate:"max=2000"`
}

type paymentProofRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,max=50"`
	TransactionID string `json:"transaction_id" validate:"max=100"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// verifyPaymentRequest approves unless approved is explicitly false.
type verifyPaymentRequest struct {
	Approved *bool  `json:"approved"`
	Notes    string `json:"notes" validate:"max=2000"`
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.paymentSvc.CreatePayment(r.Context(), actor, service.CreatePaymentInput{
		BookingID:   req.BookingID,
		PaymentType: domain.PaymentType(req.PaymentType),
		Amount:      req.Amount,
		DueDate:     optionalDate(req.DueDate),
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	status := domain.PaymentStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.PaymentStatusPending, domain.PaymentStatusVerifying, domain.PaymentStatusCompleted, domain.PaymentStatusFailed:
	default:
		writeError(w, r, domain.Validation("unknown payment status %q", status))
		return
	}
	page, pageSize := pageParams(r)
	items, total, err := h.paymentSvc.ListPayments(r.Context(), actor, status, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Payment]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.paymentSvc.GetPayment(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) SubmitProof(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req paymentProofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.paymentSvc.SubmitPaymentProof(r.Context(), actor, id, service.PaymentProofInput{
		Method:        req.PaymentMethod,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req verifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	approved := req.Approved == nil || *req.Approved
	payment, err := h.paymentSvc.VerifyPayment(r.Context(), actor, id, approved, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
