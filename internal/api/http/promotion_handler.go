package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/service"
	"vidaview-backend/internal/utils"
)

type PromotionHandler struct {
	promoSvc service.PromotionService
}

func NewPromotionHandler(promoSvc service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promoSvc: promoSvc}
}

type promotionRequest struct {
	Code        string          `json:"code" validate:"required,max=50"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description"`
	Type        string          `json:"type" validate:"required,oneof=percentage fixed"`
	Value       decimal.Decimal `json:"value"`
	ApartmentID *int32          `json:"apartment_id" validate:"omitempty,gt=0"`
	StartDate   string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	MinNights   *int32          `json:"min_nights" validate:"omitempty,gte=0"`
	Active      *bool           `json:"active"`
	UsageLimit  *int32          `json:"usage_limit" validate:"omitempty,gte=1"`
}

type promotionUpdateRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Type        *string          `json:"type" validate:"omitempty,oneof=percentage fixed"`
	Value       *decimal.Decimal `json:"value"`
	ApartmentID *int32           `json:"apartment_id" validate:"omitempty,gt=0"`
	StartDate   *string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string          `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	MinNights   *int32           `json:"min_nights" validate:"omitempty,gte=0"`
	Active      *bool            `json:"active"`
	UsageLimit  *int32           `json:"usage_limit" validate:"omitempty,gte=1"`
}

type promotionValidResponse struct {
	Valid     bool              `json:"valid"`
	Promotion *domain.Promotion `json:"promotion"`
}

func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	items, err := h.promoSvc.ListPromotions(r.Context(), actor, domain.PromotionType(r.URL.Query().Get("type")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.promoSvc.GetPromotion(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req promotionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)
	p := &domain.Promotion{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.PromotionType(req.Type),
		Value:       req.Value,
		ApartmentID: req.ApartmentID,
		StartDate:   start,
		EndDate:     end,
		MinNights:   req.MinNights,
		Active:      req.Active == nil || *req.Active,
		UsageLimit:  req.UsageLimit,
	}
	if err := h.promoSvc.CreatePromotion(r.Context(), actor, p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req promotionUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in := service.PromotionUpdate{
		Title:       req.Title,
		Description: req.Description,
		Value:       req.Value,
		ApartmentID: req.ApartmentID,
		StartDate:   optionalDate(req.StartDate),
		EndDate:     optionalDate(req.EndDate),
		MinNights:   req.MinNights,
		Active:      req.Active,
		UsageLimit:  req.UsageLimit,
	}
	if req.Type != nil {
		typ := domain.PromotionType(*req.Type)
		in.Type = &typ
	}
	p, err := h.promoSvc.UpdatePromotion(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.promoSvc.DeletePromotion(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PromotionHandler) Validate(w http.ResponseWriter, r *http.Request) {
	p, err := h.promoSvc.ValidateCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, promotionValidResponse{Valid: true, Promotion: p})
}
