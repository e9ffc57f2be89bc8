package http

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/service"
	"vidaview-backend/internal/utils"
)

type ApartmentHandler struct {
	aptSvc     service.ApartmentService
	bookingSvc service.BookingService
	reviewSvc  service.ReviewService
}

func NewApartmentHandler(aptSvc service.ApartmentService, bookingSvc service.BookingService, reviewSvc service.ReviewService) *ApartmentHandler {
	return &ApartmentHandler{aptSvc: aptSvc, bookingSvc: bookingSvc, reviewSvc: reviewSvc}
}

type apartmentRequest struct {
	OwnerID           int32           `json:"owner_id"`
	UnitNumber        string          `json:"unit_number" validate:"required,max=20"`
	UnitType          string          `json:"unit_type" validate:"required"`
	Floor             int32           `json:"floor"`
	SizeSqm           decimal.Decimal `json:"size_sqm"`
	Bedrooms          int32           `json:"bedrooms" validate:"gte=0"`
	Bathrooms         int32           `json:"bathrooms" validate:"gte=0"`
	PricePerMonth     decimal.Decimal `json:"price_per_month"`
	DepositAmount     decimal.Decimal `json:"deposit_amount"`
	MinimumStayMonths int32           `json:"minimum_stay_months" validate:"gte=0"`
	Description       string          `json:"description"`
	Furnished         bool            `json:"furnished"`
}

type apartmentUpdateRequest struct {
	UnitType          *string          `json:"unit_type"`
	Floor             *int32           `json:"floor"`
	SizeSqm           *decimal.Decimal `json:"size_sqm"`
	Bedrooms          *int32           `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms         *int32           `json:"bathrooms" validate:"omitempty,gte=0"`
	PricePerMonth     *decimal.Decimal `json:"price_per_month"`
	DepositAmount     *decimal.Decimal `json:"deposit_amount"`
	MinimumStayMonths *int32           `json:"minimum_stay_months" validate:"omitempty,gte=1"`
	Description       *string          `json:"description"`
	Furnished         *bool            `json:"furnished"`
}

type availabilityResponse struct {
	ApartmentID int32  `json:"apartment_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Available   bool   `json:"available"`
}

func (h *ApartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ApartmentFilter{
		Status:   domain.AvailabilityStatus(q.Get("status")),
		UnitType: q.Get("unit_type"),
		Search:   q.Get("q"),
	}
	filter.Page, filter.PageSize = pageParams(r)
	for name, dst := range map[string]**decimal.Decimal{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		if raw := q.Get(name); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				writeError(w, r, domain.Validation("invalid %s %q", name, raw))
				return
			}
			*dst = &d
		}
	}

	items, total, err := h.aptSvc.ListApartments(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Apartment]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

func (h *ApartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req apartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	apt := &domain.Apartment{
		OwnerID:           req.OwnerID,
		UnitNumber:        req.UnitNumber,
		UnitType:          req.UnitType,
		Floor:             req.Floor,
		SizeSqm:           req.SizeSqm,
		Bedrooms:          req.Bedrooms,
		Bathrooms:         req.Bathrooms,
		PricePerMonth:     req.PricePerMonth,
		DepositAmount:     req.DepositAmount,
		MinimumStayMonths: req.MinimumStayMonths,
		Description:       req.Description,
		Furnished:         req.Furnished,
	}
	if err := h.aptSvc.CreateApartment(r.Context(), actor, apt); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, apt)
}

// Get works for anonymous callers; the actor only matters for archived units.
func (h *ApartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := ActorFromContext(r.Context())
	apt, err := h.aptSvc.GetApartment(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}

func (h *ApartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req apartmentUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	apt, err := h.aptSvc.UpdateApartment(r.Context(), actor, id, service.ApartmentUpdate{
		UnitType:          req.UnitType,
		Floor:             req.Floor,
		SizeSqm:           req.SizeSqm,
		Bedrooms:          req.Bedrooms,
		Bathrooms:         req.Bathrooms,
		PricePerMonth:     req.PricePerMonth,
		DepositAmount:     req.DepositAmount,
		MinimumStayMonths: req.MinimumStayMonths,
		Description:       req.Description,
		Furnished:         req.Furnished,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}

func (h *ApartmentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.aptSvc.ArchiveApartment)
}

func (h *ApartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.aptSvc.DeleteApartment)
}

func (h *ApartmentHandler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor domain.Actor, id int32) error) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := op(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ApartmentHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	start, err := utils.ParseDate(q.Get("start_date"))
	if err != nil {
		writeError(w, r, domain.Validation("start_date: %v", err))
		return
	}
	end, err := utils.ParseDate(q.Get("end_date"))
	if err != nil {
		writeError(w, r, domain.Validation("end_date: %v", err))
		return
	}
	available, err := h.bookingSvc.CheckAvailability(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		ApartmentID: id,
		StartDate:   start.Format(utils.DateLayout),
		EndDate:     end.Format(utils.DateLayout),
		Available:   available,
	})
}

func (h *ApartmentHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviews, err := h.reviewSvc.ListApartmentReviews(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ApartmentHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	fav, err := h.aptSvc.ToggleFavorite(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_favorite": fav})
}

func (h *ApartmentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)
	items, total, err := h.aptSvc.ListMyApartments(r.Context(), actor, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Apartment]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *ApartmentHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	items, err := h.aptSvc.ListFavorites(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
