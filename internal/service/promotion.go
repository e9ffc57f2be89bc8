package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/policy"
	"vidaview-backend/internal/repository"
	"vidaview-backend/internal/utils"
)

// PromotionUpdate carries the editable promotion fields. The code is fixed once
// created.
type PromotionUpdate struct {
	Title       *string
	Description *string
	Type        *domain.PromotionType
	Value       *decimal.Decimal
	ApartmentID *int32
	StartDate   *time.Time
	EndDate     *time.Time
	MinNights   *int32
	Active      *bool
	UsageLimit  *int32
}

var hundred = decimal.NewFromInt(100)

type promotionService struct {
	Deps
}

func NewPromotionService(deps Deps) PromotionService {
	return &promotionService{Deps: deps}
}

// ListPromotions shows admins every promotion and everyone else the active ones.
func (s *promotionService) ListPromotions(ctx context.Context, actor domain.Actor, typ domain.PromotionType) ([]domain.Promotion, error) {
	if typ != "" && !typ.Valid() {
		return nil, domain.Validation("unknown promotion type %q", typ)
	}
	filter := domain.PromotionFilter{
		ActiveOnly: !policy.Can(actor.Role, policy.ActionManagePromotions),
		Type:       typ,
	}
	return s.Repos.Promotions.List(ctx, filter)
}

func (s *promotionService) GetPromotion(ctx context.Context, actor domain.Actor, id int32) (*domain.Promotion, error) {
	p, err := s.Repos.Promotions.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("promotion", err)
	}
	if !p.Active && !policy.Can(actor.Role, policy.ActionManagePromotions) {
		return nil, domain.NotFound("promotion")
	}
	return p, nil
}

func (s *promotionService) CreatePromotion(ctx context.Context, actor domain.Actor, p *domain.Promotion) error {
	if err := policy.Authorize(actor, policy.ActionManagePromotions, policy.Resource{}); err != nil {
		return err
	}
	p.Code = normalizeCode(p.Code)
	p.Title = strings.TrimSpace(p.Title)
	p.StartDate = utils.DateOf(p.StartDate)
	p.EndDate = utils.DateOf(p.EndDate)
	p.UsageCount = 0
	if err := validatePromotion(p); err != nil {
		return err
	}
	if err := s.checkApartment(ctx, p.ApartmentID); err != nil {
		return err
	}

	if _, err := s.Repos.Promotions.GetByCode(ctx, p.Code); err == nil {
		return domain.Conflict("promotion code %s is already in use", p.Code)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err := s.Repos.Promotions.Create(ctx, p); err != nil {
		logger.ExitMethodWithError("promotionService.CreatePromotion", err, "code", p.Code)
		return err
	}
	s.record(actor, "create_promotion", "promotion", p.ID, nil, map[string]any{"code": p.Code, "type": p.Type, "value": p.Value.String()})
	return nil
}

func (s *promotionService) UpdatePromotion(ctx context.Context, actor domain.Actor, id int32, in PromotionUpdate) (*domain.Promotion, error) {
	if err := policy.Authorize(actor, policy.ActionManagePromotions, policy.Resource{}); err != nil {
		return nil, err
	}
	p, err := s.Repos.Promotions.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("promotion", err)
	}
	before := map[string]any{"active": p.Active, "value": p.Value.String()}

	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Value != nil {
		p.Value = *in.Value
	}
	if in.ApartmentID != nil {
		p.ApartmentID = in.ApartmentID
		if err := s.checkApartment(ctx, p.ApartmentID); err != nil {
			return nil, err
		}
	}
	if in.StartDate != nil {
		p.StartDate = utils.DateOf(*in.StartDate)
	}
	if in.EndDate != nil {
		p.EndDate = utils.DateOf(*in.EndDate)
	}
	if in.MinNights != nil {
		p.MinNights = in.MinNights
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.UsageLimit != nil {
		p.UsageLimit = in.UsageLimit
	}
	if err := validatePromotion(p); err != nil {
		return nil, err
	}
	if err := s.Repos.Promotions.Update(ctx, p); err != nil {
		return nil, lookupError("promotion", err)
	}
	s.record(actor, "update_promotion", "promotion", id, before, map[string]any{"active": p.Active, "value": p.Value.String()})
	return p, nil
}

func (s *promotionService) DeletePromotion(ctx context.Context, actor domain.Actor, id int32) error {
	if err := policy.Authorize(actor, policy.ActionManagePromotions, policy.Resource{}); err != nil {
		return err
	}
	if err := s.Repos.Promotions.Delete(ctx, id); err != nil {
		return lookupError("promotion", err)
	}
	s.record(actor, "delete_promotion", "promotion", id, nil, nil)
	return nil
}

// ValidateCode returns the promotion behind code when it can be redeemed today.
func (s *promotionService) ValidateCode(ctx context.Context, code string) (*domain.Promotion, error) {
	p, err := s.Repos.Promotions.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound("promotion code")
		}
		return nil, err
	}
	if !p.Active {
		return nil, domain.NotFound("promotion code")
	}

	today := utils.DateOf(s.now())
	switch {
	case today.Before(p.StartDate):
		return nil, domain.Validation("promotion code %s is not active until %s", p.Code, p.StartDate.Format(utils.DateLayout))
	case today.After(p.EndDate):
		return nil, domain.Validation("promotion code %s has expired", p.Code)
	case !p.UsableOn(today):
		return nil, domain.Validation("promotion code %s has reached its usage limit", p.Code)
	}
	return p, nil
}

func (s *promotionService) checkApartment(ctx context.Context, apartmentID *int32) error {
	if apartmentID == nil {
		return nil
	}
	if _, err := s.Repos.Apartments.GetByID(ctx, *apartmentID); err != nil {
		return lookupError("apartment", err)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validatePromotion(p *domain.Promotion) error {
	if p.Code == "" {
		return domain.Validation("promotion code is required")
	}
	if p.Title == "" {
		return domain.Validation("promotion title is required")
	}
	if !p.Type.Valid() {
		return domain.Validation("promotion type must be percentage or fixed")
	}
	if !p.Value.IsPositive() {
		return domain.Validation("promotion value must be positive")
	}
	if p.Type == domain.PromotionTypePercentage && p.Value.GreaterThan(hundred) {
		return domain.Validation("a percentage promotion cannot exceed 100")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return domain.Validation("start_date and end_date are required")
	}
	if p.EndDate.Before(p.StartDate) {
		return domain.Validation("end date must not be before start date")
	}
	if p.MinNights != nil && *p.MinNights < 0 {
		return domain.Validation("min_nights cannot be negative")
	}
	if p.UsageLimit != nil && *p.UsageLimit < 1 {
		return domain.Validation("usage_limit must be at least 1")
	}
	return nil
}
