package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromotionType string

const (
	PromotionTypePercentage PromotionType = "percentage"
	PromotionTypeFixed      PromotionType = "fixed"
)

func (t PromotionType) Valid() bool {
	return t == PromotionTypePercentage || t == PromotionTypeFixed
}

// Promotion is a discount code. ApartmentID nil applies it to every apartment.
type Promotion struct {
	ID          int32           `json:"id"`
	Code        string          `json:"code"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        PromotionType   `json:"type"`
	Value       decimal.Decimal `json:"value"`
	ApartmentID *int32          `json:"apartment_id,omitempty"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	MinNights   *int32          `json:"min_nights,omitempty"`
	Active      bool            `json:"active"`
	UsageLimit  *int32          `json:"usage_limit,omitempty"`
	UsageCount  int32           `json:"usage_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UsableOn reports whether the code can be redeemed on day: it must be active,
// day must fall inside [StartDate, EndDate] and the usage limit must not be spent.
func (p *Promotion) UsableOn(day time.Time) bool {
	if !p.Active {
		return false
	}
	if day.Before(p.StartDate) || day.After(p.EndDate) {
		return false
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return false
	}
	return true
}

// Discount returns the amount the promotion takes off base, never more than base.
func (p *Promotion) Discount(base decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.Type {
	case PromotionTypePercentage:
		d = base.Mul(p.Value).Div(decimal.NewFromInt(100)).Round(2)
	case PromotionTypeFixed:
		d = p.Value
	}
	if d.GreaterThan(base) {
		return base
	}
	return d
}

type PromotionFilter struct {
	ActiveOnly bool
	Type       PromotionType
}
