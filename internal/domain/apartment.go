package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "available"
	AvailabilityOccupied  AvailabilityStatus = "occupied"
)

type Apartment struct {
	ID                 int32              `json:"id"`
	OwnerID            int32              `json:"owner_id"`
	UnitNumber         string             `json:"unit_number"`
	UnitType           string             `json:"unit_type"`
	Floor              int32              `json:"floor"`
	SizeSqm            decimal.Decimal    `json:"size_sqm"`
	Bedrooms           int32              `json:"bedrooms"`
	Bathrooms          int32              `json:"bathrooms"`
	PricePerMonth      decimal.Decimal    `json:"price_per_month"`
	DepositAmount      decimal.Decimal    `json:"deposit_amount"`
	MinimumStayMonths  int32              `json:"minimum_stay_months"`
	Description        string             `json:"description"`
	Furnished          bool               `json:"furnished"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	IsArchived         bool               `json:"is_archived"`
	AvgRating          decimal.Decimal    `json:"avg_rating"`
	TotalViews         int32              `json:"total_views"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// EffectiveDeposit falls back to one month of rent when no deposit is configured.
func (a *Apartment) EffectiveDeposit() decimal.Decimal {
	if a.DepositAmount.IsPositive() {
		return a.DepositAmount
	}
	return a.PricePerMonth
}

type ApartmentFilter struct {
	OwnerID         *int32
	Status          AvailabilityStatus
	UnitType        string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Search          string
	IncludeArchived bool
	Page            int32
	PageSize        int32
}

type Favorite struct {
	ID          int32     `json:"id"`
	UserID      int32     `json:"user_id"`
	ApartmentID int32     `json:"apartment_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// OccupancySummary is the aggregate behind the occupancy report.
type OccupancySummary struct {
	Total         int32   `json:"total"`
	Occupied      int32   `json:"occupied"`
	Available     int32   `json:"available"`
	OccupancyRate float64 `json:"occupancy_rate"`
}
