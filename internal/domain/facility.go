package domain

import "time"

type FacilityStatus string

const (
	FacilityStatusActive   FacilityStatus = "active"
	FacilityStatusInactive FacilityStatus = "inactive"
)

func (s FacilityStatus) Valid() bool {
	return s == FacilityStatusActive || s == FacilityStatusInactive
}

// DefaultFacilityCategory is applied when a facility is created without one.
const DefaultFacilityCategory = "building"

// Facility is an amenity that can be attached to apartments, such as a pool or gym.
type Facility struct {
	ID          int32          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Category    string         `json:"category"`
	Status      FacilityStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

type FacilityFilter struct {
	Category string
	// Status empty means every status.
	Status FacilityStatus
}
