package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID          int32      `json:"id"`
	ApartmentID int32      `json:"apartment_id"`
	TenantID    int32      `json:"tenant_id"`
	BookingID   int32      `json:"booking_id"`
	Rating      int32      `json:"rating"`
	ReviewText  string     `json:"review_text,omitempty"`
	IsApproved  bool       `json:"is_approved"`
	ApprovedBy  *int32     `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
