package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// bookingTransitions lists every legal move of the booking lifecycle.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusActive, BookingStatusCancelled},
	BookingStatusActive:    {BookingStatusCompleted, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusActive,
		BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCancelled || s == BookingStatusCompleted
}

// Blocking reports whether a booking in this state holds its date range.
func (s BookingStatus) Blocking() bool {
	return s == BookingStatusConfirmed || s == BookingStatusActive
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BlockingBookingStatuses are the states that participate in availability checks.
var BlockingBookingStatuses = []BookingStatus{BookingStatusConfirmed, BookingStatusActive}

type Booking struct {
	ID                int32           `json:"id"`
	ApartmentID       int32           `json:"apartment_id"`
	TenantID          int32           `json:"tenant_id"`
	BookingCode       string          `json:"booking_code"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	TotalMonths       int32           `json:"total_months"`
	MonthlyRent       decimal.Decimal `json:"monthly_rent"`
	DepositPaid       decimal.Decimal `json:"deposit_paid"`
	UtilityDeposit    decimal.Decimal `json:"utility_deposit"`
	AdminFee          decimal.Decimal `json:"admin_fee"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Status            BookingStatus   `json:"status"`
	ApprovedBy        *int32          `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	ContractStartDate *time.Time      `json:"contract_start_date,omitempty"`
	ContractEndDate   *time.Time      `json:"contract_end_date,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BookingFilter scopes listings; a nil TenantID/OwnerID means no restriction.
type BookingFilter struct {
	TenantID *int32
	OwnerID  *int32
	Status   BookingStatus
	Page     int32
	PageSize int32
}
