package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "deposit"
	PaymentTypeRent    PaymentType = "rent"
	PaymentTypeOther   PaymentType = "other"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeDeposit || t == PaymentTypeRent || t == PaymentTypeOther
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusVerifying PaymentStatus = "verifying"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

type Payment struct {
	ID            int32           `json:"id"`
	BookingID     int32           `json:"booking_id"`
	PaymentCode   string          `json:"payment_code"`
	PaymentType   PaymentType     `json:"payment_type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	VerifiedBy    *int32          `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time      `json:"verified_at,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PaymentFilter struct {
	TenantID *int32
	OwnerID  *int32
	Status   PaymentStatus
	Page     int32
	PageSize int32
}

// PaymentReminder is a pending payment joined with the tenant it is owed by.
type PaymentReminder struct {
	PaymentID   int32
	PaymentCode string
	TenantID    int32
	Amount      decimal.Decimal
	DueDate     time.Time
}
