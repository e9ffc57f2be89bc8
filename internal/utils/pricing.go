package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd formatted string into a UTC calendar date.
func ParseDate(dateStr string) (time.Time, error) {
	d, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", dateStr)
	}
	return d, nil
}

// DateOf drops the clock part of t, keeping its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween is the whole-month difference between two dates. Days of month
// are ignored: 2024-01-31 to 2024-02-01 counts as one month.
func MonthsBetween(start, end time.Time) int32 {
	return int32((end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()))
}

// BookingTotals is the financial breakdown stored on a booking.
type BookingTotals struct {
	TotalMonths    int32
	MonthlyRent    decimal.Decimal
	Deposit        decimal.Decimal
	UtilityDeposit decimal.Decimal
	AdminFee       decimal.Decimal
	RentTotal      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// CalculateBookingTotals applies monthly_rent * months + deposit + utility + admin fee.
func CalculateBookingTotals(monthlyRent decimal.Decimal, months int32, deposit, utilityDeposit, adminFee decimal.Decimal) BookingTotals {
	rent := monthlyRent.Mul(decimal.NewFromInt32(months))
	return BookingTotals{
		TotalMonths:    months,
		MonthlyRent:    monthlyRent,
		Deposit:        deposit,
		UtilityDeposit: utilityDeposit,
		AdminFee:       adminFee,
		RentTotal:      rent,
		TotalAmount:    rent.Add(deposit).Add(utilityDeposit).Add(adminFee),
	}
}

// GenerateBookingCode returns BK + yyyymmdd + six random digits.
func GenerateBookingCode(now time.Time) string {
	return generateCode("BK", now)
}

// GeneratePaymentCode returns PAY + yyyymmdd + six random digits.
func GeneratePaymentCode(now time.Time) string {
	return generateCode("PAY", now)
}

func generateCode(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%s%06d", prefix, now.Format("20060102"), rand.Intn(1000000))
}
