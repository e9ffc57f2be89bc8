package domain

import "github.com/shopspring/decimal"

// MonthlyRevenue sums completed payments whose payment date falls in Month.
type MonthlyRevenue struct {
	Month    int             `json:"month"`
	Amount   decimal.Decimal `json:"amount"`
	Payments int32           `json:"payments"`
}

type RevenueReport struct {
	Year    int              `json:"year"`
	Total   decimal.Decimal  `json:"total"`
	Monthly []MonthlyRevenue `json:"monthly"`
}

type ApartmentRanking string

const (
	RankByViews    ApartmentRanking = "most_viewed"
	RankByRating   ApartmentRanking = "highest_rated"
	RankByBookings ApartmentRanking = "most_booked"
)

type RankedApartment struct {
	ApartmentID int32   `json:"apartment_id"`
	UnitNumber  string  `json:"unit_number"`
	Score       float64 `json:"score"`
}

type TopApartments struct {
	MostViewed   []RankedApartment `json:"most_viewed"`
	HighestRated []RankedApartment `json:"highest_rated"`
	MostBooked   []RankedApartment `json:"most_booked"`
}
