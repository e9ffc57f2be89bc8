package service

import (
	"context"

	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/policy"
	"vidaview-backend/internal/repository"
)

const maxRankingLimit = 50

type reportService struct {
	aptRepo     repository.ApartmentRepository
	paymentRepo repository.PaymentRepository
}

func NewReportService(aptRepo repository.ApartmentRepository, paymentRepo repository.PaymentRepository) ReportService {
	return &reportService{aptRepo: aptRepo, paymentRepo: paymentRepo}
}

// reportScope returns nil for admins and the caller's id for owners.
func reportScope(actor domain.Actor) (*int32, error) {
	if !policy.Can(actor.Role, policy.ActionViewReports) {
		return nil, policy.Authorize(actor, policy.ActionViewReports, policy.Resource{})
	}
	if actor.IsAdmin() {
		return nil, nil
	}
	return &actor.UserID, nil
}

// Occupancy summarises all apartments for admins and only their own for owners.
func (s *reportService) Occupancy(ctx context.Context, actor domain.Actor) (*domain.OccupancySummary, error) {
	ownerID, err := reportScope(actor)
	if err != nil {
		return nil, err
	}
	return s.aptRepo.OccupancySummary(ctx, ownerID)
}

// Revenue totals completed payments per month of year, scoped like Occupancy.
// Every month from 1 to 12 is present in the result.
func (s *reportService) Revenue(ctx context.Context, actor domain.Actor, year int) (*domain.RevenueReport, error) {
	ownerID, err := reportScope(actor)
	if err != nil {
		return nil, err
	}
	if year < 2000 || year > 2100 {
		return nil, domain.Validation("year %d is out of range", year)
	}
	rows, err := s.paymentRepo.RevenueByMonth(ctx, year, ownerID)
	if err != nil {
		return nil, err
	}

	report := &domain.RevenueReport{Year: year, Total: decimal.Zero, Monthly: make([]domain.MonthlyRevenue, 12)}
	for i := range report.Monthly {
		report.Monthly[i] = domain.MonthlyRevenue{Month: i + 1, Amount: decimal.Zero}
	}
	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		report.Monthly[row.Month-1] = row
		report.Total = report.Total.Add(row.Amount)
	}
	return report, nil
}

func (s *reportService) TopApartments(ctx context.Context, actor domain.Actor, limit int32) (*domain.TopApartments, error) {
	if err := policy.Authorize(actor, policy.ActionViewRankings, policy.Resource{}); err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxRankingLimit {
		limit = 5
	}
	top := &domain.TopApartments{}
	for by, dst := range map[domain.ApartmentRanking]*[]domain.RankedApartment{
		domain.RankByViews:    &top.MostViewed,
		domain.RankByRating:   &top.HighestRated,
		domain.RankByBookings: &top.MostBooked,
	} {
		ranked, err := s.aptRepo.Top(ctx, by, limit)
		if err != nil {
			return nil, err
		}
		*dst = ranked
	}
	return top, nil
}
