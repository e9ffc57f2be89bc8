package repository

import (
	"context"
	"errors"
	"time"

	"vidaview-backend/internal/domain"
)

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListIDsByRole(ctx context.Context, role domain.Role) ([]int32, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int32, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int32, hash string) error
	// HasBookings reports whether the user is the tenant on any booking.
	HasBookings(ctx context.Context, id int32) (bool, error)
	Delete(ctx context.Context, id int32) error
}

type ApartmentRepository interface {
	Create(ctx context.Context, apt *domain.Apartment) error
	GetByID(ctx context.Context, id int32) (*domain.Apartment, error)
	// GetByIDForUpdate locks the apartment row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Apartment, error)
	Update(ctx context.Context, apt *domain.Apartment) error
	UpdateAvailability(ctx context.Context, id int32, status domain.AvailabilityStatus) error
	Archive(ctx context.Context, id int32) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, int32, error)
	HasBookingsInStatus(ctx context.Context, id int32, statuses []domain.BookingStatus) (bool, error)
	HasAnyBooking(ctx context.Context, id int32) (bool, error)
	HasTenantBooking(ctx context.Context, id, tenantID int32) (bool, error)
	UpdateRating(ctx context.Context, id int32) error
	IncrementViews(ctx context.Context, id int32) error
	OccupancySummary(ctx context.Context, ownerID *int32) (*domain.OccupancySummary, error)
	Top(ctx context.Context, by domain.ApartmentRanking, limit int32) ([]domain.RankedApartment, error)

	IsFavorite(ctx context.Context, userID, apartmentID int32) (bool, error)
	AddFavorite(ctx context.Context, userID, apartmentID int32) error
	RemoveFavorite(ctx context.Context, userID, apartmentID int32) error
	ListFavorites(ctx context.Context, userID int32) ([]domain.Apartment, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// ListBlocking returns confirmed and active bookings of an apartment.
	ListBlocking(ctx context.Context, apartmentID int32) ([]domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	ListEndedActive(ctx context.Context, before time.Time) ([]domain.Booking, error)
	CountActiveByApartment(ctx context.Context, apartmentID int32) (int32, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int32) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ListByBooking(ctx context.Context, bookingID int32) ([]domain.Payment, error)
	List(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int32, error)
	ListDueReminders(ctx context.Context, dueBefore time.Time) ([]domain.PaymentReminder, error)
	// RevenueByMonth returns only the months of year that have completed payments.
	RevenueByMonth(ctx context.Context, year int, ownerID *int32) ([]domain.MonthlyRevenue, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	GetByID(ctx context.Context, id int32) (*domain.Review, error)
	ExistsForBooking(ctx context.Context, bookingID int32) (bool, error)
	Approve(ctx context.Context, id, adminID int32, at time.Time) error
	ListApprovedByApartment(ctx context.Context, apartmentID int32) ([]domain.Review, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, unreadOnly bool, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) (int64, error)
	CountUnread(ctx context.Context, userID int32) (int32, error)
}

type FacilityRepository interface {
	Create(ctx context.Context, f *domain.Facility) error
	GetByID(ctx context.Context, id int32) (*domain.Facility, error)
	Update(ctx context.Context, f *domain.Facility) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.FacilityFilter) ([]domain.Facility, error)
	ListByApartment(ctx context.Context, apartmentID int32) ([]domain.Facility, error)
	// SetForApartment replaces the apartment's facility set.
	SetForApartment(ctx context.Context, apartmentID int32, facilityIDs []int32) error
}

type PromotionRepository interface {
	Create(ctx context.Context, p *domain.Promotion) error
	GetByID(ctx context.Context, id int32) (*domain.Promotion, error)
	GetByCode(ctx context.Context, code string) (*domain.Promotion, error)
	Update(ctx context.Context, p *domain.Promotion) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error)
}

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
}

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	Users         UserRepository
	Apartments    ApartmentRepository
	Bookings      BookingRepository
	Payments      PaymentRepository
	Reviews       ReviewRepository
	Notifications NotificationRepository
	ActivityLogs  ActivityLogRepository
	Facilities    FacilityRepository
	Promotions    PromotionRepository
}

// UnitOfWork runs fn inside one database transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
