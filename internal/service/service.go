package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
)

type BookingService interface {
	CreateBooking(ctx context.Context, actor domain.Actor, in CreateBookingInput) (*domain.Booking, *domain.Payment, error)
	GetBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error)
	ListBookings(ctx context.Context, actor domain.Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	ApproveBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error)
	RejectBooking(ctx context.Context, actor domain.Actor, id int32, reason string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, actor domain.Actor, id int32, in UpdateBookingInput) (*domain.Booking, error)
	CheckAvailability(ctx context.Context, apartmentID int32, start, end time.Time) (bool, error)
	CompleteEndedBookings(ctx context.Context, asOf time.Time) (int, error)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, actor domain.Actor, in CreatePaymentInput) (*domain.Payment, error)
	GetPayment(ctx context.Context, actor domain.Actor, id int32) (*domain.Payment, error)
	ListPayments(ctx context.Context, actor domain.Actor, status domain.PaymentStatus, page, pageSize int32) ([]domain.Payment, int32, error)
	ListPaymentsForBooking(ctx context.Context, actor domain.Actor, bookingID int32) ([]domain.Payment, error)
	SubmitPaymentProof(ctx context.Context, actor domain.Actor, id int32, in PaymentProofInput) (*domain.Payment, error)
	VerifyPayment(ctx context.Context, actor domain.Actor, id int32, approved bool, notes string) (*domain.Payment, error)
	SendPaymentReminders(ctx context.Context, asOf time.Time) (int, error)
}

type ApartmentService interface {
	CreateApartment(ctx context.Context, actor domain.Actor, apt *domain.Apartment) error
	UpdateApartment(ctx context.Context, actor domain.Actor, id int32, in ApartmentUpdate) (*domain.Apartment, error)
	GetApartment(ctx context.Context, actor domain.Actor, id int32) (*domain.Apartment, error)
	ListApartments(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, int32, error)
	ListMyApartments(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Apartment, int32, error)
	ArchiveApartment(ctx context.Context, actor domain.Actor, id int32) error
	DeleteApartment(ctx context.Context, actor domain.Actor, id int32) error
	ToggleFavorite(ctx context.Context, actor domain.Actor, apartmentID int32) (bool, error)
	ListFavorites(ctx context.Context, actor domain.Actor) ([]domain.Apartment, error)
}

type ReviewService interface {
	CreateReview(ctx context.Context, actor domain.Actor, bookingID, rating int32, text string) (*domain.Review, error)
	ApproveReview(ctx context.Context, actor domain.Actor, id int32) (*domain.Review, error)
	ListApartmentReviews(ctx context.Context, apartmentID int32) ([]domain.Review, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error)
	CountUnread(ctx context.Context, userID int32) (int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) (int64, error)
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	RefreshToken(ctx context.Context, refresh string) (string, string, error)
	Me(ctx context.Context, userID int32) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int32, current, next string) error
}

type UserService interface {
	ListUsers(ctx context.Context, actor domain.Actor, filter domain.UserFilter) ([]domain.User, int32, error)
	GetUser(ctx context.Context, actor domain.Actor, id int32) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, actor domain.Actor, id int32, status domain.UserStatus) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, id int32) error
	GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, in ProfileUpdate) (*domain.User, error)
}

type FacilityService interface {
	ListFacilities(ctx context.Context, filter domain.FacilityFilter) ([]domain.Facility, error)
	CreateFacility(ctx context.Context, actor domain.Actor, f *domain.Facility) error
	UpdateFacility(ctx context.Context, actor domain.Actor, id int32, in FacilityUpdate) (*domain.Facility, error)
	DeleteFacility(ctx context.Context, actor domain.Actor, id int32) error
	ListApartmentFacilities(ctx context.Context, apartmentID int32) ([]domain.Facility, error)
	SetApartmentFacilities(ctx context.Context, actor domain.Actor, apartmentID int32, facilityIDs []int32) ([]domain.Facility, error)
}

type PromotionService interface {
	ListPromotions(ctx context.Context, actor domain.Actor, typ domain.PromotionType) ([]domain.Promotion, error)
	GetPromotion(ctx context.Context, actor domain.Actor, id int32) (*domain.Promotion, error)
	CreatePromotion(ctx context.Context, actor domain.Actor, p *domain.Promotion) error
	UpdatePromotion(ctx context.Context, actor domain.Actor, id int32, in PromotionUpdate) (*domain.Promotion, error)
	DeletePromotion(ctx context.Context, actor domain.Actor, id int32) error
	ValidateCode(ctx context.Context, code string) (*domain.Promotion, error)
}

type ReportService interface {
	Occupancy(ctx context.Context, actor domain.Actor) (*domain.OccupancySummary, error)
	Revenue(ctx context.Context, actor domain.Actor, year int) (*domain.RevenueReport, error)
	TopApartments(ctx context.Context, actor domain.Actor, limit int32) (*domain.TopApartments, error)
}

// Dispatcher delivers persisted notifications to users outside the transaction
// that created them. Implementations must not block.
type Dispatcher interface {
	Dispatch(ctx context.Context, notes ...domain.Notification)
}

// AuditRecorder stores activity log entries on a best-effort basis.
type AuditRecorder interface {
	Record(entry domain.ActivityLog)
}

// BookingSettings carries the tunables used when pricing and creating bookings.
type BookingSettings struct {
	UtilityDepositRate decimal.Decimal
	DefaultAdminFee    decimal.Decimal
	DepositDueDays     int
	CodeAttempts       int
}

func DefaultBookingSettings() BookingSettings {
	return BookingSettings{
		UtilityDepositRate: decimal.RequireFromString("0.2"),
		DefaultAdminFee:    decimal.NewFromInt(500000),
		DepositDueDays:     3,
		CodeAttempts:       5,
	}
}

// Deps groups the collaborators shared by the transactional services.
type Deps struct {
	UoW      repository.UnitOfWork
	Repos    repository.Repositories
	Notifier Dispatcher
	Audit    AuditRecorder
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) dispatch(ctx context.Context, notes []domain.Notification) {
	if d.Notifier != nil && len(notes) > 0 {
		d.Notifier.Dispatch(ctx, notes...)
	}
}

func (d Deps) record(actor domain.Actor, action, entityType string, entityID int32, oldData, newData map[string]any) {
	if d.Audit == nil {
		return
	}
	d.Audit.Record(domain.ActivityLog{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		OldData:    oldData,
		NewData:    newData,
		CreatedAt:  time.Now().UTC(),
	})
}

// outbox collects notifications written inside a transaction so they can be
// handed to the Dispatcher once the transaction has committed.
type outbox struct {
	repo  repository.NotificationRepository
	notes []domain.Notification
}

func newOutbox(repo repository.NotificationRepository) *outbox {
	return &outbox{repo: repo}
}

func (o *outbox) add(ctx context.Context, userID int32, typ domain.NotificationType, relatedID int32, title, message string) error {
	n := domain.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		RelatedID: &relatedID,
	}
	if err := o.repo.Create(ctx, &n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	o.notes = append(o.notes, n)
	return nil
}

// lookupError converts a repository miss into a NotFound error for entity.
func lookupError(entity string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFound(entity)
	}
	return fmt.Errorf("load %s: %w", entity, err)
}

// uniqueCode draws codes from gen until exists reports an unused one.
func uniqueCode(ctx context.Context, attempts int, gen func() string, exists func(context.Context, string) (bool, error)) (string, error) {
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		code := gen()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", domain.Conflict("could not allocate a unique code, please retry")
}

// NormalizePage clamps paging input to page >= 1 and 1 <= pageSize <= 100,
// defaulting the size to 20.
func NormalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
