package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/service"
)

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}
func (m *MockAuthService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	args := m.Called(ctx, refresh)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockAuthService) Me(ctx context.Context, userID int32) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID int32, current, next string) error {
	args := m.Called(ctx, userID, current, next)
	return args.Error(0)
}

// MockApartmentService
type MockApartmentService struct {
	mock.Mock
}

func (m *MockApartmentService) CreateApartment(ctx context.Context, actor domain.Actor, apt *domain.Apartment) error {
	args := m.Called(ctx, actor, apt)
	return args.Error(0)
}
func (m *MockApartmentService) UpdateApartment(ctx context.Context, actor domain.Actor, id int32, in service.ApartmentUpdate) (*domain.Apartment, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartment), args.Error(1)
}
func (m *MockApartmentService) GetApartment(ctx context.Context, actor domain.Actor, id int32) (*domain.Apartment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartment), args.Error(1)
}
func (m *MockApartmentService) ListApartments(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Apartment), args.Get(1).(int32), args.Error(2)
}
func (m *MockApartmentService) ListMyApartments(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Apartment, int32, error) {
	args := m.Called(ctx, actor, page, pageSize)
	return args.Get(0).([]domain.Apartment), args.Get(1).(int32), args.Error(2)
}
func (m *MockApartmentService) ArchiveApartment(ctx context.Context, actor domain.Actor, id int32) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockApartmentService) DeleteApartment(ctx context.Context, actor domain.Actor, id int32) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockApartmentService) ToggleFavorite(ctx context.Context, actor domain.Actor, apartmentID int32) (bool, error) {
	args := m.Called(ctx, actor, apartmentID)
	return args.Bool(0), args.Error(1)
}
func (m *MockApartmentService) ListFavorites(ctx context.Context, actor domain.Actor) ([]domain.Apartment, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Apartment), args.Error(1)
}

// MockBookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, actor domain.Actor, in service.CreateBookingInput) (*domain.Booking, *domain.Payment, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).(*domain.Payment), args.Error(2)
}
func (m *MockBookingService) GetBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actor, id))
}
func (m *MockBookingService) ListBookings(ctx context.Context, actor domain.Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, actor, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingService) ApproveBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actor, id))
}
func (m *MockBookingService) RejectBooking(ctx context.Context, actor domain.Actor, id int32, reason string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actor, id, reason))
}
func (m *MockBookingService) CancelBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actor, id))
}
func (m *MockBookingService) UpdateBooking(ctx context.Context, actor domain.Actor, id int32, in service.UpdateBookingInput) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actor, id, in))
}
func (m *MockBookingService) CheckAvailability(ctx context.Context, apartmentID int32, start, end time.Time) (bool, error) {
	args := m.Called(ctx, apartmentID, start, end)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingService) CompleteEndedBookings(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingService) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// MockPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, actor domain.Actor, in service.CreatePaymentInput) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, actor, in))
}
func (m *MockPaymentService) GetPayment(ctx context.Context, actor domain.Actor, id int32) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, actor, id))
}
func (m *MockPaymentService) ListPayments(ctx context.Context, actor domain.Actor, status domain.PaymentStatus, page, pageSize int32) ([]domain.Payment, int32, error) {
	args := m.Called(ctx, actor, status, page, pageSize)
	return args.Get(0).([]domain.Payment), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentService) ListPaymentsForBooking(ctx context.Context, actor domain.Actor, bookingID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, actor, bookingID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentService) SubmitPaymentProof(ctx context.Context, actor domain.Actor, id int32, in service.PaymentProofInput) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, actor, id, in))
}
func (m *MockPaymentService) VerifyPayment(ctx context.Context, actor domain.Actor, id int32, approved bool, notes string) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, actor, id, approved, notes))
}
func (m *MockPaymentService) SendPaymentReminders(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

func (m *MockPaymentService) payment(args mock.Arguments) (*domain.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

// MockReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, actor domain.Actor, bookingID, rating int32, text string) (*domain.Review, error) {
	args := m.Called(ctx, actor, bookingID, rating, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *MockReviewService) ApproveReview(ctx context.Context, actor domain.Actor, id int32) (*domain.Review, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *MockReviewService) ListApartmentReviews(ctx context.Context, apartmentID int32) ([]domain.Review, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, unreadOnly, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationService) CountUnread(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}
func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID int32) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Occupancy(ctx context.Context, actor domain.Actor) (*domain.OccupancySummary, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OccupancySummary), args.Error(1)
}
func (m *MockReportService) Revenue(ctx context.Context, actor domain.Actor, year int) (*domain.RevenueReport, error) {
	args := m.Called(ctx, actor, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueReport), args.Error(1)
}
func (m *MockReportService) TopApartments(ctx context.Context, actor domain.Actor, limit int32) (*domain.TopApartments, error) {
	args := m.Called(ctx, actor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopApartments), args.Error(1)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, actor domain.Actor, filter domain.UserFilter) ([]domain.User, int32, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).([]domain.User), args.Get(1).(int32), args.Error(2)
}
func (m *MockUserService) GetUser(ctx context.Context, actor domain.Actor, id int32) (*domain.User, error) {
	return m.user(m.Called(ctx, actor, id))
}
func (m *MockUserService) UpdateUserStatus(ctx context.Context, actor domain.Actor, id int32, status domain.UserStatus) (*domain.User, error) {
	return m.user(m.Called(ctx, actor, id, status))
}
func (m *MockUserService) DeleteUser(ctx context.Context, actor domain.Actor, id int32) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockUserService) GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return m.user(m.Called(ctx, actor))
}
func (m *MockUserService) UpdateProfile(ctx context.Context, actor domain.Actor, in service.ProfileUpdate) (*domain.User, error) {
	return m.user(m.Called(ctx, actor, in))
}
func (m *MockUserService) user(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockFacilityService
type MockFacilityService struct {
	mock.Mock
}

func (m *MockFacilityService) ListFacilities(ctx context.Context, filter domain.FacilityFilter) ([]domain.Facility, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Facility), args.Error(1)
}
func (m *MockFacilityService) CreateFacility(ctx context.Context, actor domain.Actor, f *domain.Facility) error {
	args := m.Called(ctx, actor, f)
	return args.Error(0)
}
func (m *MockFacilityService) UpdateFacility(ctx context.Context, actor domain.Actor, id int32, in service.FacilityUpdate) (*domain.Facility, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Facility), args.Error(1)
}
func (m *MockFacilityService) DeleteFacility(ctx context.Context, actor domain.Actor, id int32) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockFacilityService) ListApartmentFacilities(ctx context.Context, apartmentID int32) ([]domain.Facility, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).([]domain.Facility), args.Error(1)
}
func (m *MockFacilityService) SetApartmentFacilities(ctx context.Context, actor domain.Actor, apartmentID int32, facilityIDs []int32) ([]domain.Facility, error) {
	args := m.Called(ctx, actor, apartmentID, facilityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Facility), args.Error(1)
}

// MockPromotionService
type MockPromotionService struct {
	mock.Mock
}

func (m *MockPromotionService) ListPromotions(ctx context.Context, actor domain.Actor, typ domain.PromotionType) ([]domain.Promotion, error) {
	args := m.Called(ctx, actor, typ)
	return args.Get(0).([]domain.Promotion), args.Error(1)
}
func (m *MockPromotionService) GetPromotion(ctx context.Context, actor domain.Actor, id int32) (*domain.Promotion, error) {
	return m.promotion(m.Called(ctx, actor, id))
}
func (m *MockPromotionService) CreatePromotion(ctx context.Context, actor domain.Actor, p *domain.Promotion) error {
	args := m.Called(ctx, actor, p)
	return args.Error(0)
}
func (m *MockPromotionService) UpdatePromotion(ctx context.Context, actor domain.Actor, id int32, in service.PromotionUpdate) (*domain.Promotion, error) {
	return m.promotion(m.Called(ctx, actor, id, in))
}
func (m *MockPromotionService) DeletePromotion(ctx context.Context, actor domain.Actor, id int32) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
func (m *MockPromotionService) ValidateCode(ctx context.Context, code string) (*domain.Promotion, error) {
	return m.promotion(m.Called(ctx, code))
}
func (m *MockPromotionService) promotion(args mock.Arguments) (*domain.Promotion, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}
