package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
	"vidaview-backend/internal/service"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ListIDsByRole(ctx context.Context, role domain.Role) ([]int32, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}
func (m *MockUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.User), args.Get(1).(int32), args.Error(2)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int32, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}
func (m *MockUserRepo) HasBookings(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockApartmentRepo
type MockApartmentRepo struct {
	mock.Mock
}

func (m *MockApartmentRepo) Create(ctx context.Context, apt *domain.Apartment) error {
	args := m.Called(ctx, apt)
	return args.Error(0)
}
func (m *MockApartmentRepo) GetByID(ctx context.Context, id int32) (*domain.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartment), args.Error(1)
}
func (m *MockApartmentRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartment), args.Error(1)
}
func (m *MockApartmentRepo) Update(ctx context.Context, apt *domain.Apartment) error {
	args := m.Called(ctx, apt)
	return args.Error(0)
}
func (m *MockApartmentRepo) UpdateAvailability(ctx context.Context, id int32, status domain.AvailabilityStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockApartmentRepo) Archive(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockApartmentRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockApartmentRepo) List(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Apartment), args.Get(1).(int32), args.Error(2)
}
func (m *MockApartmentRepo) HasBookingsInStatus(ctx context.Context, id int32, statuses []domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, statuses)
	return args.Bool(0), args.Error(1)
}
func (m *MockApartmentRepo) HasAnyBooking(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockApartmentRepo) HasTenantBooking(ctx context.Context, id, tenantID int32) (bool, error) {
	args := m.Called(ctx, id, tenantID)
	return args.Bool(0), args.Error(1)
}
func (m *MockApartmentRepo) UpdateRating(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockApartmentRepo) IncrementViews(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockApartmentRepo) OccupancySummary(ctx context.Context, ownerID *int32) (*domain.OccupancySummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OccupancySummary), args.Error(1)
}
func (m *MockApartmentRepo) Top(ctx context.Context, by domain.ApartmentRanking, limit int32) ([]domain.RankedApartment, error) {
	args := m.Called(ctx, by, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RankedApartment), args.Error(1)
}
func (m *MockApartmentRepo) IsFavorite(ctx context.Context, userID, apartmentID int32) (bool, error) {
	args := m.Called(ctx, userID, apartmentID)
	return args.Bool(0), args.Error(1)
}
func (m *MockApartmentRepo) AddFavorite(ctx context.Context, userID, apartmentID int32) error {
	args := m.Called(ctx, userID, apartmentID)
	return args.Error(0)
}
func (m *MockApartmentRepo) RemoveFavorite(ctx context.Context, userID, apartmentID int32) error {
	args := m.Called(ctx, userID, apartmentID)
	return args.Error(0)
}
func (m *MockApartmentRepo) ListFavorites(ctx context.Context, userID int32) ([]domain.Apartment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Apartment), args.Error(1)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) ListBlocking(ctx context.Context, apartmentID int32) ([]domain.Booking, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListEndedActive(ctx context.Context, before time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) CountActiveByApartment(ctx context.Context, apartmentID int32) (int32, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).(int32), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentRepo) ListByBooking(ctx context.Context, bookingID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) List(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Payment), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentRepo) ListDueReminders(ctx context.Context, dueBefore time.Time) ([]domain.PaymentReminder, error) {
	args := m.Called(ctx, dueBefore)
	return args.Get(0).([]domain.PaymentReminder), args.Error(1)
}

func (m *MockPaymentRepo) RevenueByMonth(ctx context.Context, year int, ownerID *int32) ([]domain.MonthlyRevenue, error) {
	args := m.Called(ctx, year, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyRevenue), args.Error(1)
}

// MockReviewRepo
type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReviewRepo) GetByID(ctx context.Context, id int32) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *MockReviewRepo) ExistsForBooking(ctx context.Context, bookingID int32) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}
func (m *MockReviewRepo) Approve(ctx context.Context, id, adminID int32, at time.Time) error {
	args := m.Called(ctx, id, adminID, at)
	return args.Error(0)
}
func (m *MockReviewRepo) ListApprovedByApartment(ctx context.Context, apartmentID int32) ([]domain.Review, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, unreadOnly bool, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) MarkAllAsRead(ctx context.Context, userID int32) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}

// MockFacilityRepo
type MockFacilityRepo struct {
	mock.Mock
}

func (m *MockFacilityRepo) Create(ctx context.Context, f *domain.Facility) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
func (m *MockFacilityRepo) GetByID(ctx context.Context, id int32) (*domain.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Facility), args.Error(1)
}
func (m *MockFacilityRepo) Update(ctx context.Context, f *domain.Facility) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
func (m *MockFacilityRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockFacilityRepo) List(ctx context.Context, filter domain.FacilityFilter) ([]domain.Facility, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Facility), args.Error(1)
}
func (m *MockFacilityRepo) ListByApartment(ctx context.Context, apartmentID int32) ([]domain.Facility, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).([]domain.Facility), args.Error(1)
}
func (m *MockFacilityRepo) SetForApartment(ctx context.Context, apartmentID int32, facilityIDs []int32) error {
	args := m.Called(ctx, apartmentID, facilityIDs)
	return args.Error(0)
}

// MockPromotionRepo
type MockPromotionRepo struct {
	mock.Mock
}

func (m *MockPromotionRepo) Create(ctx context.Context, p *domain.Promotion) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPromotionRepo) GetByID(ctx context.Context, id int32) (*domain.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}
func (m *MockPromotionRepo) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}
func (m *MockPromotionRepo) Update(ctx context.Context, p *domain.Promotion) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPromotionRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPromotionRepo) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Promotion), args.Error(1)
}

// fakeUoW runs the callback against the mocked repositories.
type fakeUoW struct {
	repos repository.Repositories
	calls int
}

func (u *fakeUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	u.calls++
	return fn(ctx, u.repos)
}

type recordingDispatcher struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (d *recordingDispatcher) Dispatch(_ context.Context, notes ...domain.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = append(d.notes, notes...)
}

func (d *recordingDispatcher) recipients() []int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]int32, 0, len(d.notes))
	for _, n := range d.notes {
		ids = append(ids, n.UserID)
	}
	return ids
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []domain.ActivityLog
}

func (a *recordingAudit) Record(e domain.ActivityLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	users    *MockUserRepo
	apts     *MockApartmentRepo
	bookings *MockBookingRepo
	payments *MockPaymentRepo
	reviews  *MockReviewRepo
	notes    *MockNotificationRepo
	fac      *MockFacilityRepo
	promos   *MockPromotionRepo
	uow      *fakeUoW
	notifier *recordingDispatcher
	audit    *recordingAudit
	deps     service.Deps
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		users:    new(MockUserRepo),
		apts:     new(MockApartmentRepo),
		bookings: new(MockBookingRepo),
		payments: new(MockPaymentRepo),
		reviews:  new(MockReviewRepo),
		notes:    new(MockNotificationRepo),
		fac:      new(MockFacilityRepo),
		promos:   new(MockPromotionRepo),
		notifier: &recordingDispatcher{},
		audit:    &recordingAudit{},
	}
	repos := repository.Repositories{
		Users:         f.users,
		Apartments:    f.apts,
		Bookings:      f.bookings,
		Payments:      f.payments,
		Reviews:       f.reviews,
		Notifications: f.notes,
		Facilities:    f.fac,
		Promotions:    f.promos,
	}
	f.uow = &fakeUoW{repos: repos}
	f.deps = service.Deps{
		UoW:      f.uow,
		Repos:    repos,
		Notifier: f.notifier,
		Audit:    f.audit,
		Now:      func() time.Time { return now },
	}
	return f
}

// acceptNotifications lets every notification insert succeed.
func (f *fixture) acceptNotifications() {
	f.notes.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
