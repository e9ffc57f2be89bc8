package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
)

var bookingRowColumns = []string{"id", "apartment_id", "tenant_id", "booking_code", "start_date", "end_date", "total_months",
	"monthly_rent", "deposit_paid", "utility_deposit", "admin_fee", "total_amount", "status", "approved_by",
	"approved_at", "rejection_reason", "contract_start_date", "contract_end_date", "notes", "created_at", "updated_at"}

func addBookingRow(rows *sqlmock.Rows, id int32, status string, start, end time.Time) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, 10, 20, "BK20240101000001", start, end, 2,
		"3500000", "3500000", "700000", "500000", "11700000", status, nil,
		nil, "", nil, nil, "", now, now)
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	newBooking := func() *domain.Booking {
		return &domain.Booking{
			ApartmentID:    10,
			TenantID:       20,
			BookingCode:    "BK20240101123456",
			StartDate:      start,
			EndDate:        end,
			TotalMonths:    2,
			MonthlyRent:    decimal.RequireFromString("3500000"),
			DepositPaid:    decimal.RequireFromString("3500000"),
			UtilityDeposit: decimal.RequireFromString("700000"),
			AdminFee:       decimal.RequireFromString("500000"),
			TotalAmount:    decimal.RequireFromString("11700000"),
			Status:         domain.BookingStatusPending,
		}
	}

	t.Run("Success", func(t *testing.T) {
		b := newBooking()
		mock.ExpectQuery("INSERT INTO bookings").
			WithArgs(b.ApartmentID, b.TenantID, b.BookingCode, b.StartDate, b.EndDate, b.TotalMonths,
				b.MonthlyRent, b.DepositPaid, b.UtilityDeposit, b.AdminFee, b.TotalAmount, b.Status, b.Notes,
				sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		err := repo.Create(ctx, b)
		assert.NoError(t, err)
		assert.Equal(t, int32(7), b.ID)
		assert.False(t, b.CreatedAt.IsZero())
	})

	t.Run("Overlap rejected by the database", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO bookings").
			WillReturnError(&pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"})

		err := repo.Create(ctx, newBooking())
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		rows := addBookingRow(sqlmock.NewRows(bookingRowColumns), 1, "confirmed", start, end)
		mock.ExpectQuery(`SELECT (.+) FROM bookings b WHERE b.id = \$1`).
			WithArgs(int32(1)).
			WillReturnRows(rows)

		b, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		assert.True(t, b.TotalAmount.Equal(decimal.RequireFromString("11700000")))
		assert.Nil(t, b.ApprovedBy)
		assert.Nil(t, b.ContractStartDate)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings b WHERE b.id = \$1`).
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows(bookingRowColumns))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestBookingRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	approver := int32(5)
	approvedAt := time.Now().UTC()
	b := &domain.Booking{ID: 3, Status: domain.BookingStatusConfirmed, ApprovedBy: &approver, ApprovedAt: &approvedAt}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs(b.StartDate, b.EndDate, b.TotalMonths, b.TotalAmount, b.Status, approver, approvedAt, "", nil, nil, "", sqlmock.AnyArg(), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Update(ctx, b))
	})

	t.Run("Missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Update(ctx, b), repository.ErrNotFound)
	})
}

func TestBookingRepository_ListBlocking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(bookingRowColumns)
	addBookingRow(rows, 1, "confirmed", start, start.AddDate(0, 2, 0))
	addBookingRow(rows, 2, "active", start.AddDate(0, 3, 0), start.AddDate(0, 6, 0))

	mock.ExpectQuery(`FROM bookings b\s+WHERE b.apartment_id = \$1 AND b.status IN \('confirmed', 'active'\)`).
		WithArgs(int32(10)).
		WillReturnRows(rows)

	bookings, err := repo.ListBlocking(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, domain.BookingStatusActive, bookings[1].Status)
}

func TestBookingRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db)

	owner := int32(4)
	filter := domain.BookingFilter{OwnerID: &owner, Status: domain.BookingStatusPending, Page: 2, PageSize: 5}

	mock.ExpectQuery(`SELECT count\(\*\) FROM bookings b JOIN apartments a ON a.id = b.apartment_id WHERE a.owner_id = \$1 AND b.status = \$2`).
		WithArgs(owner, domain.BookingStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(`ORDER BY b.created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(owner, domain.BookingStatusPending, int32(5), int32(5)).
		WillReturnRows(addBookingRow(sqlmock.NewRows(bookingRowColumns), 6, "pending", time.Now(), time.Now().AddDate(0, 3, 0)))

	bookings, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int32(6), total)
	assert.Len(t, bookings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
