package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/repository"
)

type bookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `b.id, b.apartment_id, b.tenant_id, b.booking_code, b.start_date, b.end_date, b.total_months,
	b.monthly_rent, b.deposit_paid, b.utility_deposit, b.admin_fee, b.total_amount, b.status, b.approved_by,
	b.approved_at, COALESCE(b.rejection_reason, ''), b.contract_start_date, b.contract_end_date,
	COALESCE(b.notes, ''), b.created_at, b.updated_at`

func scanBooking(row rowScanner, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.ApartmentID, &b.TenantID, &b.BookingCode, &b.StartDate, &b.EndDate, &b.TotalMonths,
		&b.MonthlyRent, &b.DepositPaid, &b.UtilityDeposit, &b.AdminFee, &b.TotalAmount, &b.Status, &b.ApprovedBy,
		&b.ApprovedAt, &b.RejectionReason, &b.ContractStartDate, &b.ContractEndDate,
		&b.Notes, &b.CreatedAt, &b.UpdatedAt)
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "apartmentID", b.ApartmentID, "tenantID", b.TenantID)

	query := `INSERT INTO bookings (apartment_id, tenant_id, booking_code, start_date, end_date, total_months,
	          monthly_rent, deposit_paid, utility_deposit, admin_fee, total_amount, status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	logger.DatabaseCall("INSERT", "bookings", "code", b.BookingCode)
	err := r.db.QueryRowContext(ctx, query, b.ApartmentID, b.TenantID, b.BookingCode, b.StartDate, b.EndDate, b.TotalMonths,
		b.MonthlyRent, b.DepositPaid, b.UtilityDeposit, b.AdminFee, b.TotalAmount, b.Status, b.Notes,
		b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	logger.DatabaseResult("INSERT", 1, err, "bookingID", b.ID)
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("bookingRepository.Create", err, "apartmentID", b.ApartmentID)
		return err
	}

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	b := &domain.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`
	if err := scanBooking(r.db.QueryRowContext(ctx, query, id), b); err != nil {
		return nil, translateError(err)
	}
	return b, nil
}

func (r *bookingRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Booking, error) {
	b := &domain.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "bookings", "bookingID", id)
	if err := scanBooking(r.db.QueryRowContext(ctx, query, id), b); err != nil {
		return nil, translateError(err)
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET start_date=$1, end_date=$2, total_months=$3, total_amount=$4, status=$5, approved_by=$6,
	          approved_at=$7, rejection_reason=$8, contract_start_date=$9, contract_end_date=$10, notes=$11, updated_at=$12
	          WHERE id=$13`
	b.UpdatedAt = time.Now().UTC()
	logger.DatabaseCall("UPDATE", "bookings", "bookingID", b.ID, "status", b.Status)
	res, err := r.db.ExecContext(ctx, query, b.StartDate, b.EndDate, b.TotalMonths, b.TotalAmount, b.Status, b.ApprovedBy, b.ApprovedAt,
		b.RejectionReason, b.ContractStartDate, b.ContractEndDate, b.Notes, b.UpdatedAt, b.ID)
	return checkAffected(res, err)
}

func (r *bookingRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *bookingRepository) ListBlocking(ctx context.Context, apartmentID int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
	          WHERE b.apartment_id = $1 AND b.status IN ('confirmed', 'active') ORDER BY b.start_date`
	return r.list(ctx, query, apartmentID)
}

func (r *bookingRepository) ListEndedActive(ctx context.Context, before time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
	          WHERE b.status = 'active' AND b.end_date < $1 ORDER BY b.end_date`
	return r.list(ctx, query, before)
}

func (r *bookingRepository) CountActiveByApartment(ctx context.Context, apartmentID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM bookings WHERE apartment_id = $1 AND status = 'active'`, apartmentID).Scan(&count)
	return count, err
}

func (r *bookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	from := ` FROM bookings b JOIN apartments a ON a.id = b.apartment_id`
	var conds []string
	var args []any
	if f.TenantID != nil {
		args = append(args, *f.TenantID)
		conds = append(conds, fmt.Sprintf("b.tenant_id = $%d", len(args)))
	}
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		conds = append(conds, fmt.Sprintf("a.owner_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if len(conds) > 0 {
		from += " WHERE " + strings.Join(conds, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+from, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pageOffset(f.Page, f.PageSize)
	query := `SELECT ` + bookingColumns + from +
		fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	bookings, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
