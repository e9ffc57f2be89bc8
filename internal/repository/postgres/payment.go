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

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `p.id, p.booking_id, p.payment_code, p.payment_type, p.amount, p.payment_status,
	COALESCE(p.payment_method, ''), COALESCE(p.transaction_id, ''), p.due_date, p.payment_date, p.verified_by,
	p.verified_at, COALESCE(p.notes, ''), p.created_at, p.updated_at`

func scanPayment(row rowScanner, p *domain.Payment) error {
	return row.Scan(&p.ID, &p.BookingID, &p.PaymentCode, &p.PaymentType, &p.Amount, &p.PaymentStatus,
		&p.PaymentMethod, &p.TransactionID, &p.DueDate, &p.PaymentDate, &p.VerifiedBy,
		&p.VerifiedAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (booking_id, payment_code, payment_type, amount, payment_status, payment_method,
	          due_date, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	logger.DatabaseCall("INSERT", "payments", "bookingID", p.BookingID, "type", p.PaymentType)
	err := r.db.QueryRowContext(ctx, query, p.BookingID, p.PaymentCode, p.PaymentType, p.Amount, p.PaymentStatus,
		p.PaymentMethod, p.DueDate, p.Notes, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	logger.DatabaseResult("INSERT", 1, err, "paymentID", p.ID)
	return translateError(err)
}

func (r *paymentRepository) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	p := &domain.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1`
	if err := scanPayment(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

func (r *paymentRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Payment, error) {
	p := &domain.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1 FOR UPDATE`
	if err := scanPayment(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET payment_status=$1, payment_method=$2, transaction_id=$3, payment_date=$4,
	          verified_by=$5, verified_at=$6, notes=$7, updated_at=$8 WHERE id=$9`
	p.UpdatedAt = time.Now().UTC()
	logger.DatabaseCall("UPDATE", "payments", "paymentID", p.ID, "status", p.PaymentStatus)
	res, err := r.db.ExecContext(ctx, query, p.PaymentStatus, p.PaymentMethod, p.TransactionID, p.PaymentDate,
		p.VerifiedBy, p.VerifiedAt, p.Notes, p.UpdatedAt, p.ID)
	return checkAffected(res, err)
}

func (r *paymentRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM payments WHERE payment_code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.booking_id = $1 ORDER BY p.created_at`
	return r.list(ctx, query, bookingID)
}

func (r *paymentRepository) List(ctx context.Context, f domain.PaymentFilter) ([]domain.Payment, int32, error) {
	from := ` FROM payments p JOIN bookings b ON b.id = p.booking_id JOIN apartments a ON a.id = b.apartment_id`
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
		conds = append(conds, fmt.Sprintf("p.payment_status = $%d", len(args)))
	}
	if len(conds) > 0 {
		from += " WHERE " + strings.Join(conds, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+from, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pageOffset(f.Page, f.PageSize)
	query := `SELECT ` + paymentColumns + from +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	payments, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return payments, count, nil
}

func (r *paymentRepository) ListDueReminders(ctx context.Context, dueBefore time.Time) ([]domain.PaymentReminder, error) {
	query := `SELECT p.id, p.payment_code, b.tenant_id, p.amount, p.due_date
	          FROM payments p JOIN bookings b ON b.id = p.booking_id
	          WHERE p.payment_status = 'pending' AND p.due_date IS NOT NULL AND p.due_date <= $1
	            AND b.status NOT IN ('rejected', 'cancelled', 'completed')
	          ORDER BY p.due_date`
	rows, err := r.db.QueryContext(ctx, query, dueBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []domain.PaymentReminder
	for rows.Next() {
		var rm domain.PaymentReminder
		if err := rows.Scan(&rm.PaymentID, &rm.PaymentCode, &rm.TenantID, &rm.Amount, &rm.DueDate); err != nil {
			return nil, err
		}
		reminders = append(reminders, rm)
	}
	return reminders, rows.Err()
}

func (r *paymentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) RevenueByMonth(ctx context.Context, year int, ownerID *int32) ([]domain.MonthlyRevenue, error) {
	query := `SELECT EXTRACT(MONTH FROM p.payment_date)::int AS month, SUM(p.amount), count(*)
	          FROM payments p`
	args := []any{year}
	where := ` WHERE p.payment_status = 'completed' AND EXTRACT(YEAR FROM p.payment_date) = $1`
	if ownerID != nil {
		query += ` JOIN bookings b ON b.id = p.booking_id JOIN apartments a ON a.id = b.apartment_id`
		args = append(args, *ownerID)
		where += ` AND a.owner_id = $2`
	}
	rows, err := r.db.QueryContext(ctx, query+where+` GROUP BY month ORDER BY month`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []domain.MonthlyRevenue
	for rows.Next() {
		var m domain.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Amount, &m.Payments); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}
