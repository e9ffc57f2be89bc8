package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/repository"
)

type apartmentRepository struct {
	db DBTX
}

func NewApartmentRepository(db DBTX) repository.ApartmentRepository {
	return &apartmentRepository{db: db}
}

const apartmentColumns = `a.id, a.owner_id, a.unit_number, a.unit_type, a.floor, a.size_sqm, a.bedrooms, a.bathrooms,
	a.price_per_month, a.deposit_amount, a.minimum_stay_months, COALESCE(a.description, ''), a.furnished,
	a.availability_status, a.is_archived, a.avg_rating, a.total_views, a.created_at, a.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApartment(row rowScanner, a *domain.Apartment) error {
	return row.Scan(&a.ID, &a.OwnerID, &a.UnitNumber, &a.UnitType, &a.Floor, &a.SizeSqm, &a.Bedrooms, &a.Bathrooms,
		&a.PricePerMonth, &a.DepositAmount, &a.MinimumStayMonths, &a.Description, &a.Furnished,
		&a.AvailabilityStatus, &a.IsArchived, &a.AvgRating, &a.TotalViews, &a.CreatedAt, &a.UpdatedAt)
}

func (r *apartmentRepository) Create(ctx context.Context, a *domain.Apartment) error {
	query := `INSERT INTO apartments (owner_id, unit_number, unit_type, floor, size_sqm, bedrooms, bathrooms,
	          price_per_month, deposit_amount, minimum_stay_months, description, furnished, availability_status,
	          created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	logger.DatabaseCall("INSERT", "apartments", "ownerID", a.OwnerID, "unit", a.UnitNumber)
	err := r.db.QueryRowContext(ctx, query, a.OwnerID, a.UnitNumber, a.UnitType, a.Floor, a.SizeSqm, a.Bedrooms, a.Bathrooms,
		a.PricePerMonth, a.DepositAmount, a.MinimumStayMonths, a.Description, a.Furnished, a.AvailabilityStatus,
		a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	logger.DatabaseResult("INSERT", 1, err, "apartmentID", a.ID)
	return translateError(err)
}

func (r *apartmentRepository) GetByID(ctx context.Context, id int32) (*domain.Apartment, error) {
	a := &domain.Apartment{}
	query := `SELECT ` + apartmentColumns + ` FROM apartments a WHERE a.id = $1`
	if err := scanApartment(r.db.QueryRowContext(ctx, query, id), a); err != nil {
		return nil, translateError(err)
	}
	return a, nil
}

func (r *apartmentRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Apartment, error) {
	a := &domain.Apartment{}
	query := `SELECT ` + apartmentColumns + ` FROM apartments a WHERE a.id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "apartments", "apartmentID", id)
	if err := scanApartment(r.db.QueryRowContext(ctx, query, id), a); err != nil {
		return nil, translateError(err)
	}
	return a, nil
}

func (r *apartmentRepository) Update(ctx context.Context, a *domain.Apartment) error {
	query := `UPDATE apartments SET unit_type=$1, floor=$2, size_sqm=$3, bedrooms=$4, bathrooms=$5, price_per_month=$6,
	          deposit_amount=$7, minimum_stay_months=$8, description=$9, furnished=$10, updated_at=$11 WHERE id=$12`
	a.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, a.UnitType, a.Floor, a.SizeSqm, a.Bedrooms, a.Bathrooms, a.PricePerMonth,
		a.DepositAmount, a.MinimumStayMonths, a.Description, a.Furnished, a.UpdatedAt, a.ID)
	return translateError(err)
}

func (r *apartmentRepository) UpdateAvailability(ctx context.Context, id int32, status domain.AvailabilityStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE apartments SET availability_status=$1, updated_at=$2 WHERE id=$3`, status, time.Now().UTC(), id)
	return checkAffected(res, err)
}

func (r *apartmentRepository) Archive(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `UPDATE apartments SET is_archived=TRUE, updated_at=$1 WHERE id=$2`, time.Now().UTC(), id)
	return checkAffected(res, err)
}

func (r *apartmentRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM apartments WHERE id=$1`, id)
	return checkAffected(res, err)
}

func (r *apartmentRepository) List(ctx context.Context, f domain.ApartmentFilter) ([]domain.Apartment, int32, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !f.IncludeArchived {
		conds = append(conds, "a.is_archived = FALSE")
	}
	if f.OwnerID != nil {
		add("a.owner_id = $%d", *f.OwnerID)
	}
	if f.Status != "" {
		add("a.availability_status = $%d", f.Status)
	}
	if f.UnitType != "" {
		add("a.unit_type = $%d", f.UnitType)
	}
	if f.MinPrice != nil {
		add("a.price_per_month >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("a.price_per_month <= $%d", *f.MaxPrice)
	}
	if f.Search != "" {
		add("(a.unit_number ILIKE $%[1]d OR a.description ILIKE $%[1]d)", "%"+f.Search+"%")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM apartments a`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pageOffset(f.Page, f.PageSize)
	query := `SELECT ` + apartmentColumns + ` FROM apartments a` + where +
		fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apartments []domain.Apartment
	for rows.Next() {
		var a domain.Apartment
		if err := scanApartment(rows, &a); err != nil {
			return nil, 0, err
		}
		apartments = append(apartments, a)
	}
	return apartments, count, rows.Err()
}

func (r *apartmentRepository) HasBookingsInStatus(ctx context.Context, id int32, statuses []domain.BookingStatus) (bool, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE apartment_id = $1 AND status = ANY($2))`,
		id, pq.Array(values)).Scan(&exists)
	return exists, err
}

func (r *apartmentRepository) HasAnyBooking(ctx context.Context, id int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE apartment_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *apartmentRepository) HasTenantBooking(ctx context.Context, id, tenantID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE apartment_id = $1 AND tenant_id = $2)`, id, tenantID).Scan(&exists)
	return exists, err
}

func (r *apartmentRepository) UpdateRating(ctx context.Context, id int32) error {
	query := `UPDATE apartments SET avg_rating = COALESCE(
	            (SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE apartment_id = $1 AND is_approved), 0),
	          updated_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	return err
}

func (r *apartmentRepository) IncrementViews(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE apartments SET total_views = total_views + 1 WHERE id = $1`, id)
	return err
}

func (r *apartmentRepository) OccupancySummary(ctx context.Context, ownerID *int32) (*domain.OccupancySummary, error) {
	query := `SELECT count(*),
	                 count(*) FILTER (WHERE availability_status = 'occupied'),
	                 count(*) FILTER (WHERE availability_status = 'available')
	          FROM apartments WHERE is_archived = FALSE`
	var args []any
	if ownerID != nil {
		query += ` AND owner_id = $1`
		args = append(args, *ownerID)
	}

	s := &domain.OccupancySummary{}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.Total, &s.Occupied, &s.Available); err != nil {
		return nil, err
	}
	if s.Total > 0 {
		s.OccupancyRate = float64(s.Occupied) / float64(s.Total) * 100
	}
	return s, nil
}

var rankingQueries = map[domain.ApartmentRanking]string{
	domain.RankByViews: `SELECT a.id, a.unit_number, a.total_views::float8 FROM apartments a
	          WHERE a.is_archived = FALSE ORDER BY a.total_views DESC, a.id LIMIT $1`,
	domain.RankByRating: `SELECT a.id, a.unit_number, a.avg_rating::float8 FROM apartments a
	          WHERE a.is_archived = FALSE AND a.avg_rating > 0 ORDER BY a.avg_rating DESC, a.id LIMIT $1`,
	domain.RankByBookings: `SELECT a.id, a.unit_number, count(b.id)::float8 AS bookings FROM apartments a
	          JOIN bookings b ON b.apartment_id = a.id
	          WHERE a.is_archived = FALSE GROUP BY a.id, a.unit_number ORDER BY bookings DESC, a.id LIMIT $1`,
}

func (r *apartmentRepository) Top(ctx context.Context, by domain.ApartmentRanking, limit int32) ([]domain.RankedApartment, error) {
	query, ok := rankingQueries[by]
	if !ok {
		return nil, fmt.Errorf("unknown apartment ranking %q", by)
	}
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranked := []domain.RankedApartment{}
	for rows.Next() {
		var ra domain.RankedApartment
		if err := rows.Scan(&ra.ApartmentID, &ra.UnitNumber, &ra.Score); err != nil {
			return nil, err
		}
		ranked = append(ranked, ra)
	}
	return ranked, rows.Err()
}

func (r *apartmentRepository) IsFavorite(ctx context.Context, userID, apartmentID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND apartment_id = $2)`, userID, apartmentID).Scan(&exists)
	return exists, err
}

func (r *apartmentRepository) AddFavorite(ctx context.Context, userID, apartmentID int32) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO favorites (user_id, apartment_id, created_at) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, apartment_id) DO NOTHING`, userID, apartmentID, time.Now().UTC())
	return translateError(err)
}

func (r *apartmentRepository) RemoveFavorite(ctx context.Context, userID, apartmentID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND apartment_id = $2`, userID, apartmentID)
	return err
}

func (r *apartmentRepository) ListFavorites(ctx context.Context, userID int32) ([]domain.Apartment, error) {
	query := `SELECT ` + apartmentColumns + ` FROM apartments a
	          JOIN favorites f ON f.apartment_id = a.id
	          WHERE f.user_id = $1 AND a.is_archived = FALSE ORDER BY f.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apartments []domain.Apartment
	for rows.Next() {
		var a domain.Apartment
		if err := scanApartment(rows, &a); err != nil {
			return nil, err
		}
		apartments = append(apartments, a)
	}
	return apartments, rows.Err()
}

// checkAffected turns a zero-row update into repository.ErrNotFound.
func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
