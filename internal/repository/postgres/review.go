package postgres

import (
	"context"
	"time"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
)

type reviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, apartment_id, tenant_id, booking_id, rating, COALESCE(review_text, ''), is_approved,
	approved_by, approved_at, created_at`

func scanReview(row rowScanner, rv *domain.Review) error {
	return row.Scan(&rv.ID, &rv.ApartmentID, &rv.TenantID, &rv.BookingID, &rv.Rating, &rv.ReviewText, &rv.IsApproved,
		&rv.ApprovedBy, &rv.ApprovedAt, &rv.CreatedAt)
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `INSERT INTO reviews (apartment_id, tenant_id, booking_id, rating, review_text, is_approved, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	rv.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, rv.ApartmentID, rv.TenantID, rv.BookingID, rv.Rating, rv.ReviewText,
		rv.IsApproved, rv.CreatedAt).Scan(&rv.ID)
	return translateError(err)
}

func (r *reviewRepository) GetByID(ctx context.Context, id int32) (*domain.Review, error) {
	rv := &domain.Review{}
	if err := scanReview(r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id), rv); err != nil {
		return nil, translateError(err)
	}
	return rv, nil
}

func (r *reviewRepository) ExistsForBooking(ctx context.Context, bookingID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE booking_id = $1)`, bookingID).Scan(&exists)
	return exists, err
}

func (r *reviewRepository) Approve(ctx context.Context, id, adminID int32, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reviews SET is_approved = TRUE, approved_by = $1, approved_at = $2 WHERE id = $3`, adminID, at, id)
	return checkAffected(res, err)
}

func (r *reviewRepository) ListApprovedByApartment(ctx context.Context, apartmentID int32) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reviewColumns+` FROM reviews
	          WHERE apartment_id = $1 AND is_approved ORDER BY created_at DESC`, apartmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := scanReview(rows, &rv); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
