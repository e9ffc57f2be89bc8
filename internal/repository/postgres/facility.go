package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/repository"
)

type facilityRepository struct {
	db DBTX
}

func NewFacilityRepository(db DBTX) repository.FacilityRepository {
	return &facilityRepository{db: db}
}

const facilityColumns = `f.id, f.name, COALESCE(f.description, ''), COALESCE(f.icon, ''), f.category, f.status, f.created_at`

func scanFacility(row rowScanner, f *domain.Facility) error {
	return row.Scan(&f.ID, &f.Name, &f.Description, &f.Icon, &f.Category, &f.Status, &f.CreatedAt)
}

func (r *facilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	query := `INSERT INTO facilities (name, description, icon, category, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	f.CreatedAt = time.Now().UTC()
	logger.DatabaseCall("INSERT", "facilities", "name", f.Name)
	err := r.db.QueryRowContext(ctx, query, f.Name, f.Description, f.Icon, f.Category, f.Status, f.CreatedAt).Scan(&f.ID)
	logger.DatabaseResult("INSERT", 1, err, "facilityID", f.ID)
	return translateError(err)
}

func (r *facilityRepository) GetByID(ctx context.Context, id int32) (*domain.Facility, error) {
	f := &domain.Facility{}
	query := `SELECT ` + facilityColumns + ` FROM facilities f WHERE f.id = $1`
	if err := scanFacility(r.db.QueryRowContext(ctx, query, id), f); err != nil {
		return nil, translateError(err)
	}
	return f, nil
}

func (r *facilityRepository) Update(ctx context.Context, f *domain.Facility) error {
	query := `UPDATE facilities SET name=$1, description=$2, icon=$3, category=$4, status=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, f.Name, f.Description, f.Icon, f.Category, f.Status, f.ID)
	return checkAffected(res, err)
}

func (r *facilityRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM facilities WHERE id=$1`, id)
	return checkAffected(res, err)
}

func (r *facilityRepository) List(ctx context.Context, filter domain.FacilityFilter) ([]domain.Facility, error) {
	var conds []string
	var args []any
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("f.category = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("f.status = $%d", len(args)))
	}
	query := `SELECT ` + facilityColumns + ` FROM facilities f`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return r.query(ctx, query+" ORDER BY f.category, f.name", args...)
}

func (r *facilityRepository) ListByApartment(ctx context.Context, apartmentID int32) ([]domain.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities f
	          JOIN apartment_facilities af ON af.facility_id = f.id
	          WHERE af.apartment_id = $1 ORDER BY f.category, f.name`
	return r.query(ctx, query, apartmentID)
}

func (r *facilityRepository) SetForApartment(ctx context.Context, apartmentID int32, facilityIDs []int32) error {
	logger.DatabaseCall("REPLACE", "apartment_facilities", "apartmentID", apartmentID, "count", len(facilityIDs))
	if _, err := r.db.ExecContext(ctx, `DELETE FROM apartment_facilities WHERE apartment_id = $1`, apartmentID); err != nil {
		return translateError(err)
	}
	if len(facilityIDs) == 0 {
		return nil
	}
	ids := make([]int64, len(facilityIDs))
	for i, id := range facilityIDs {
		ids[i] = int64(id)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO apartment_facilities (apartment_id, facility_id)
	          SELECT $1, unnest($2::int[]) ON CONFLICT DO NOTHING`, apartmentID, pq.Array(ids))
	return translateError(err)
}

func (r *facilityRepository) query(ctx context.Context, query string, args ...any) ([]domain.Facility, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []domain.Facility
	for rows.Next() {
		var f domain.Facility
		if err := scanFacility(rows, &f); err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}
