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

type promotionRepository struct {
	db DBTX
}

func NewPromotionRepository(db DBTX) repository.PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionColumns = `p.id, p.code, p.title, COALESCE(p.description, ''), p.type, p.value, p.apartment_id,
	p.start_date, p.end_date, p.min_nights, p.active, p.usage_limit, p.usage_count, p.created_at`

func scanPromotion(row rowScanner, p *domain.Promotion) error {
	return row.Scan(&p.ID, &p.Code, &p.Title, &p.Description, &p.Type, &p.Value, &p.ApartmentID,
		&p.StartDate, &p.EndDate, &p.MinNights, &p.Active, &p.UsageLimit, &p.UsageCount, &p.CreatedAt)
}

func (r *promotionRepository) Create(ctx context.Context, p *domain.Promotion) error {
	query := `INSERT INTO promotions (code, title, description, type, value, apartment_id, start_date, end_date,
	          min_nights, active, usage_limit, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	p.CreatedAt = time.Now().UTC()
	logger.DatabaseCall("INSERT", "promotions", "code", p.Code)
	err := r.db.QueryRowContext(ctx, query, p.Code, p.Title, p.Description, p.Type, p.Value, p.ApartmentID,
		p.StartDate, p.EndDate, p.MinNights, p.Active, p.UsageLimit, p.CreatedAt).Scan(&p.ID)
	logger.DatabaseResult("INSERT", 1, err, "promotionID", p.ID)
	return translateError(err)
}

func (r *promotionRepository) GetByID(ctx context.Context, id int32) (*domain.Promotion, error) {
	return r.getOne(ctx, `SELECT `+promotionColumns+` FROM promotions p WHERE p.id = $1`, id)
}

func (r *promotionRepository) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	return r.getOne(ctx, `SELECT `+promotionColumns+` FROM promotions p WHERE p.code = $1`, code)
}

func (r *promotionRepository) getOne(ctx context.Context, query string, arg any) (*domain.Promotion, error) {
	p := &domain.Promotion{}
	if err := scanPromotion(r.db.QueryRowContext(ctx, query, arg), p); err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

func (r *promotionRepository) Update(ctx context.Context, p *domain.Promotion) error {
	query := `UPDATE promotions SET title=$1, description=$2, type=$3, value=$4, apartment_id=$5, start_date=$6,
	          end_date=$7, min_nights=$8, active=$9, usage_limit=$10 WHERE id=$11`
	res, err := r.db.ExecContext(ctx, query, p.Title, p.Description, p.Type, p.Value, p.ApartmentID, p.StartDate,
		p.EndDate, p.MinNights, p.Active, p.UsageLimit, p.ID)
	return checkAffected(res, err)
}

func (r *promotionRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id=$1`, id)
	return checkAffected(res, err)
}

func (r *promotionRepository) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
	var conds []string
	var args []any
	if filter.ActiveOnly {
		conds = append(conds, "p.active = TRUE")
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("p.type = $%d", len(args)))
	}
	query := `SELECT ` + promotionColumns + ` FROM promotions p`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, query+" ORDER BY p.created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		if err := scanPromotion(rows, &p); err != nil {
			return nil, err
		}
		promotions = append(promotions, p)
	}
	return promotions, rows.Err()
}
