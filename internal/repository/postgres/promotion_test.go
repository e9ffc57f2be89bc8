package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
)

var promotionRowColumns = []string{"id", "code", "title", "description", "type", "value", "apartment_id",
	"start_date", "end_date", "min_nights", "active", "usage_limit", "usage_count", "created_at"}

func TestPromotionRepository_GetByCode(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromotionRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM promotions p WHERE p.code = \$1`).
		WithArgs("RAMADAN10").
		WillReturnRows(sqlmock.NewRows(promotionRowColumns).
			AddRow(4, "RAMADAN10", "Ramadan", "", "percentage", "10", nil,
				start, start.AddDate(0, 1, 0), nil, true, 50, 3, time.Now()))

	p, err := repo.GetByCode(context.Background(), "RAMADAN10")
	require.NoError(t, err)
	assert.Equal(t, domain.PromotionTypePercentage, p.Type)
	assert.True(t, p.Value.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, p.ApartmentID)
	require.NotNil(t, p.UsageLimit)
	assert.Equal(t, int32(50), *p.UsageLimit)

	mock.ExpectQuery(`FROM promotions p WHERE p.code = \$1`).
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPromotionRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromotionRepository(db)

	mock.ExpectQuery(`FROM promotions p WHERE p.active = TRUE AND p.type = \$1 ORDER BY p.created_at DESC`).
		WithArgs(domain.PromotionTypeFixed).
		WillReturnRows(sqlmock.NewRows(promotionRowColumns))

	items, err := repo.List(context.Background(), domain.PromotionFilter{ActiveOnly: true, Type: domain.PromotionTypeFixed})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromotionRepository(db)

	p := &domain.Promotion{ID: 4, Title: "Ramadan", Type: domain.PromotionTypeFixed, Value: decimal.NewFromInt(250000)}
	mock.ExpectExec(`UPDATE promotions SET title=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Update(context.Background(), p), repository.ErrNotFound)
}
