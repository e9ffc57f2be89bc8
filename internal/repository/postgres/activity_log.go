package postgres

import (
	"context"
	"encoding/json"
	"time"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
)

type activityLogRepository struct {
	db DBTX
}

func NewActivityLogRepository(db DBTX) repository.ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, e *domain.ActivityLog) error {
	oldData, err := marshalNullable(e.OldData)
	if err != nil {
		return err
	}
	newData, err := marshalNullable(e.NewData)
	if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var userID any
	if e.UserID != 0 {
		userID = e.UserID
	}

	query := `INSERT INTO activity_logs (user_id, action, entity_type, entity_id, old_data, new_data, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, userID, e.Action, e.EntityType, e.EntityID, oldData, newData, e.CreatedAt).Scan(&e.ID)
}

// marshalNullable encodes data as JSON, or SQL NULL when empty.
func marshalNullable(data map[string]any) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return b, nil
}
