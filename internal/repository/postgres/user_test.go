package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "full_name", "phone", "role", "status", "created_at", "updated_at"}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	filter := domain.UserFilter{Role: domain.RoleOwner, Search: "budi", Page: 2, PageSize: 10}
	mock.ExpectQuery(`SELECT count\(\*\) FROM users WHERE role = \$1 AND \(username ILIKE \$2 OR email ILIKE \$2 OR full_name ILIKE \$2\)`).
		WithArgs(domain.RoleOwner, "%budi%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	now := time.Now()
	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(domain.RoleOwner, "%budi%", int32(10), int32(10)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(10, "budi", "budi@example.com", "hash", "Budi Santoso", "", "owner", "active", now, now))

	users, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int32(11), total)
	require.Len(t, users, 1)
	assert.Equal(t, "budi", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	t.Run("Missing user", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`DELETE FROM users WHERE id=\$1`).
			WithArgs(int32(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(context.Background(), 9), repository.ErrNotFound)
	})

	t.Run("Still referenced", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`DELETE FROM users WHERE id=\$1`).
			WithArgs(int32(10)).
			WillReturnError(&pq.Error{Code: "23503", Table: "apartments"})
		assert.ErrorIs(t, repo.Delete(context.Background(), 10), domain.ErrConflict)
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE users SET password_hash=\$1, updated_at=\$2 WHERE id=\$3`).
		WithArgs("new-hash", sqlmock.AnyArg(), int32(20)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), 20, "new-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
