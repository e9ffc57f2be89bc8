package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each new connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"0001_users.up.sql":   {Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE);")},
		"0001_users.down.sql": {Data: []byte("DROP TABLE users;")},
		"0002_favorites.up.sql": {Data: []byte(
			"CREATE TABLE favorites (user_id INTEGER NOT NULL, apartment_id INTEGER NOT NULL);\n" +
				"CREATE UNIQUE INDEX idx_favorites ON favorites (user_id, apartment_id);")},
		"0002_favorites.down.sql": {Data: []byte("DROP TABLE favorites;")},
		"README.md":               {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *gorm.DB, name string) bool {
	t.Helper()
	var count int64
	require.NoError(t, db.Raw("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count).Error)
	return count == 1
}

func TestLoad(t *testing.T) {
	migrations, err := Load(testMigrations())
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001", migrations[0].Version)
	assert.Equal(t, "users", migrations[0].Name)
	assert.Equal(t, "favorites", migrations[1].Name)
	assert.Contains(t, migrations[1].Up, "idx_favorites")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"no direction", fstest.MapFS{"0001_users.sql": {Data: []byte("SELECT 1;")}}},
		{"no name", fstest.MapFS{"0001.up.sql": {Data: []byte("SELECT 1;")}}},
		{"down only", fstest.MapFS{"0001_users.down.sql": {Data: []byte("DROP TABLE users;")}}},
		{"version reused", fstest.MapFS{
			"0001_users.up.sql":  {Data: []byte("SELECT 1;")},
			"0001_orders.up.sql": {Data: []byte("SELECT 1;")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.fsys)
			assert.Error(t, err)
		})
	}
}

func TestEmbedded(t *testing.T) {
	migrations, err := Embedded()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	initial := migrations[0]
	assert.Equal(t, "0001", initial.Version)
	assert.Contains(t, initial.Up, "bookings_no_overlap")
	assert.Contains(t, initial.Up, "daterange(start_date, end_date, '[]')")
	assert.Contains(t, initial.Down, "DROP TABLE IF EXISTS bookings")
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	migrations, err := Load(testMigrations())
	require.NoError(t, err)
	m := NewMigrator(db, migrations)
	ctx := context.Background()

	done, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Len(t, done, 2)
	assert.True(t, tableExists(t, db, "users"))
	assert.True(t, tableExists(t, db, "favorites"))

	done, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, done)

	var records []Record
	require.NoError(t, db.Order("version").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, "0002", records[1].Version)
}

func TestMigrator_Down(t *testing.T) {
	db := setupTestDB(t)
	migrations, err := Load(testMigrations())
	require.NoError(t, err)
	m := NewMigrator(db, migrations)
	ctx := context.Background()

	_, err = m.Up(ctx)
	require.NoError(t, err)

	reverted, err := m.Down(ctx)
	require.NoError(t, err)
	require.NotNil(t, reverted)
	assert.Equal(t, "0002", reverted.Version)
	assert.False(t, tableExists(t, db, "favorites"))
	assert.True(t, tableExists(t, db, "users"))

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.NotNil(t, statuses[0].AppliedAt)
	assert.Nil(t, statuses[1].AppliedAt)
}

func TestMigrator_DownWithNothingApplied(t *testing.T) {
	m := NewMigrator(setupTestDB(t), nil)
	reverted, err := m.Down(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, reverted)
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := setupTestDB(t)
	m := NewMigrator(db, []Migration{
		{Version: "0001", Name: "users", Up: "CREATE TABLE users (id INTEGER PRIMARY KEY);"},
		{Version: "0002", Name: "broken", Up: "CREATE TABLE broken (id INTEGER PRIMARY KEY"},
	})

	done, err := m.Up(context.Background())
	require.Error(t, err)
	assert.Len(t, done, 1)

	statuses, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, statuses[0].AppliedAt)
	assert.Nil(t, statuses[1].AppliedAt)
}

func TestMigrator_DownWithoutScript(t *testing.T) {
	db := setupTestDB(t)
	m := NewMigrator(db, []Migration{{Version: "0001", Name: "users", Up: "CREATE TABLE users (id INTEGER PRIMARY KEY);"}})
	_, err := m.Up(context.Background())
	require.NoError(t, err)

	_, err = m.Down(context.Background())
	assert.ErrorIs(t, err, ErrNoDownScript)
}
