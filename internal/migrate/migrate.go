// Package migrate applies the embedded SQL schema migrations through gorm and
// records each applied version in schema_migrations.
package migrate

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"vidaview-backend/internal/logger"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migration is one versioned schema change. File names follow
// <version>_<name>.up.sql and <version>_<name>.down.sql.
type Migration struct {
	Version string
	Name    string
	Up      string
	Down    string
}

// Record is a row of schema_migrations.
type Record struct {
	Version   string    `gorm:"primaryKey;size:32"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (Record) TableName() string { return "schema_migrations" }

// Status pairs a known migration with its applied time, if any.
type Status struct {
	Migration
	AppliedAt *time.Time
}

// Embedded returns the migrations compiled into the binary.
func Embedded() ([]Migration, error) {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every migration pair at the root of fsys, ordered by version.
// A migration without an up file is an error; the down file is optional.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".sql")
		direction := path.Ext(base)
		if direction != ".up" && direction != ".down" {
			return nil, fmt.Errorf("migration %s: expected .up.sql or .down.sql", e.Name())
		}
		version, name, ok := strings.Cut(strings.TrimSuffix(base, direction), "_")
		if !ok || version == "" || name == "" {
			return nil, fmt.Errorf("migration %s: expected <version>_<name>", e.Name())
		}

		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		} else if m.Name != name {
			return nil, fmt.Errorf("migration %s: version already used by %q", e.Name(), m.Name)
		}
		if direction == ".up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.Up) == "" {
			return nil, fmt.Errorf("migration %s_%s has no up script", m.Version, m.Name)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// ErrNoDownScript is returned when rolling back a migration that cannot be reverted.
var ErrNoDownScript = errors.New("migration has no down script")

type Migrator struct {
	db         *gorm.DB
	migrations []Migration
	now        func() time.Time
}

func NewMigrator(db *gorm.DB, migrations []Migration) *Migrator {
	return &Migrator{db: db, migrations: migrations, now: time.Now}
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	return m.db.WithContext(ctx).AutoMigrate(&Record{})
}

func (m *Migrator) applied(ctx context.Context) (map[string]Record, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	var records []Record
	if err := m.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	out := make(map[string]Record, len(records))
	for _, r := range records {
		out[r.Version] = r
	}
	return out, nil
}

// Up applies every pending migration in version order. Each migration and
// its version record commit together.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var done []Migration
	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		logger.Info("Applying migration", "version", mig.Version, "name", mig.Name)
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.Up).Error; err != nil {
				return err
			}
			return tx.Create(&Record{Version: mig.Version, Name: mig.Name, AppliedAt: m.now().UTC()}).Error
		})
		if err != nil {
			return done, fmt.Errorf("apply %s_%s: %w", mig.Version, mig.Name, err)
		}
		done = append(done, mig)
	}
	return done, nil
}

// Down reverts the most recently applied migration. It returns nil when
// nothing has been applied.
func (m *Migrator) Down(ctx context.Context) (*Migration, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	var last Record
	err := m.db.WithContext(ctx).Order("version DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find last migration: %w", err)
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == last.Version {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("applied migration %s is unknown to this binary", last.Version)
	}
	if strings.TrimSpace(target.Down) == "" {
		return nil, fmt.Errorf("%s_%s: %w", target.Version, target.Name, ErrNoDownScript)
	}

	logger.Info("Reverting migration", "version", target.Version, "name", target.Name)
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.Down).Error; err != nil {
			return err
		}
		return tx.Delete(&Record{}, "version = ?", target.Version).Error
	})
	if err != nil {
		return nil, fmt.Errorf("revert %s_%s: %w", target.Version, target.Name, err)
	}
	return target, nil
}

// Status lists every known migration in order with its applied time.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(m.migrations))
	for _, mig := range m.migrations {
		s := Status{Migration: mig}
		if r, ok := applied[mig.Version]; ok {
			at := r.AppliedAt
			s.AppliedAt = &at
		}
		out = append(out, s)
	}
	return out, nil
}
