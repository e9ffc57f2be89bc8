// Package app wires configuration, storage, delivery channels and services
// into the process shared by the API server and the cron runner.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	httpapi "vidaview-backend/internal/api/http"
	"vidaview-backend/internal/audit"
	"vidaview-backend/internal/config"
	"vidaview-backend/internal/jobs"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/notify"
	"vidaview-backend/internal/repository/postgres"
	"vidaview-backend/internal/security"
	"vidaview-backend/internal/service"
)

// App holds the long-lived components. Start the background workers with
// Start and release everything with Close.
type App struct {
	Config     *config.Config
	DB         *sql.DB
	Store      *postgres.Store
	Tokens     security.TokenManager
	Dispatcher *notify.Dispatcher
	Audit      *audit.Recorder
	Services   httpapi.Services
	Jobs       *jobs.JobRunner

	closeOnce sync.Once
}

// New opens the database and builds every service. Delivery channels are
// only enabled when their credentials are configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	channels, err := buildChannels(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	dispatcher := notify.NewDispatcher(store.Users, notify.Options{
		QueueSize:  cfg.Notifier.QueueSize,
		Workers:    cfg.Notifier.Workers,
		MaxRetries: cfg.Notifier.MaxRetries,
		Backoff:    time.Duration(cfg.Notifier.RetryBackoffMs) * time.Millisecond,
	}, channels...)
	recorder := audit.NewRecorder(store.ActivityLogs, cfg.Audit.BufferSize)

	tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	deps := service.Deps{
		UoW:      store,
		Repos:    store.Repositories,
		Notifier: dispatcher,
		Audit:    recorder,
	}
	settings := service.BookingSettings{
		UtilityDepositRate: cfg.UtilityDepositRate(),
		DefaultAdminFee:    cfg.DefaultAdminFee(),
		DepositDueDays:     cfg.Booking.DepositDueDays,
		CodeAttempts:       cfg.Booking.CodeAttempts,
	}

	bookings := service.NewBookingService(deps, settings)
	payments := service.NewPaymentService(deps, settings)

	return &App{
		Config:     cfg,
		DB:         db,
		Store:      store,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Audit:      recorder,
		Services: httpapi.Services{
			Auth:          service.NewAuthService(store.Users, tokens, recorder),
			Apartments:    service.NewApartmentService(deps),
			Bookings:      bookings,
			Payments:      payments,
			Reviews:       service.NewReviewService(deps),
			Notifications: service.NewNotificationService(store.Notifications),
			Reports:       service.NewReportService(store.Apartments, store.Payments),
			Users:         service.NewUserService(deps),
			Facilities:    service.NewFacilityService(deps),
			Promotions:    service.NewPromotionService(deps),
		},
		Jobs: jobs.NewJobRunner(bookings, payments),
	}, nil
}

func buildChannels(ctx context.Context, cfg *config.Config) ([]notify.Channel, error) {
	var channels []notify.Channel
	if cfg.Email.SendGridAPIKey != "" {
		channels = append(channels, notify.NewEmailChannel(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName))
		logger.Info("Email delivery enabled", "from", cfg.Email.FromAddress)
	} else {
		logger.Warn("SendGrid API key not set, email delivery disabled")
	}

	if cfg.Push.CredentialsFile != "" {
		push, err := notify.NewPushChannel(ctx, cfg.Push.CredentialsFile, cfg.Push.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("init push channel: %w", err)
		}
		channels = append(channels, push)
		logger.Info("Push delivery enabled", "project", cfg.Push.ProjectID)
	}
	return channels, nil
}

// Start launches the notification workers and the audit writer.
func (a *App) Start(ctx context.Context) {
	a.Dispatcher.Start(ctx)
	a.Audit.Start()
}

// Close drains the background workers and closes the database. It is safe
// to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.Dispatcher.Stop()
		a.Audit.Stop()
		if err := a.DB.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
		if n := a.Dispatcher.Dropped(); n > 0 {
			logger.Warn("Notifications dropped during run", "count", n)
		}
	})
}
