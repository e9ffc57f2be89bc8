package jobs

import (
	"context"
	"log/slog"
	"time"

	"vidaview-backend/internal/logger"
)

const defaultJobTimeout = 5 * time.Minute

// BookingCompleter closes out bookings whose end date has passed.
type BookingCompleter interface {
	CompleteEndedBookings(ctx context.Context, asOf time.Time) (int, error)
}

// PaymentReminder nudges tenants about payments that are coming due.
type PaymentReminder interface {
	SendPaymentReminders(ctx context.Context, asOf time.Time) (int, error)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings BookingCompleter
	payments PaymentReminder
	timeout  time.Duration
	now      func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(bookings BookingCompleter, payments PaymentReminder) *JobRunner {
	return &JobRunner{
		bookings: bookings,
		payments: payments,
		timeout:  defaultJobTimeout,
		now:      time.Now,
	}
}

// Names lists the jobs accepted by RunByName.
func Names() []string {
	return []string{"complete-ended-bookings", "send-payment-reminders", "all"}
}

// RunByName runs one job synchronously. It reports false for an unknown name.
func (jr *JobRunner) RunByName(name string) bool {
	switch name {
	case "complete-ended-bookings":
		jr.CompleteEndedBookings()
	case "send-payment-reminders":
		jr.SendPaymentReminders()
	case "all":
		jr.RunAll()
	default:
		return false
	}
	return true
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.CompleteEndedBookings()
	jr.SendPaymentReminders()
}

// runWithRecovery wraps job execution with panic recovery. jobFunc logs
// through a logger tagged with the service and job name.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context, log *slog.Logger)) {
	log := logger.WithService("jobs").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	log.Info("Starting job")
	jobFunc(ctx, log)
	log.Info("Job completed", "duration", time.Since(start))
}
