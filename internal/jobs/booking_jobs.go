package jobs

import (
	"context"
	"log/slog"
)

// CompleteEndedBookings marks active bookings as completed once their end
// date is behind us and frees the apartments they occupied.
func (jr *JobRunner) CompleteEndedBookings() {
	jr.runWithRecovery("CompleteEndedBookings", func(ctx context.Context, log *slog.Logger) {
		n, err := jr.bookings.CompleteEndedBookings(ctx, jr.now())
		if err != nil {
			log.Error("Failed to complete ended bookings", "error", err, "completed", n)
			return
		}
		log.Info("Completed ended bookings", "count", n)
	})
}
