package jobs

import (
	"context"
	"log/slog"
)

// SendPaymentReminders notifies tenants of pending payments due by tomorrow.
func (jr *JobRunner) SendPaymentReminders() {
	jr.runWithRecovery("SendPaymentReminders", func(ctx context.Context, log *slog.Logger) {
		n, err := jr.payments.SendPaymentReminders(ctx, jr.now())
		if err != nil {
			log.Error("Failed to send payment reminders", "error", err, "sent", n)
			return
		}
		log.Info("Sent payment reminders", "count", n)
	})
}
