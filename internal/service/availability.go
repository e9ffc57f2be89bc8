package service

import (
	"context"
	"time"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
	"vidaview-backend/internal/utils"
)

// Overlaps reports whether two date ranges intersect with both ends inclusive,
// so a booking ending on the day another one starts is a conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !aStart.After(bEnd)
}

// findConflict returns the first blocking booking whose range intersects
// [start, end], ignoring the booking with id exclude.
func findConflict(existing []domain.Booking, start, end time.Time, exclude int32) *domain.Booking {
	for i := range existing {
		b := &existing[i]
		if b.ID == exclude || !b.Status.Blocking() {
			continue
		}
		if Overlaps(b.StartDate, b.EndDate, start, end) {
			return b
		}
	}
	return nil
}

// ensureAvailable fails with a Conflict error when a confirmed or active
// booking of the apartment intersects the range.
func ensureAvailable(ctx context.Context, bookings repository.BookingRepository, apartmentID int32, start, end time.Time, exclude int32) error {
	existing, err := bookings.ListBlocking(ctx, apartmentID)
	if err != nil {
		return err
	}
	if c := findConflict(existing, start, end, exclude); c != nil {
		return domain.Conflict("apartment is already booked from %s to %s",
			c.StartDate.Format(utils.DateLayout), c.EndDate.Format(utils.DateLayout))
	}
	return nil
}

// validateRange checks the caller-side preconditions of an availability check.
func validateRange(start, end, today time.Time) error {
	if !end.After(start) {
		return domain.Validation("end date must be after start date")
	}
	if start.Before(today) {
		return domain.Validation("start date cannot be in the past")
	}
	return nil
}
