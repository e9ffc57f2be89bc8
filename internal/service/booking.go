package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/policy"
	"vidaview-backend/internal/repository"
	"vidaview-backend/internal/utils"
)

type CreateBookingInput struct {
	ApartmentID int32
	// TenantID is required when an admin books on behalf of a tenant and is
	// ignored otherwise.
	TenantID       int32
	StartDate      time.Time
	EndDate        time.Time
	UtilityDeposit *decimal.Decimal
	AdminFee       *decimal.Decimal
	Notes          string
}

// UpdateBookingInput lists the fields an admin may override. Nil leaves a field as is.
type UpdateBookingInput struct {
	StartDate         *time.Time
	EndDate           *time.Time
	Status            *domain.BookingStatus
	Notes             *string
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
}

type bookingService struct {
	Deps
	settings BookingSettings
}

func NewBookingService(deps Deps, settings BookingSettings) BookingService {
	return &bookingService{Deps: deps, settings: settings}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor domain.Actor, in CreateBookingInput) (*domain.Booking, *domain.Payment, error) {
	logger.EnterMethod("bookingService.CreateBooking", "actorID", actor.UserID, "apartmentID", in.ApartmentID)

	tenantID := in.TenantID
	if actor.Role != domain.RoleAdmin || tenantID == 0 {
		tenantID = actor.UserID
	}
	if err := policy.Authorize(actor, policy.ActionCreateBooking, policy.Resource{TenantID: tenantID}); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, nil, err
	}
	if actor.IsAdmin() {
		if in.TenantID == 0 {
			return nil, nil, domain.Validation("tenant_id is required when booking on behalf of a tenant")
		}
		tenant, err := s.Repos.Users.GetByID(ctx, in.TenantID)
		if err != nil {
			return nil, nil, lookupError("tenant", err)
		}
		if tenant.Role != domain.RoleTenant {
			return nil, nil, domain.Validation("user %d is not a tenant", in.TenantID)
		}
	}

	now := s.now()
	today := utils.DateOf(now)
	start, end := utils.DateOf(in.StartDate), utils.DateOf(in.EndDate)
	if err := validateRange(start, end, today); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, nil, err
	}
	if in.UtilityDeposit != nil && in.UtilityDeposit.IsNegative() {
		return nil, nil, domain.Validation("utility deposit cannot be negative")
	}
	if in.AdminFee != nil && in.AdminFee.IsNegative() {
		return nil, nil, domain.Validation("admin fee cannot be negative")
	}

	var booking *domain.Booking
	var deposit *domain.Payment
	var box *outbox
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		apt, err := repos.Apartments.GetByIDForUpdate(ctx, in.ApartmentID)
		if err != nil {
			return lookupError("apartment", err)
		}
		if apt.IsArchived || apt.AvailabilityStatus != domain.AvailabilityAvailable {
			return domain.Validation("apartment %s is not available for rent", apt.UnitNumber)
		}

		months := utils.MonthsBetween(start, end)
		if err := checkStay(apt, months); err != nil {
			return err
		}

		if err := ensureAvailable(ctx, repos.Bookings, apt.ID, start, end, 0); err != nil {
			return err
		}

		utility := apt.PricePerMonth.Mul(s.settings.UtilityDepositRate)
		if in.UtilityDeposit != nil {
			utility = *in.UtilityDeposit
		}
		fee := s.settings.DefaultAdminFee
		if in.AdminFee != nil {
			fee = *in.AdminFee
		}
		totals := utils.CalculateBookingTotals(apt.PricePerMonth, months, apt.EffectiveDeposit(), utility, fee)

		code, err := uniqueCode(ctx, s.settings.CodeAttempts, func() string { return utils.GenerateBookingCode(now) }, repos.Bookings.ExistsByCode)
		if err != nil {
			return err
		}

		booking = &domain.Booking{
			ApartmentID:    apt.ID,
			TenantID:       tenantID,
			BookingCode:    code,
			StartDate:      start,
			EndDate:        end,
			TotalMonths:    totals.TotalMonths,
			MonthlyRent:    totals.MonthlyRent,
			DepositPaid:    totals.Deposit,
			UtilityDeposit: totals.UtilityDeposit,
			AdminFee:       totals.AdminFee,
			TotalAmount:    totals.TotalAmount,
			Status:         domain.BookingStatusPending,
			Notes:          in.Notes,
		}
		if err := repos.Bookings.Create(ctx, booking); err != nil {
			return err
		}

		payCode, err := uniqueCode(ctx, s.settings.CodeAttempts, func() string { return utils.GeneratePaymentCode(now) }, repos.Payments.ExistsByCode)
		if err != nil {
			return err
		}
		due := today.AddDate(0, 0, s.settings.DepositDueDays)
		deposit = &domain.Payment{
			BookingID:     booking.ID,
			PaymentCode:   payCode,
			PaymentType:   domain.PaymentTypeDeposit,
			Amount:        totals.Deposit,
			PaymentStatus: domain.PaymentStatusPending,
			DueDate:       &due,
		}
		if err := repos.Payments.Create(ctx, deposit); err != nil {
			return err
		}

		box = newOutbox(repos.Notifications)
		if err := box.add(ctx, tenantID, domain.NotificationTypeBooking, booking.ID, "Booking Created",
			fmt.Sprintf("Your booking %s for unit %s was submitted and is waiting for approval", booking.BookingCode, apt.UnitNumber)); err != nil {
			return err
		}
		return box.add(ctx, apt.OwnerID, domain.NotificationTypeBooking, booking.ID, "New Booking Request",
			fmt.Sprintf("Booking %s was requested for unit %s", booking.BookingCode, apt.UnitNumber))
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "apartmentID", in.ApartmentID)
		return nil, nil, err
	}

	s.dispatch(ctx, box.notes)
	s.record(actor, "create_booking", "booking", booking.ID, nil, map[string]any{
		"booking_code": booking.BookingCode,
		"total_amount": booking.TotalAmount.String(),
	})
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", booking.ID)
	return booking, deposit, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error) {
	b, err := s.Repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("booking", err)
	}
	apt, err := s.Repos.Apartments.GetByID(ctx, b.ApartmentID)
	if err != nil {
		return nil, lookupError("apartment", err)
	}
	if err := policy.Authorize(actor, policy.ActionViewBooking, bookingResource(b, apt)); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) ListBookings(ctx context.Context, actor domain.Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domain.Validation("unknown booking status %q", status)
	}
	page, pageSize = NormalizePage(page, pageSize)
	filter := domain.BookingFilter{Status: status, Page: page, PageSize: pageSize}
	switch actor.Role {
	case domain.RoleTenant:
		filter.TenantID = &actor.UserID
	case domain.RoleOwner:
		filter.OwnerID = &actor.UserID
	case domain.RoleAdmin:
	default:
		return nil, 0, domain.Permission("unknown role")
	}
	return s.Repos.Bookings.List(ctx, filter)
}

func (s *bookingService) ApproveBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.ApproveBooking", "actorID", actor.UserID, "bookingID", id)

	var booking *domain.Booking
	var box *outbox
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, apt, err := lockBooking(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.ActionApproveBooking, bookingResource(b, apt)); err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPending {
			return domain.InvalidState("booking is %s, only pending bookings can be approved", b.Status)
		}
		if apt.IsArchived {
			return domain.InvalidState("apartment %s is archived", apt.UnitNumber)
		}
		if err := ensureAvailable(ctx, repos.Bookings, apt.ID, b.StartDate, b.EndDate, b.ID); err != nil {
			return err
		}

		now := s.now()
		b.Status = domain.BookingStatusConfirmed
		b.ApprovedBy = &actor.UserID
		b.ApprovedAt = &now
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}

		box = newOutbox(repos.Notifications)
		booking = b
		return box.add(ctx, b.TenantID, domain.NotificationTypeBooking, b.ID, "Booking Approved",
			fmt.Sprintf("Your booking %s for unit %s was approved. Please pay the deposit to secure it", b.BookingCode, apt.UnitNumber))
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.ApproveBooking", err, "bookingID", id)
		return nil, err
	}

	s.dispatch(ctx, box.notes)
	s.record(actor, "approve_booking", "booking", id,
		map[string]any{"status": domain.BookingStatusPending}, map[string]any{"status": booking.Status})
	logger.ExitMethod("bookingService.ApproveBooking", "bookingID", id)
	return booking, nil
}

func (s *bookingService) RejectBooking(ctx context.Context, actor domain.Actor, id int32, reason string) (*domain.Booking, error) {
	if reason == "" {
		reason = "No reason provided"
	}

	var booking *domain.Booking
	var box *outbox
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, apt, err := lockBooking(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.ActionRejectBooking, bookingResource(b, apt)); err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPending {
			return domain.InvalidState("booking is %s, only pending bookings can be rejected", b.Status)
		}

		now := s.now()
		b.Status = domain.BookingStatusRejected
		b.RejectionReason = reason
		b.ApprovedBy = &actor.UserID
		b.ApprovedAt = &now
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}

		box = newOutbox(repos.Notifications)
		booking = b
		return box.add(ctx, b.TenantID, domain.NotificationTypeBooking, b.ID, "Booking Rejected",
			fmt.Sprintf("Your booking %s was rejected: %s", b.BookingCode, reason))
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.RejectBooking", err, "bookingID", id)
		return nil, err
	}

	s.dispatch(ctx, box.notes)
	s.record(actor, "reject_booking", "booking", id,
		map[string]any{"status": domain.BookingStatusPending}, map[string]any{"status": booking.Status, "reason": reason})
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor domain.Actor, id int32) (*domain.Booking, error) {
	var booking *domain.Booking
	var previous domain.BookingStatus
	var box *outbox
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, apt, err := lockBooking(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.ActionCancelBooking, bookingResource(b, apt)); err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
			return domain.InvalidState("booking is %s, only pending or confirmed bookings can be cancelled", b.Status)
		}

		previous = b.Status
		b.Status = domain.BookingStatusCancelled
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}

		recipient, message := apt.OwnerID, fmt.Sprintf("Booking %s for unit %s was cancelled by the tenant", b.BookingCode, apt.UnitNumber)
		if actor.UserID != b.TenantID {
			recipient, message = b.TenantID, fmt.Sprintf("Your booking %s for unit %s was cancelled", b.BookingCode, apt.UnitNumber)
		}
		box = newOutbox(repos.Notifications)
		booking = b
		return box.add(ctx, recipient, domain.NotificationTypeBooking, b.ID, "Booking Cancelled", message)
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.CancelBooking", err, "bookingID", id)
		return nil, err
	}

	s.dispatch(ctx, box.notes)
	s.record(actor, "cancel_booking", "booking", id,
		map[string]any{"status": previous}, map[string]any{"status": booking.Status})
	return booking, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, actor domain.Actor, id int32, in UpdateBookingInput) (*domain.Booking, error) {
	if err := policy.Authorize(actor, policy.ActionUpdateBooking, policy.Resource{}); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	var before map[string]any
	var box *outbox
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, apt, err := lockBooking(ctx, repos, id)
		if err != nil {
			return err
		}
		before = bookingSnapshot(b)
		previous := b.Status

		if in.StartDate != nil {
			b.StartDate = utils.DateOf(*in.StartDate)
		}
		if in.EndDate != nil {
			b.EndDate = utils.DateOf(*in.EndDate)
		}
		datesChanged := in.StartDate != nil || in.EndDate != nil
		if datesChanged {
			if !b.EndDate.After(b.StartDate) {
				return domain.Validation("end date must be after start date")
			}
			months := utils.MonthsBetween(b.StartDate, b.EndDate)
			if err := checkStay(apt, months); err != nil {
				return err
			}
			b.TotalMonths = months
			b.TotalAmount = utils.CalculateBookingTotals(b.MonthlyRent, b.TotalMonths, b.DepositPaid, b.UtilityDeposit, b.AdminFee).TotalAmount
		}

		if in.Status != nil && *in.Status != b.Status {
			next := *in.Status
			if !next.Valid() {
				return domain.Validation("unknown booking status %q", next)
			}
			if next == domain.BookingStatusActive {
				return domain.InvalidState("a booking becomes active only when its deposit is verified")
			}
			if !b.Status.CanTransitionTo(next) {
				return domain.InvalidState("cannot move booking from %s to %s", b.Status, next)
			}
			if next == domain.BookingStatusConfirmed {
				if apt.IsArchived {
					return domain.InvalidState("apartment %s is archived", apt.UnitNumber)
				}
				now := s.now()
				b.ApprovedBy = &actor.UserID
				b.ApprovedAt = &now
			}
			b.Status = next
		}

		if b.Status.Blocking() && (datesChanged || !previous.Blocking()) {
			if err := ensureAvailable(ctx, repos.Bookings, apt.ID, b.StartDate, b.EndDate, b.ID); err != nil {
				return err
			}
		}

		if in.Notes != nil {
			b.Notes = *in.Notes
		}
		if in.ContractStartDate != nil {
			d := utils.DateOf(*in.ContractStartDate)
			b.ContractStartDate = &d
		}
		if in.ContractEndDate != nil {
			d := utils.DateOf(*in.ContractEndDate)
			b.ContractEndDate = &d
		}

		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}
		if previous == domain.BookingStatusActive && b.Status != domain.BookingStatusActive {
			if err := releaseApartment(ctx, repos, apt); err != nil {
				return err
			}
		}

		box = newOutbox(repos.Notifications)
		booking = b
		return box.add(ctx, b.TenantID, domain.NotificationTypeBooking, b.ID, "Booking Updated",
			fmt.Sprintf("Your booking %s was updated by an administrator", b.BookingCode))
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err, "bookingID", id)
		return nil, err
	}

	s.dispatch(ctx, box.notes)
	s.record(actor, "update_booking", "booking", id, before, bookingSnapshot(booking))
	return booking, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, apartmentID int32, start, end time.Time) (bool, error) {
	start, end = utils.DateOf(start), utils.DateOf(end)
	if !end.After(start) {
		return false, domain.Validation("end date must be after start date")
	}
	if _, err := s.Repos.Apartments.GetByID(ctx, apartmentID); err != nil {
		return false, lookupError("apartment", err)
	}
	existing, err := s.Repos.Bookings.ListBlocking(ctx, apartmentID)
	if err != nil {
		return false, err
	}
	return findConflict(existing, start, end, 0) == nil, nil
}

// CompleteEndedBookings moves active bookings whose end date is before asOf to
// completed and frees their apartments. Failures are logged per booking.
func (s *bookingService) CompleteEndedBookings(ctx context.Context, asOf time.Time) (int, error) {
	ended, err := s.Repos.Bookings.ListEndedActive(ctx, utils.DateOf(asOf))
	if err != nil {
		return 0, fmt.Errorf("list ended bookings: %w", err)
	}

	completed := 0
	for _, candidate := range ended {
		var box *outbox
		err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			b, apt, err := lockBooking(ctx, repos, candidate.ID)
			if err != nil {
				return err
			}
			if b.Status != domain.BookingStatusActive {
				return nil
			}
			b.Status = domain.BookingStatusCompleted
			if err := repos.Bookings.Update(ctx, b); err != nil {
				return err
			}
			if err := releaseApartment(ctx, repos, apt); err != nil {
				return err
			}
			box = newOutbox(repos.Notifications)
			return box.add(ctx, b.TenantID, domain.NotificationTypeBooking, b.ID, "Booking Completed",
				fmt.Sprintf("Your booking %s has ended. We would love to hear your review", b.BookingCode))
		})
		if err != nil {
			logger.Error("Failed to complete booking", "bookingID", candidate.ID, "error", err)
			continue
		}
		if box != nil {
			completed++
			s.dispatch(ctx, box.notes)
			s.record(domain.Actor{}, "complete_booking", "booking", candidate.ID,
				map[string]any{"status": domain.BookingStatusActive}, map[string]any{"status": domain.BookingStatusCompleted})
		}
	}
	return completed, nil
}

// lockBooking loads a booking and its apartment, locking both rows.
func lockBooking(ctx context.Context, repos repository.Repositories, id int32) (*domain.Booking, *domain.Apartment, error) {
	b, err := repos.Bookings.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, nil, lookupError("booking", err)
	}
	apt, err := repos.Apartments.GetByIDForUpdate(ctx, b.ApartmentID)
	if err != nil {
		return nil, nil, lookupError("apartment", err)
	}
	return b, apt, nil
}

// releaseApartment marks the apartment available unless another booking keeps it
// occupied. apt must already be locked in this transaction so a concurrent
// deposit settlement cannot mark it occupied between the count and the update.
func releaseApartment(ctx context.Context, repos repository.Repositories, apt *domain.Apartment) error {
	active, err := repos.Bookings.CountActiveByApartment(ctx, apt.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return nil
	}
	if err := repos.Apartments.UpdateAvailability(ctx, apt.ID, domain.AvailabilityAvailable); err != nil {
		return err
	}
	apt.AvailabilityStatus = domain.AvailabilityAvailable
	return nil
}

// checkStay enforces the one month floor and the apartment's minimum stay.
func checkStay(apt *domain.Apartment, months int32) error {
	if months < 1 {
		return domain.Validation("booking must span at least one month")
	}
	if months < apt.MinimumStayMonths {
		return domain.Validation("minimum stay for this apartment is %d months, requested %d", apt.MinimumStayMonths, months)
	}
	return nil
}

func bookingResource(b *domain.Booking, apt *domain.Apartment) policy.Resource {
	return policy.Resource{TenantID: b.TenantID, OwnerID: apt.OwnerID}
}

func bookingSnapshot(b *domain.Booking) map[string]any {
	return map[string]any{
		"status":       b.Status,
		"start_date":   b.StartDate.Format(utils.DateLayout),
		"end_date":     b.EndDate.Format(utils.DateLayout),
		"total_amount": b.TotalAmount.String(),
		"notes":        b.Notes,
	}
}
