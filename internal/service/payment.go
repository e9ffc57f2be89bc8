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

type CreatePaymentInput struct {
	BookingID   int32
	PaymentType domain.PaymentType
	Amount      decimal.Decimal
	DueDate     *time.Time
	Notes       string
}

type PaymentProofInput struct {
	Method        string
	TransactionID string
	Notes         string
}

const defaultVerificationFailure = "Payment verification failed"

type paymentService struct {
	Deps
	settings BookingSettings
}

func NewPaymentService(deps Deps, settings BookingSettings) PaymentService {
	return &paymentService{Deps: deps, settings: settings}
}

func (s *paymentService) CreatePayment(ctx context.Context, actor domain.Actor, in CreatePaymentInput) (*domain.Payment, error) {
	if err := policy.Authorize(actor, policy.ActionCreatePayment, policy.Resource{}); err != nil {
		return nil, err
	}
	if !in.PaymentType.Valid() {
		return nil, domain.Validation("unknown payment type %q", in.PaymentType)
	}
	if !in.Amount.IsPositive() {
		return nil, domain.Validation("amount must be greater than zero")
	}

	now := s.now()
	var payment *domain.Payment
	var box *outbox
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, in.BookingID)
		if err != nil {
			return lookupError("booking", err)
		}
		if b.Status.IsTerminal() {
			return domain.InvalidState("booking is %s, no new payments can be added", b.Status)
		}

		code, err := uniqueCode(ctx, s.settings.CodeAttempts, func() string { return utils.GeneratePaymentCode(now) }, repos.Payments.ExistsByCode)
		if err != nil {
			return err
		}
		payment = &domain.Payment{
			BookingID:     b.ID,
			PaymentCode:   code,
			PaymentType:   in.PaymentType,
			Amount:        in.Amount,
			PaymentStatus: domain.PaymentStatusPending,
			Notes:         in.Notes,
		}
		if in.DueDate != nil {
			d := utils.DateOf(*in.DueDate)
			payment.DueDate = &d
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		box = newOutbox(repos.Notifications)
		return box.add(ctx, b.TenantID, domain.NotificationTypePayment, payment.ID, "New Payment Due",
			fmt.Sprintf("A %s payment of %s was added to booking %s", payment.PaymentType, payment.Amount.StringFixed(2), b.BookingCode))
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.CreatePayment", err, "bookingID", in.BookingID)
		return nil, err
	}

	s.dispatch(ctx, box.notes)
	s.record(actor, "create_payment", "payment", payment.ID, nil, map[string]any{
		"payment_code": payment.PaymentCode,
		"amount":       payment.Amount.String(),
	})
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, actor domain.Actor, id int32) (*domain.Payment, error) {
	p, err := s.Repos.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("payment", err)
	}
	if _, _, err := s.viewableBooking(ctx, actor, p.BookingID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor domain.Actor, status domain.PaymentStatus, page, pageSize int32) ([]domain.Payment, int32, error) {
	page, pageSize = NormalizePage(page, pageSize)
	filter := domain.PaymentFilter{Status: status, Page: page, PageSize: pageSize}
	switch actor.Role {
	case domain.RoleTenant:
		filter.TenantID = &actor.UserID
	case domain.RoleOwner:
		filter.OwnerID = &actor.UserID
	case domain.RoleAdmin:
	default:
		return nil, 0, domain.Permission("unknown role")
	}
	return s.Repos.Payments.List(ctx, filter)
}

func (s *paymentService) ListPaymentsForBooking(ctx context.Context, actor domain.Actor, bookingID int32) ([]domain.Payment, error) {
	if _, _, err := s.viewableBooking(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	return s.Repos.Payments.ListByBooking(ctx, bookingID)
}

func (s *paymentService) viewableBooking(ctx context.Context, actor domain.Actor, bookingID int32) (*domain.Booking, *domain.Apartment, error) {
	b, err := s.Repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, lookupError("booking", err)
	}
	apt, err := s.Repos.Apartments.GetByID(ctx, b.ApartmentID)
	if err != nil {
		return nil, nil, lookupError("apartment", err)
	}
	if err := policy.Authorize(actor, policy.ActionViewBooking, bookingResource(b, apt)); err != nil {
		return nil, nil, err
	}
	return b, apt, nil
}

// SubmitPaymentProof records how a pending payment was paid. Proof submitted by
// an admin counts as verified immediately; anything else waits in verifying.
func (s *paymentService) SubmitPaymentProof(ctx context.Context, actor domain.Actor, id int32, in PaymentProofInput) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.SubmitPaymentProof", "actorID", actor.UserID, "paymentID", id)
	if in.Method == "" {
		return nil, domain.Validation("payment method is required")
	}

	var payment *domain.Payment
	var box *outbox
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		p, b, apt, err := lockPayment(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.ActionSubmitPayment, bookingResource(b, apt)); err != nil {
			return err
		}
		if p.PaymentStatus != domain.PaymentStatusPending {
			return domain.InvalidState("payment is already %s", p.PaymentStatus)
		}
		if b.Status.IsTerminal() {
			return domain.InvalidState("booking is %s", b.Status)
		}

		now := s.now()
		p.PaymentMethod = in.Method
		p.TransactionID = in.TransactionID
		p.PaymentDate = &now
		if in.Notes != "" {
			p.Notes = in.Notes
		}
		box = newOutbox(repos.Notifications)
		payment = p

		if actor.IsAdmin() {
			return s.settle(ctx, repos, box, actor, p, b, apt, now)
		}

		p.PaymentStatus = domain.PaymentStatusVerifying
		if err := repos.Payments.Update(ctx, p); err != nil {
			return err
		}

		admins, err := repos.Users.ListIDsByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		recipients := append([]int32{apt.OwnerID}, admins...)
		seen := make(map[int32]bool, len(recipients))
		for _, uid := range recipients {
			if seen[uid] {
				continue
			}
			seen[uid] = true
			if err := box.add(ctx, uid, domain.NotificationTypePayment, p.ID, "Payment Verification Needed",
				fmt.Sprintf("Payment %s for booking %s is waiting for verification", p.PaymentCode, b.BookingCode)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.SubmitPaymentProof", err, "paymentID", id)
		return nil, err
	}

	s.dispatch(ctx, box.notes)
	s.record(actor, "submit_payment_proof", "payment", id,
		map[string]any{"payment_status": domain.PaymentStatusPending},
		map[string]any{"payment_status": payment.PaymentStatus, "payment_method": payment.PaymentMethod})
	logger.ExitMethod("paymentService.SubmitPaymentProof", "paymentID", id, "status", payment.PaymentStatus)
	return payment, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, actor domain.Actor, id int32, approved bool, notes string) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.VerifyPayment", "actorID", actor.UserID, "paymentID", id, "approved", approved)

	var payment *domain.Payment
	var previous domain.PaymentStatus
	var box *outbox
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		p, b, apt, err := lockPayment(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.ActionVerifyPayment, bookingResource(b, apt)); err != nil {
			return err
		}
		if p.PaymentStatus.IsTerminal() {
			return domain.InvalidState("payment is already %s", p.PaymentStatus)
		}

		previous = p.PaymentStatus
		now := s.now()
		box = newOutbox(repos.Notifications)
		payment = p

		if approved {
			if notes != "" {
				p.Notes = notes
			}
			return s.settle(ctx, repos, box, actor, p, b, apt, now)
		}

		if notes == "" {
			notes = defaultVerificationFailure
		}
		p.PaymentStatus = domain.PaymentStatusFailed
		p.Notes = notes
		p.VerifiedBy = &actor.UserID
		p.VerifiedAt = &now
		if err := repos.Payments.Update(ctx, p); err != nil {
			return err
		}
		return box.add(ctx, b.TenantID, domain.NotificationTypePayment, p.ID, "Payment Rejected",
			fmt.Sprintf("Payment %s was rejected: %s", p.PaymentCode, notes))
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.VerifyPayment", err, "paymentID", id)
		return nil, err
	}

	s.dispatch(ctx, box.notes)
	s.record(actor, "verify_payment", "payment", id,
		map[string]any{"payment_status": previous}, map[string]any{"payment_status": payment.PaymentStatus})
	logger.ExitMethod("paymentService.VerifyPayment", "paymentID", id, "status", payment.PaymentStatus)
	return payment, nil
}

// settle completes a payment. A completed deposit is the only event that
// activates a booking and marks its apartment occupied.
func (s *paymentService) settle(ctx context.Context, repos repository.Repositories, box *outbox, actor domain.Actor,
	p *domain.Payment, b *domain.Booking, apt *domain.Apartment, now time.Time) error {
	isDeposit := p.PaymentType == domain.PaymentTypeDeposit
	if isDeposit && b.Status != domain.BookingStatusConfirmed {
		if b.Status == domain.BookingStatusPending {
			return domain.InvalidState("booking %s is still pending, approve the booking before settling its deposit", b.BookingCode)
		}
		return domain.InvalidState("booking is %s, a deposit can only settle a confirmed booking", b.Status)
	}

	p.PaymentStatus = domain.PaymentStatusCompleted
	p.VerifiedBy = &actor.UserID
	p.VerifiedAt = &now
	if err := repos.Payments.Update(ctx, p); err != nil {
		return err
	}

	if isDeposit {
		start, end := b.StartDate, b.EndDate
		b.Status = domain.BookingStatusActive
		b.ContractStartDate = &start
		b.ContractEndDate = &end
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}
		if err := repos.Apartments.UpdateAvailability(ctx, apt.ID, domain.AvailabilityOccupied); err != nil {
			return err
		}
		apt.AvailabilityStatus = domain.AvailabilityOccupied
	}

	return box.add(ctx, b.TenantID, domain.NotificationTypePayment, p.ID, "Payment Verified",
		fmt.Sprintf("Payment %s of %s was verified", p.PaymentCode, p.Amount.StringFixed(2)))
}

func (s *paymentService) SendPaymentReminders(ctx context.Context, asOf time.Time) (int, error) {
	dueBefore := utils.DateOf(asOf).AddDate(0, 0, 1)
	reminders, err := s.Repos.Payments.ListDueReminders(ctx, dueBefore)
	if err != nil {
		return 0, fmt.Errorf("list due payments: %w", err)
	}

	var notes []domain.Notification
	for _, r := range reminders {
		relatedID := r.PaymentID
		n := domain.Notification{
			UserID:    r.TenantID,
			Title:     "Payment Reminder",
			Message:   fmt.Sprintf("Payment %s of %s is due on %s", r.PaymentCode, r.Amount.StringFixed(2), r.DueDate.Format(utils.DateLayout)),
			Type:      domain.NotificationTypePayment,
			RelatedID: &relatedID,
		}
		if err := s.Repos.Notifications.Create(ctx, &n); err != nil {
			logger.Error("Failed to create payment reminder", "paymentID", r.PaymentID, "error", err)
			continue
		}
		notes = append(notes, n)
	}
	s.dispatch(ctx, notes)
	return len(notes), nil
}

// lockPayment loads a payment with its booking and apartment, locking all three
// rows in that order.
func lockPayment(ctx context.Context, repos repository.Repositories, id int32) (*domain.Payment, *domain.Booking, *domain.Apartment, error) {
	p, err := repos.Payments.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, nil, nil, lookupError("payment", err)
	}
	b, apt, err := lockBooking(ctx, repos, p.BookingID)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, b, apt, nil
}
