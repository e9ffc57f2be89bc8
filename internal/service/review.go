package service

import (
	"context"
	"fmt"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/policy"
	"vidaview-backend/internal/repository"
)

type reviewService struct {
	Deps
}

func NewReviewService(deps Deps) ReviewService {
	return &reviewService{Deps: deps}
}

func (s *reviewService) CreateReview(ctx context.Context, actor domain.Actor, bookingID, rating int32, text string) (*domain.Review, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, domain.Validation("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	b, err := s.Repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, lookupError("booking", err)
	}
	if err := policy.Authorize(actor, policy.ActionCreateReview, policy.Resource{TenantID: b.TenantID}); err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusCompleted {
		return nil, domain.InvalidState("only completed bookings can be reviewed")
	}
	exists, err := s.Repos.Reviews.ExistsForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("booking has already been reviewed")
	}

	review := &domain.Review{
		ApartmentID: b.ApartmentID,
		TenantID:    b.TenantID,
		BookingID:   b.ID,
		Rating:      rating,
		ReviewText:  text,
	}
	if err := s.Repos.Reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	s.record(actor, "create_review", "review", review.ID, nil, map[string]any{"rating": rating})
	return review, nil
}

// ApproveReview publishes a review and refreshes the apartment's average rating.
func (s *reviewService) ApproveReview(ctx context.Context, actor domain.Actor, id int32) (*domain.Review, error) {
	if err := policy.Authorize(actor, policy.ActionApproveReview, policy.Resource{}); err != nil {
		return nil, err
	}

	var review *domain.Review
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rv, err := repos.Reviews.GetByID(ctx, id)
		if err != nil {
			return lookupError("review", err)
		}
		if rv.IsApproved {
			return domain.InvalidState("review is already approved")
		}
		now := s.now()
		if err := repos.Reviews.Approve(ctx, id, actor.UserID, now); err != nil {
			return err
		}
		if err := repos.Apartments.UpdateRating(ctx, rv.ApartmentID); err != nil {
			return fmt.Errorf("update rating: %w", err)
		}
		rv.IsApproved = true
		rv.ApprovedBy = &actor.UserID
		rv.ApprovedAt = &now
		review = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(actor, "approve_review", "review", id, map[string]any{"is_approved": false}, map[string]any{"is_approved": true})
	return review, nil
}

func (s *reviewService) ListApartmentReviews(ctx context.Context, apartmentID int32) ([]domain.Review, error) {
	return s.Repos.Reviews.ListApprovedByApartment(ctx, apartmentID)
}
