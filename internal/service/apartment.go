package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/policy"
	"vidaview-backend/internal/repository"
)

// ApartmentUpdate carries the editable listing fields. Availability is not
// among them; it only changes through bookings and payments.
type ApartmentUpdate struct {
	UnitType          *string
	Floor             *int32
	SizeSqm           *decimal.Decimal
	Bedrooms          *int32
	Bathrooms         *int32
	PricePerMonth     *decimal.Decimal
	DepositAmount     *decimal.Decimal
	MinimumStayMonths *int32
	Description       *string
	Furnished         *bool
}

type apartmentService struct {
	Deps
}

func NewApartmentService(deps Deps) ApartmentService {
	return &apartmentService{Deps: deps}
}

func (s *apartmentService) CreateApartment(ctx context.Context, actor domain.Actor, apt *domain.Apartment) error {
	if actor.Role == domain.RoleOwner {
		apt.OwnerID = actor.UserID
	}
	if err := policy.Authorize(actor, policy.ActionCreateApartment, policy.Resource{OwnerID: apt.OwnerID}); err != nil {
		return err
	}
	if actor.IsAdmin() {
		if apt.OwnerID == 0 {
			return domain.Validation("owner_id is required")
		}
		owner, err := s.Repos.Users.GetByID(ctx, apt.OwnerID)
		if err != nil {
			return lookupError("owner", err)
		}
		if owner.Role != domain.RoleOwner {
			return domain.Validation("user %d is not an owner", apt.OwnerID)
		}
	}

	apt.UnitNumber = strings.TrimSpace(apt.UnitNumber)
	if apt.MinimumStayMonths == 0 {
		apt.MinimumStayMonths = 1
	}
	if err := validateApartment(apt); err != nil {
		return err
	}
	apt.AvailabilityStatus = domain.AvailabilityAvailable
	apt.IsArchived = false

	if err := s.Repos.Apartments.Create(ctx, apt); err != nil {
		logger.ExitMethodWithError("apartmentService.CreateApartment", err, "unit", apt.UnitNumber)
		return err
	}
	s.record(actor, "create_apartment", "apartment", apt.ID, nil, map[string]any{"unit_number": apt.UnitNumber})
	return nil
}

func (s *apartmentService) UpdateApartment(ctx context.Context, actor domain.Actor, id int32, in ApartmentUpdate) (*domain.Apartment, error) {
	var apt *domain.Apartment
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		a, err := repos.Apartments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError("apartment", err)
		}
		if err := policy.Authorize(actor, policy.ActionUpdateApartment, policy.Resource{OwnerID: a.OwnerID}); err != nil {
			return err
		}

		if in.UnitType != nil {
			a.UnitType = *in.UnitType
		}
		if in.Floor != nil {
			a.Floor = *in.Floor
		}
		if in.SizeSqm != nil {
			a.SizeSqm = *in.SizeSqm
		}
		if in.Bedrooms != nil {
			a.Bedrooms = *in.Bedrooms
		}
		if in.Bathrooms != nil {
			a.Bathrooms = *in.Bathrooms
		}
		if in.PricePerMonth != nil {
			a.PricePerMonth = *in.PricePerMonth
		}
		if in.DepositAmount != nil {
			a.DepositAmount = *in.DepositAmount
		}
		if in.MinimumStayMonths != nil {
			a.MinimumStayMonths = *in.MinimumStayMonths
		}
		if in.Description != nil {
			a.Description = *in.Description
		}
		if in.Furnished != nil {
			a.Furnished = *in.Furnished
		}
		if err := validateApartment(a); err != nil {
			return err
		}
		apt = a
		return repos.Apartments.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.record(actor, "update_apartment", "apartment", id, nil, map[string]any{"price_per_month": apt.PricePerMonth.String()})
	return apt, nil
}

// GetApartment hides archived units from everyone except their owner, admins
// and tenants that have booked them.
func (s *apartmentService) GetApartment(ctx context.Context, actor domain.Actor, id int32) (*domain.Apartment, error) {
	apt, err := s.Repos.Apartments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("apartment", err)
	}

	if apt.IsArchived {
		visible, err := s.canSeeArchived(ctx, actor, apt)
		if err != nil {
			return nil, err
		}
		if !visible {
			return nil, domain.NotFound("apartment")
		}
	}

	if actor.UserID != apt.OwnerID {
		if err := s.Repos.Apartments.IncrementViews(ctx, id); err != nil {
			logger.Warn("Failed to count apartment view", "apartmentID", id, "error", err)
		}
	}
	return apt, nil
}

func (s *apartmentService) canSeeArchived(ctx context.Context, actor domain.Actor, apt *domain.Apartment) (bool, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return true, nil
	case domain.RoleOwner:
		return apt.OwnerID == actor.UserID, nil
	case domain.RoleTenant:
		return s.Repos.Apartments.HasTenantBooking(ctx, apt.ID, actor.UserID)
	}
	return false, nil
}

func (s *apartmentService) ListApartments(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, int32, error) {
	filter.IncludeArchived = false
	filter.Page, filter.PageSize = NormalizePage(filter.Page, filter.PageSize)
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, 0, domain.Validation("min_price cannot exceed max_price")
	}
	return s.Repos.Apartments.List(ctx, filter)
}

func (s *apartmentService) ListMyApartments(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Apartment, int32, error) {
	if actor.Role != domain.RoleOwner {
		return nil, 0, domain.Permission("only owners have their own apartments")
	}
	page, pageSize = NormalizePage(page, pageSize)
	return s.Repos.Apartments.List(ctx, domain.ApartmentFilter{
		OwnerID:         &actor.UserID,
		IncludeArchived: true,
		Page:            page,
		PageSize:        pageSize,
	})
}

func (s *apartmentService) ArchiveApartment(ctx context.Context, actor domain.Actor, id int32) error {
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		apt, err := repos.Apartments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError("apartment", err)
		}
		if err := policy.Authorize(actor, policy.ActionArchiveApartment, policy.Resource{OwnerID: apt.OwnerID}); err != nil {
			return err
		}
		if apt.IsArchived {
			return domain.InvalidState("apartment is already archived")
		}
		busy, err := repos.Apartments.HasBookingsInStatus(ctx, id, domain.BlockingBookingStatuses)
		if err != nil {
			return err
		}
		if busy {
			return domain.Conflict("apartment has confirmed or active bookings")
		}
		return repos.Apartments.Archive(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(actor, "archive_apartment", "apartment", id, map[string]any{"is_archived": false}, map[string]any{"is_archived": true})
	return nil
}

func (s *apartmentService) DeleteApartment(ctx context.Context, actor domain.Actor, id int32) error {
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		apt, err := repos.Apartments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError("apartment", err)
		}
		if err := policy.Authorize(actor, policy.ActionDeleteApartment, policy.Resource{OwnerID: apt.OwnerID}); err != nil {
			return err
		}
		referenced, err := repos.Apartments.HasAnyBooking(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return domain.Conflict("apartment has bookings, archive it instead")
		}
		return repos.Apartments.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(actor, "delete_apartment", "apartment", id, nil, nil)
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new state.
func (s *apartmentService) ToggleFavorite(ctx context.Context, actor domain.Actor, apartmentID int32) (bool, error) {
	if _, err := s.Repos.Apartments.GetByID(ctx, apartmentID); err != nil {
		return false, lookupError("apartment", err)
	}
	fav, err := s.Repos.Apartments.IsFavorite(ctx, actor.UserID, apartmentID)
	if err != nil {
		return false, err
	}
	if fav {
		return false, s.Repos.Apartments.RemoveFavorite(ctx, actor.UserID, apartmentID)
	}
	return true, s.Repos.Apartments.AddFavorite(ctx, actor.UserID, apartmentID)
}

func (s *apartmentService) ListFavorites(ctx context.Context, actor domain.Actor) ([]domain.Apartment, error) {
	return s.Repos.Apartments.ListFavorites(ctx, actor.UserID)
}

func validateApartment(apt *domain.Apartment) error {
	switch {
	case apt.UnitNumber == "":
		return domain.Validation("unit number is required")
	case !apt.PricePerMonth.IsPositive():
		return domain.Validation("price per month must be greater than zero")
	case apt.DepositAmount.IsNegative():
		return domain.Validation("deposit amount cannot be negative")
	case apt.MinimumStayMonths < 1:
		return domain.Validation("minimum stay must be at least one month")
	}
	return nil
}
