package service

import (
	"context"
	"strings"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/policy"
	"vidaview-backend/internal/repository"
)

type FacilityUpdate struct {
	Name        *string
	Description *string
	Icon        *string
	Category    *string
	Status      *domain.FacilityStatus
}

type facilityService struct {
	Deps
}

func NewFacilityService(deps Deps) FacilityService {
	return &facilityService{Deps: deps}
}

// ListFacilities defaults to active facilities; pass a status to see others.
func (s *facilityService) ListFacilities(ctx context.Context, filter domain.FacilityFilter) ([]domain.Facility, error) {
	if filter.Status == "" {
		filter.Status = domain.FacilityStatusActive
	}
	if !filter.Status.Valid() {
		return nil, domain.Validation("unknown facility status %q", filter.Status)
	}
	return s.Repos.Facilities.List(ctx, filter)
}

func (s *facilityService) CreateFacility(ctx context.Context, actor domain.Actor, f *domain.Facility) error {
	if err := policy.Authorize(actor, policy.ActionManageFacilities, policy.Resource{}); err != nil {
		return err
	}
	f.Name = strings.TrimSpace(f.Name)
	if f.Category == "" {
		f.Category = domain.DefaultFacilityCategory
	}
	if f.Status == "" {
		f.Status = domain.FacilityStatusActive
	}
	if err := validateFacility(f); err != nil {
		return err
	}
	if err := s.Repos.Facilities.Create(ctx, f); err != nil {
		logger.ExitMethodWithError("facilityService.CreateFacility", err, "name", f.Name)
		return err
	}
	s.record(actor, "create_facility", "facility", f.ID, nil, map[string]any{"name": f.Name, "category": f.Category})
	return nil
}

func (s *facilityService) UpdateFacility(ctx context.Context, actor domain.Actor, id int32, in FacilityUpdate) (*domain.Facility, error) {
	if err := policy.Authorize(actor, policy.ActionManageFacilities, policy.Resource{}); err != nil {
		return nil, err
	}
	f, err := s.Repos.Facilities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("facility", err)
	}
	before := map[string]any{"name": f.Name, "status": f.Status}
	if in.Name != nil {
		f.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		f.Description = *in.Description
	}
	if in.Icon != nil {
		f.Icon = *in.Icon
	}
	if in.Category != nil {
		f.Category = *in.Category
	}
	if in.Status != nil {
		f.Status = *in.Status
	}
	if err := validateFacility(f); err != nil {
		return nil, err
	}
	if err := s.Repos.Facilities.Update(ctx, f); err != nil {
		return nil, lookupError("facility", err)
	}
	s.record(actor, "update_facility", "facility", id, before, map[string]any{"name": f.Name, "status": f.Status})
	return f, nil
}

func (s *facilityService) DeleteFacility(ctx context.Context, actor domain.Actor, id int32) error {
	if err := policy.Authorize(actor, policy.ActionManageFacilities, policy.Resource{}); err != nil {
		return err
	}
	if err := s.Repos.Facilities.Delete(ctx, id); err != nil {
		return lookupError("facility", err)
	}
	s.record(actor, "delete_facility", "facility", id, nil, nil)
	return nil
}

func (s *facilityService) ListApartmentFacilities(ctx context.Context, apartmentID int32) ([]domain.Facility, error) {
	if _, err := s.Repos.Apartments.GetByID(ctx, apartmentID); err != nil {
		return nil, lookupError("apartment", err)
	}
	return s.Repos.Facilities.ListByApartment(ctx, apartmentID)
}

// SetApartmentFacilities replaces the apartment's facilities with the given
// active facilities. Duplicate ids are ignored.
func (s *facilityService) SetApartmentFacilities(ctx context.Context, actor domain.Actor, apartmentID int32, facilityIDs []int32) ([]domain.Facility, error) {
	logger.EnterMethod("facilityService.SetApartmentFacilities", "actorID", actor.UserID, "apartmentID", apartmentID, "count", len(facilityIDs))
	var result []domain.Facility
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		apt, err := repos.Apartments.GetByIDForUpdate(ctx, apartmentID)
		if err != nil {
			return lookupError("apartment", err)
		}
		if err := policy.Authorize(actor, policy.ActionUpdateApartment, policy.Resource{OwnerID: apt.OwnerID}); err != nil {
			return err
		}

		seen := make(map[int32]bool, len(facilityIDs))
		ids := make([]int32, 0, len(facilityIDs))
		for _, id := range facilityIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			f, err := repos.Facilities.GetByID(ctx, id)
			if err != nil {
				return lookupError("facility", err)
			}
			if f.Status != domain.FacilityStatusActive {
				return domain.Validation("facility %q is inactive", f.Name)
			}
			ids = append(ids, id)
		}
		if err := repos.Facilities.SetForApartment(ctx, apartmentID, ids); err != nil {
			return err
		}
		result, err = repos.Facilities.ListByApartment(ctx, apartmentID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("facilityService.SetApartmentFacilities", err, "apartmentID", apartmentID)
		return nil, err
	}
	s.record(actor, "set_apartment_facilities", "apartment", apartmentID, nil, map[string]any{"facility_ids": facilityIDs})
	return result, nil
}

func validateFacility(f *domain.Facility) error {
	if f.Name == "" {
		return domain.Validation("facility name is required")
	}
	if len(f.Name) > 100 {
		return domain.Validation("facility name must be at most 100 characters")
	}
	if !f.Status.Valid() {
		return domain.Validation("unknown facility status %q", f.Status)
	}
	return nil
}
