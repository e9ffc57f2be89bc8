package service

import (
	"context"
	"strings"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/policy"
	"vidaview-backend/internal/repository"
)

// ProfileUpdate carries the fields a user may change on their own account.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
}

type userService struct {
	Deps
}

func NewUserService(deps Deps) UserService {
	return &userService{Deps: deps}
}

func (s *userService) ListUsers(ctx context.Context, actor domain.Actor, filter domain.UserFilter) ([]domain.User, int32, error) {
	if err := policy.Authorize(actor, policy.ActionManageUsers, policy.Resource{}); err != nil {
		return nil, 0, err
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, domain.Validation("unknown role %q", filter.Role)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.Validation("unknown user status %q", filter.Status)
	}
	filter.Page, filter.PageSize = NormalizePage(filter.Page, filter.PageSize)
	return s.Repos.Users.List(ctx, filter)
}

func (s *userService) GetUser(ctx context.Context, actor domain.Actor, id int32) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.ActionManageUsers, policy.Resource{}); err != nil {
		return nil, err
	}
	user, err := s.Repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", err)
	}
	return user, nil
}

// UpdateUserStatus activates, deactivates or suspends an account. Admins cannot
// change their own status.
func (s *userService) UpdateUserStatus(ctx context.Context, actor domain.Actor, id int32, status domain.UserStatus) (*domain.User, error) {
	logger.EnterMethod("userService.UpdateUserStatus", "actorID", actor.UserID, "userID", id, "status", status)
	if err := policy.Authorize(actor, policy.ActionManageUsers, policy.Resource{}); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.Validation("unknown user status %q", status)
	}
	if id == actor.UserID {
		return nil, domain.Validation("you cannot change your own account status")
	}

	user, err := s.Repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", err)
	}
	previous := user.Status
	if previous == status {
		return user, nil
	}
	user.Status = status
	if err := s.Repos.Users.Update(ctx, user); err != nil {
		logger.ExitMethodWithError("userService.UpdateUserStatus", err, "userID", id)
		return nil, err
	}
	s.record(actor, "update_user_status", "user", id, map[string]any{"status": previous}, map[string]any{"status": status})
	return user, nil
}

// DeleteUser removes an account nothing refers to. Users with bookings must be
// deactivated instead; the foreign keys reject deleting owners of apartments.
func (s *userService) DeleteUser(ctx context.Context, actor domain.Actor, id int32) error {
	if err := policy.Authorize(actor, policy.ActionManageUsers, policy.Resource{}); err != nil {
		return err
	}
	if id == actor.UserID {
		return domain.Validation("you cannot delete your own account")
	}

	var deleted *domain.User
	err := s.UoW.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return lookupError("user", err)
		}
		booked, err := repos.Users.HasBookings(ctx, id)
		if err != nil {
			return err
		}
		if booked {
			return domain.Conflict("user has bookings, deactivate the account instead")
		}
		deleted = user
		return repos.Users.Delete(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("userService.DeleteUser", err, "userID", id)
		return err
	}
	s.record(actor, "delete_user", "user", id, map[string]any{"email": deleted.Email, "role": deleted.Role}, nil)
	return nil
}

func (s *userService) GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	user, err := s.Repos.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor domain.Actor, in ProfileUpdate) (*domain.User, error) {
	user, err := s.Repos.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	before := map[string]any{"full_name": user.FullName, "phone": user.Phone}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, domain.Validation("full name cannot be empty")
		}
		user.FullName = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := s.Repos.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.record(actor, "update_profile", "user", user.ID, before, map[string]any{"full_name": user.FullName, "phone": user.Phone})
	return user, nil
}
