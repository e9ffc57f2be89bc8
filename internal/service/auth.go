package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
	"vidaview-backend/internal/security"
)

var (
	ErrInvalidCredentials = domain.Validation("invalid email or password")
	ErrInvalidToken       = domain.Permission("invalid token")
	ErrWrongPassword      = domain.Validation("current password is incorrect")
)

const minPasswordLength = 8

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
	Role     domain.Role
}

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	audit    AuditRecorder
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, audit AuditRecorder) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		audit:    audit,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleTenant
	}
	if in.Role != domain.RoleTenant && in.Role != domain.RoleOwner {
		return nil, domain.Validation("role must be tenant or owner")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.Conflict("email is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Phone:        in.Phone,
		Role:         in.Role,
		Status:       domain.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.audit != nil {
		id := user.ID
		s.audit.Record(domain.ActivityLog{UserID: user.ID, Action: "register", EntityType: "user", EntityID: &id})
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", "", domain.Permission("account is %s", user.Status)
	}

	access, refresh, err := s.generateTokens(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refresh, security.TokenTypeRefresh)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	if user.Status != domain.UserStatusActive {
		return "", "", domain.Permission("account is %s", user.Status)
	}
	return s.generateTokens(user)
}

func (s *authService) Me(ctx context.Context, userID int32) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	return user, nil
}

// ChangePassword replaces the stored hash once current matches it. Issued
// tokens stay valid until they expire.
func (s *authService) ChangePassword(ctx context.Context, userID int32, current, next string) error {
	if len(next) < minPasswordLength {
		return domain.Validation("new password must be at least %d characters", minPasswordLength)
	}
	if current == next {
		return domain.Validation("new password must differ from the current one")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return lookupError("user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	if s.audit != nil {
		id := userID
		s.audit.Record(domain.ActivityLog{UserID: userID, Action: "change_password", EntityType: "user", EntityID: &id})
	}
	return nil
}

func (s *authService) generateTokens(user *domain.User) (string, string, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
