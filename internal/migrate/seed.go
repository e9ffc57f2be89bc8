package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/repository"
)

// SeedData is the YAML document loaded by the seed command.
type SeedData struct {
	Users      []SeedUser      `yaml:"users"`
	Apartments []SeedApartment `yaml:"apartments"`
}

type SeedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Phone    string `yaml:"phone"`
	Role     string `yaml:"role"`
}

// SeedApartment references its owner by email so seed files stay
// independent of generated ids.
type SeedApartment struct {
	OwnerEmail        string `yaml:"owner_email"`
	UnitNumber        string `yaml:"unit_number"`
	UnitType          string `yaml:"unit_type"`
	Floor             int32  `yaml:"floor"`
	SizeSqm           string `yaml:"size_sqm"`
	Bedrooms          int32  `yaml:"bedrooms"`
	Bathrooms         int32  `yaml:"bathrooms"`
	PricePerMonth     string `yaml:"price_per_month"`
	DepositAmount     string `yaml:"deposit_amount"`
	MinimumStayMonths int32  `yaml:"minimum_stay_months"`
	Description       string `yaml:"description"`
	Furnished         bool   `yaml:"furnished"`
}

type SeedResult struct {
	UsersCreated      int
	UsersSkipped      int
	ApartmentsCreated int
	ApartmentsSkipped int
}

// ParseSeed decodes and checks a seed document.
func ParseSeed(data []byte) (*SeedData, error) {
	var sd SeedData
	if err := yaml.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range sd.Users {
		if u.Email == "" || u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("users[%d]: username, email and password are required", i)
		}
		if !domain.Role(u.Role).Valid() {
			return nil, fmt.Errorf("users[%d]: invalid role %q", i, u.Role)
		}
	}
	for i, a := range sd.Apartments {
		if a.OwnerEmail == "" || a.UnitNumber == "" {
			return nil, fmt.Errorf("apartments[%d]: owner_email and unit_number are required", i)
		}
		if _, err := decimal.NewFromString(a.PricePerMonth); err != nil {
			return nil, fmt.Errorf("apartments[%d]: invalid price_per_month %q", i, a.PricePerMonth)
		}
	}
	return &sd, nil
}

// Seed inserts the users and apartments of sd in one transaction. Users
// with an existing email and apartments with an existing unit number are
// left untouched, so seeding twice is harmless.
func Seed(ctx context.Context, uow repository.UnitOfWork, sd *SeedData, bcryptCost int) (SeedResult, error) {
	var res SeedResult
	err := uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		res = SeedResult{}
		owners := make(map[string]int32)

		for _, su := range sd.Users {
			existing, err := repos.Users.GetByEmail(ctx, su.Email)
			switch {
			case err == nil:
				owners[strings.ToLower(su.Email)] = existing.ID
				res.UsersSkipped++
				continue
			case !errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("look up %s: %w", su.Email, err)
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", su.Email, err)
			}
			user := &domain.User{
				Username:     su.Username,
				Email:        su.Email,
				PasswordHash: string(hash),
				FullName:     su.FullName,
				Phone:        su.Phone,
				Role:         domain.Role(su.Role),
				Status:       domain.UserStatusActive,
			}
			if err := repos.Users.Create(ctx, user); err != nil {
				return fmt.Errorf("create user %s: %w", su.Email, err)
			}
			owners[strings.ToLower(su.Email)] = user.ID
			res.UsersCreated++
			logger.Info("Seeded user", "email", su.Email, "role", su.Role, "id", user.ID)
		}

		for _, sa := range sd.Apartments {
			ownerID, ok := owners[strings.ToLower(sa.OwnerEmail)]
			if !ok {
				owner, err := repos.Users.GetByEmail(ctx, sa.OwnerEmail)
				if err != nil {
					return fmt.Errorf("owner %s of unit %s: %w", sa.OwnerEmail, sa.UnitNumber, err)
				}
				ownerID = owner.ID
			}

			exists, err := unitExists(ctx, repos.Apartments, ownerID, sa.UnitNumber)
			if err != nil {
				return err
			}
			if exists {
				res.ApartmentsSkipped++
				continue
			}

			apt := &domain.Apartment{
				OwnerID:            ownerID,
				UnitNumber:         sa.UnitNumber,
				UnitType:           sa.UnitType,
				Floor:              sa.Floor,
				SizeSqm:            decimalOrZero(sa.SizeSqm),
				Bedrooms:           sa.Bedrooms,
				Bathrooms:          sa.Bathrooms,
				PricePerMonth:      decimalOrZero(sa.PricePerMonth),
				DepositAmount:      decimalOrZero(sa.DepositAmount),
				MinimumStayMonths:  max(sa.MinimumStayMonths, 1),
				Description:        sa.Description,
				Furnished:          sa.Furnished,
				AvailabilityStatus: domain.AvailabilityAvailable,
			}
			if err := repos.Apartments.Create(ctx, apt); err != nil {
				return fmt.Errorf("create unit %s: %w", sa.UnitNumber, err)
			}
			res.ApartmentsCreated++
			logger.Info("Seeded apartment", "unit", sa.UnitNumber, "owner", ownerID, "id", apt.ID)
		}
		return nil
	})
	return res, err
}

func unitExists(ctx context.Context, apts repository.ApartmentRepository, ownerID int32, unit string) (bool, error) {
	found, _, err := apts.List(ctx, domain.ApartmentFilter{
		OwnerID:         &ownerID,
		Search:          unit,
		IncludeArchived: true,
		PageSize:        100,
	})
	if err != nil {
		return false, fmt.Errorf("look up unit %s: %w", unit, err)
	}
	for _, a := range found {
		if strings.EqualFold(a.UnitNumber, unit) {
			return true, nil
		}
	}
	return false, nil
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
