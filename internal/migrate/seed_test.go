package migrate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
)

const seedYAML = `
users:
  - username: admin
    email: admin@vidaview.test
    password: admin-pass
    full_name: Site Admin
    role: admin
  - username: owner1
    email: owner1@vidaview.test
    password: owner-pass
    full_name: First Owner
    role: owner
apartments:
  - owner_email: OWNER1@vidaview.test
    unit_number: A-101
    unit_type: studio
    size_sqm: "32.5"
    price_per_month: "3500000"
    deposit_amount: "3500000"
    minimum_stay_months: 3
    furnished: true
`

// The embedded interfaces are nil; seeding only touches the methods below.
type fakeUsers struct {
	repository.UserRepository
	byEmail map[string]*domain.User
	nextID  int32
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for k, u := range f.byEmail {
		if strings.EqualFold(k, email) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.nextID++
	u.ID = f.nextID
	f.byEmail[u.Email] = u
	return nil
}

type fakeApartments struct {
	repository.ApartmentRepository
	units []domain.Apartment
}

func (f *fakeApartments) List(_ context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, int32, error) {
	var out []domain.Apartment
	for _, a := range f.units {
		if filter.OwnerID == nil || a.OwnerID == *filter.OwnerID {
			out = append(out, a)
		}
	}
	return out, int32(len(out)), nil
}

func (f *fakeApartments) Create(_ context.Context, a *domain.Apartment) error {
	a.ID = int32(len(f.units) + 1)
	f.units = append(f.units, *a)
	return nil
}

type fakeUoW struct {
	repos repository.Repositories
}

func (f fakeUoW) WithinTx(ctx context.Context, fn func(context.Context, repository.Repositories) error) error {
	return fn(ctx, f.repos)
}

func TestParseSeed(t *testing.T) {
	sd, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	assert.Len(t, sd.Users, 2)
	require.Len(t, sd.Apartments, 1)
	assert.Equal(t, "3500000", sd.Apartments[0].PricePerMonth)
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad role", "users:\n  - {username: x, email: x@y.z, password: p, role: landlord}"},
		{"missing email", "users:\n  - {username: x, password: p, role: tenant}"},
		{"bad price", "apartments:\n  - {owner_email: a@b.c, unit_number: A-1, price_per_month: cheap}"},
		{"not yaml", "users: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	sd, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	users := &fakeUsers{byEmail: map[string]*domain.User{}}
	apts := &fakeApartments{}
	uow := fakeUoW{repos: repository.Repositories{Users: users, Apartments: apts}}

	res, err := Seed(context.Background(), uow, sd, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{UsersCreated: 2, ApartmentsCreated: 1}, res)

	owner := users.byEmail["owner1@vidaview.test"]
	require.NotNil(t, owner)
	assert.Equal(t, domain.RoleOwner, owner.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte("owner-pass")))

	require.Len(t, apts.units, 1)
	apt := apts.units[0]
	assert.Equal(t, owner.ID, apt.OwnerID)
	assert.Equal(t, "3500000", apt.PricePerMonth.String())
	assert.Equal(t, int32(3), apt.MinimumStayMonths)
	assert.Equal(t, domain.AvailabilityAvailable, apt.AvailabilityStatus)

	res, err = Seed(context.Background(), uow, sd, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{UsersSkipped: 2, ApartmentsSkipped: 1}, res)
	assert.Len(t, apts.units, 1)
}

func TestSeed_UnknownOwner(t *testing.T) {
	sd := &SeedData{Apartments: []SeedApartment{{OwnerEmail: "ghost@vidaview.test", UnitNumber: "B-1", PricePerMonth: "1"}}}
	uow := fakeUoW{repos: repository.Repositories{
		Users:      &fakeUsers{byEmail: map[string]*domain.User{}},
		Apartments: &fakeApartments{},
	}}

	_, err := Seed(context.Background(), uow, sd, bcrypt.MinCost)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
