package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/identity"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/infrastructure/config"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[identity.User], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[identity.User]), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindBySlug(ctx context.Context, slug string) (*identity.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, t *identity.Tenant) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockCompanyRepository is a mock implementation of company.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindDefaultForTenant(ctx context.Context, tenantID uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[company.Company], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[company.Company]), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) SetDefault(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCompanyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type authServiceMocks struct {
	users     *MockUserRepository
	tenants   *MockTenantRepository
	companies *MockCompanyRepository
	jwt       *auth.JWTService
}

func newAuthService() (*AuthService, *authServiceMocks) {
	m := &authServiceMocks{
		users:     new(MockUserRepository),
		tenants:   new(MockTenantRepository),
		companies: new(MockCompanyRepository),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-for-auth-service",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 720 * time.Hour,
			Issuer:                 "invoicehub-test",
		}),
	}
	svc := NewAuthService(m.users, m.tenants, m.companies, m.jwt, passthroughTxRunner{}, zap.NewNop())
	return svc, m
}

func newStoredUser(t *testing.T, password string) (*identity.Tenant, *identity.User) {
	t.Helper()
	tenant, err := identity.NewTenant("northwind", "Northwind Traders")
	require.NoError(t, err)
	user, err := identity.NewUser(tenant.ID, "owner@northwind.test", password, "Mette Olsen", identity.UserRoleOwner)
	require.NoError(t, err)
	return tenant, user
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates tenant, owner and default company", func(t *testing.T) {
		svc, m := newAuthService()

		m.users.On("ExistsByEmail", ctx, "Founder@Acme.test").Return(false, nil)
		m.tenants.On("ExistsBySlug", ctx, "acme-studio").Return(false, nil)

		var savedTenant *identity.Tenant
		m.tenants.On("Save", ctx, mock.AnythingOfType("*identity.Tenant")).
			Run(func(args mock.Arguments) { savedTenant = args.Get(1).(*identity.Tenant) }).
			Return(nil)
		var savedUser *identity.User
		m.users.On("Save", ctx, mock.AnythingOfType("*identity.User")).
			Run(func(args mock.Arguments) { savedUser = args.Get(1).(*identity.User) }).
			Return(nil)
		var savedCompany *company.Company
		m.companies.On("Save", ctx, mock.AnythingOfType("*company.Company")).
			Run(func(args mock.Arguments) { savedCompany = args.Get(1).(*company.Company) }).
			Return(nil)
		m.companies.On("SetDefault", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("uuid.UUID")).Return(nil)

		resp, err := svc.Signup(ctx, SignupRequest{
			TenantName:  "Acme Studio",
			TenantSlug:  "acme-studio",
			Email:       "Founder@Acme.test",
			Password:    "correct horse battery",
			DisplayName: "Sam Founder",
			CompanyName: "Acme Studio LLC",
			Currency:    "EUR",
		})

		require.NoError(t, err)
		require.NotNil(t, savedTenant)
		require.NotNil(t, savedUser)
		require.NotNil(t, savedCompany)

		assert.Equal(t, "acme-studio", savedTenant.Slug)
		assert.Equal(t, "founder@acme.test", savedUser.Email)
		assert.Equal(t, identity.UserRoleOwner, savedUser.Role)
		assert.Equal(t, savedTenant.ID, savedUser.TenantID)
		assert.Equal(t, "Acme Studio LLC", savedCompany.Name)
		assert.Equal(t, "EUR", string(savedCompany.Currency))
		assert.Equal(t, savedTenant.ID, savedCompany.TenantID)
		m.companies.AssertCalled(t, "SetDefault", ctx, savedTenant.ID, savedCompany.ID)

		assert.Equal(t, "founder@acme.test", resp.User.Email)
		assert.Equal(t, "acme-studio", resp.Tenant.Slug)
		require.NotNil(t, resp.Tokens)
		claims, err := m.jwt.ValidateAccessToken(resp.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, savedUser.ID.String(), claims.UserID)
		assert.Equal(t, "owner", claims.Role)
	})

	t.Run("company name falls back to tenant name", func(t *testing.T) {
		svc, m := newAuthService()

		m.users.On("ExistsByEmail", ctx, mock.Anything).Return(false, nil)
		m.tenants.On("ExistsBySlug", ctx, mock.Anything).Return(false, nil)
		m.tenants.On("Save", ctx, mock.Anything).Return(nil)
		m.users.On("Save", ctx, mock.Anything).Return(nil)
		var savedCompany *company.Company
		m.companies.On("Save", ctx, mock.AnythingOfType("*company.Company")).
			Run(func(args mock.Arguments) { savedCompany = args.Get(1).(*company.Company) }).
			Return(nil)
		m.companies.On("SetDefault", ctx, mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Signup(ctx, SignupRequest{
			TenantName: "Globex Corp",
			TenantSlug: "globex",
			Email:      "ceo@globex.test",
			Password:   "hunter2hunter2",
		})

		require.NoError(t, err)
		require.NotNil(t, savedCompany)
		assert.Equal(t, "Globex Corp", savedCompany.Name)
		assert.Equal(t, "USD", string(savedCompany.Currency))
	})

	t.Run("rejects registered email", func(t *testing.T) {
		svc, m := newAuthService()

		m.users.On("ExistsByEmail", ctx, "taken@acme.test").Return(true, nil)

		_, err := svc.Signup(ctx, SignupRequest{
			TenantName: "Acme",
			TenantSlug: "acme",
			Email:      "taken@acme.test",
			Password:   "correct horse battery",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		m.tenants.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects taken slug", func(t *testing.T) {
		svc, m := newAuthService()

		m.users.On("ExistsByEmail", ctx, mock.Anything).Return(false, nil)
		m.tenants.On("ExistsBySlug", ctx, "acme").Return(true, nil)

		_, err := svc.Signup(ctx, SignupRequest{
			TenantName: "Acme",
			TenantSlug: "acme",
			Email:      "founder@acme.test",
			Password:   "correct horse battery",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		m.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues tokens and stamps last login", func(t *testing.T) {
		svc, m := newAuthService()
		tenant, user := newStoredUser(t, "correct horse battery")

		m.users.On("FindByEmail", ctx, "owner@northwind.test").Return(user, nil)
		m.tenants.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		m.users.On("Save", ctx, user).Return(nil)

		resp, err := svc.Login(ctx, LoginRequest{
			Email:    "owner@northwind.test",
			Password: "correct horse battery",
		})

		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
		require.NotNil(t, resp.Tokens)
		claims, err := m.jwt.ValidateAccessToken(resp.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID.String(), claims.TenantID)
		assert.Equal(t, user.Email, claims.Email)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		svc, m := newAuthService()
		_, user := newStoredUser(t, "correct horse battery")

		m.users.On("FindByEmail", ctx, "owner@northwind.test").Return(user, nil)

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "owner@northwind.test",
			Password: "wrong password",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		m.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown email reads like wrong password", func(t *testing.T) {
		svc, m := newAuthService()

		m.users.On("FindByEmail", ctx, "nobody@northwind.test").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "nobody@northwind.test",
			Password: "whatever else",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("rejects deactivated user", func(t *testing.T) {
		svc, m := newAuthService()
		_, user := newStoredUser(t, "correct horse battery")
		user.Deactivate()

		m.users.On("FindByEmail", ctx, "owner@northwind.test").Return(user, nil)

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "owner@northwind.test",
			Password: "correct horse battery",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})

	t.Run("rejects suspended tenant", func(t *testing.T) {
		svc, m := newAuthService()
		tenant, user := newStoredUser(t, "correct horse battery")
		tenant.Suspend()

		m.users.On("FindByEmail", ctx, "owner@northwind.test").Return(user, nil)
		m.tenants.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "owner@northwind.test",
			Password: "correct horse battery",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TENANT_SUSPENDED", domainErr.Code)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("exchanges a refresh token for a new pair", func(t *testing.T) {
		svc, m := newAuthService()
		tenant, user := newStoredUser(t, "correct horse battery")

		pair, err := m.jwt.GenerateTokenPair(auth.GenerateTokenInput{
			TenantID: tenant.ID,
			UserID:   user.ID,
			Email:    user.Email,
			Role:     string(user.Role),
		})
		require.NoError(t, err)

		m.users.On("FindByIDForTenant", ctx, tenant.ID, user.ID).Return(user, nil)
		m.tenants.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

		resp, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})

		require.NoError(t, err)
		require.NotNil(t, resp.Tokens)
		claims, err := m.jwt.ValidateAccessToken(resp.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		svc, m := newAuthService()
		tenant, user := newStoredUser(t, "correct horse battery")

		pair, err := m.jwt.GenerateTokenPair(auth.GenerateTokenInput{
			TenantID: tenant.ID,
			UserID:   user.ID,
			Email:    user.Email,
			Role:     string(user.Role),
		})
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.AccessToken})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TOKEN", domainErr.Code)
		m.users.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a deactivated user", func(t *testing.T) {
		svc, m := newAuthService()
		tenant, user := newStoredUser(t, "correct horse battery")
		user.Deactivate()

		pair, err := m.jwt.GenerateTokenPair(auth.GenerateTokenInput{
			TenantID: tenant.ID,
			UserID:   user.ID,
			Email:    user.Email,
			Role:     string(user.Role),
		})
		require.NoError(t, err)

		m.users.On("FindByIDForTenant", ctx, tenant.ID, user.ID).Return(user, nil)

		_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the password", func(t *testing.T) {
		svc, m := newAuthService()
		tenant, user := newStoredUser(t, "correct horse battery")

		m.users.On("FindByIDForTenant", ctx, tenant.ID, user.ID).Return(user, nil)
		m.users.On("Save", ctx, user).Return(nil)

		err := svc.ChangePassword(ctx, tenant.ID, user.ID, ChangePasswordRequest{
			CurrentPassword: "correct horse battery",
			NewPassword:     "staple gun rodeo",
		})

		require.NoError(t, err)
		assert.True(t, user.CheckPassword("staple gun rodeo"))
		assert.False(t, user.CheckPassword("correct horse battery"))
	})

	t.Run("rejects wrong current password", func(t *testing.T) {
		svc, m := newAuthService()
		tenant, user := newStoredUser(t, "correct horse battery")

		m.users.On("FindByIDForTenant", ctx, tenant.ID, user.ID).Return(user, nil)

		err := svc.ChangePassword(ctx, tenant.ID, user.ID, ChangePasswordRequest{
			CurrentPassword: "not the password",
			NewPassword:     "staple gun rodeo",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		m.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	svc, m := newAuthService()
	tenant, user := newStoredUser(t, "correct horse battery")

	m.users.On("FindByIDForTenant", ctx, tenant.ID, user.ID).Return(user, nil)
	m.tenants.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

	resp, err := svc.Me(ctx, tenant.ID, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.Email, resp.User.Email)
	assert.Equal(t, tenant.Slug, resp.Tenant.Slug)
	assert.Nil(t, resp.Tokens)
}
