package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[partner.Customer], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[partner.Customer]), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, c *partner.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

var testTenantID = uuid.New()

func newStoredCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	cust, err := partner.NewCustomer(testTenantID, "Initech Ltd", "accounts@initech.test", partner.CustomerTypeOrganization)
	require.NoError(t, err)
	cust.ClearDomainEvents()
	return cust
}

func TestCustomerService_Create(t *testing.T) {
	t.Run("creates an active customer", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		repo.On("FindByEmail", ctx, testTenantID, "ops@hooli.test").Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)

		result, err := service.Create(ctx, testTenantID, CreateCustomerRequest{
			Name:        "Hooli Inc",
			Type:        "organization",
			Email:       "Ops@Hooli.test",
			ContactName: "Jared Dunn",
			City:        "Palo Alto",
			Country:     "US",
		})

		require.NoError(t, err)
		assert.Equal(t, "Hooli Inc", result.Name)
		assert.Equal(t, "organization", result.Type)
		assert.Equal(t, "active", result.Status)
		assert.Equal(t, "ops@hooli.test", result.Email)
		assert.True(t, result.Balance.IsZero())
	})

	t.Run("defaults to individual type", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		repo.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)

		result, err := service.Create(ctx, testTenantID, CreateCustomerRequest{Name: "Jane Doe"})

		require.NoError(t, err)
		assert.Equal(t, "individual", result.Type)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		existing := newStoredCustomer(t)
		repo.On("FindByEmail", ctx, testTenantID, "accounts@initech.test").Return(existing, nil)

		_, err := service.Create(ctx, testTenantID, CreateCustomerRequest{
			Name:  "Initech Duplicate",
			Email: "accounts@initech.test",
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Update(t *testing.T) {
	t.Run("updates only the provided fields", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		cust := newStoredCustomer(t)
		cust.ContactName = "Bill Lumbergh"

		repo.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		repo.On("SaveWithLock", ctx, cust).Return(nil)

		newPhone := "+1 555 0100"
		newCity := "Austin"
		result, err := service.Update(ctx, testTenantID, cust.ID, UpdateCustomerRequest{
			Phone: &newPhone,
			City:  &newCity,
		})

		require.NoError(t, err)
		assert.Equal(t, "Initech Ltd", result.Name)
		assert.Equal(t, "Bill Lumbergh", result.ContactName)
		assert.Equal(t, "+1 555 0100", result.Phone)
		assert.Equal(t, "Austin", result.City)
	})

	t.Run("changing email checks uniqueness", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		cust := newStoredCustomer(t)
		other := newStoredCustomer(t)

		repo.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		repo.On("FindByEmail", ctx, testTenantID, "taken@initech.test").Return(other, nil)

		taken := "taken@initech.test"
		_, err := service.Update(ctx, testTenantID, cust.ID, UpdateCustomerRequest{Email: &taken})

		require.Error(t, err)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("keeping the same email skips the uniqueness check", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		cust := newStoredCustomer(t)

		repo.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		repo.On("SaveWithLock", ctx, cust).Return(nil)

		same := "Accounts@Initech.test"
		_, err := service.Update(ctx, testTenantID, cust.ID, UpdateCustomerRequest{Email: &same})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Archive(t *testing.T) {
	t.Run("archives a settled customer", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		cust := newStoredCustomer(t)

		repo.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		repo.On("SaveWithLock", ctx, cust).Return(nil)

		result, err := service.Archive(ctx, testTenantID, cust.ID)

		require.NoError(t, err)
		assert.Equal(t, "archived", result.Status)
	})

	t.Run("rejects a customer with outstanding balance", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		cust := newStoredCustomer(t)
		require.NoError(t, cust.IncreaseBalance(decimal.NewFromInt(250)))

		repo.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)

		_, err := service.Archive(ctx, testTenantID, cust.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OUTSTANDING_BALANCE", domainErr.Code)
		assert.Equal(t, partner.CustomerStatusActive, cust.Status)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Delete(t *testing.T) {
	t.Run("deletes a settled customer", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		cust := newStoredCustomer(t)

		repo.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		repo.On("DeleteForTenant", ctx, testTenantID, cust.ID).Return(nil)

		err := service.Delete(ctx, testTenantID, cust.ID)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects an outstanding balance", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)
		ctx := context.Background()

		cust := newStoredCustomer(t)
		require.NoError(t, cust.IncreaseBalance(decimal.NewFromInt(100)))

		repo.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)

		err := service.Delete(ctx, testTenantID, cust.ID)

		require.Error(t, err)
		repo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCustomerService_List(t *testing.T) {
	repo := new(MockCustomerRepository)
	service := NewCustomerService(repo)
	ctx := context.Background()

	cust := newStoredCustomer(t)
	page := shared.NewPaginated([]partner.Customer{*cust}, 1, 1, 20)

	status := "active"
	repo.On("FindForTenant", ctx, testTenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "active" && f.Search == "initech"
	})).Return(&page, nil)

	result, err := service.List(ctx, testTenantID, CustomerListFilter{Search: "initech", Status: &status})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Initech Ltd", result.Items[0].Name)
}
