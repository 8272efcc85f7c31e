package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/invoicehub/backend/internal/domain/catalog"
	"github.com/invoicehub/backend/internal/domain/shared"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[catalog.Product], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[catalog.Product]), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var testTenantID = uuid.New()

func newStoredProduct(t *testing.T) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(testTenantID, "Consulting hour", catalog.ProductTypeService, decimal.NewFromInt(150), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, product.Update("Consulting hour", "Senior engineer time", "CONS-HR", "hour"))
	return product
}

func TestProductService_Create(t *testing.T) {
	t.Run("creates an active product", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo)
		ctx := context.Background()

		repo.On("FindBySKU", ctx, testTenantID, "DEV-DAY").Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		result, err := service.Create(ctx, testTenantID, CreateProductRequest{
			Name:       "Development day",
			SKU:        "dev-day",
			Type:       "service",
			Unit:       "day",
			UnitPrice:  decimal.NewFromInt(1200),
			TaxPercent: decimal.NewFromInt(20),
		})

		require.NoError(t, err)
		assert.Equal(t, "Development day", result.Name)
		assert.Equal(t, "DEV-DAY", result.SKU)
		assert.Equal(t, "day", result.Unit)
		assert.True(t, result.Active)
		assert.True(t, result.UnitPrice.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("rejects duplicate sku", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo)
		ctx := context.Background()

		existing := newStoredProduct(t)
		repo.On("FindBySKU", ctx, testTenantID, "CONS-HR").Return(existing, nil)

		_, err := service.Create(ctx, testTenantID, CreateProductRequest{
			Name: "Another consulting hour",
			SKU:  "cons-hr",
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo)
		ctx := context.Background()

		_, err := service.Create(ctx, testTenantID, CreateProductRequest{
			Name:      "Broken",
			UnitPrice: decimal.NewFromInt(-5),
		})

		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_Update(t *testing.T) {
	t.Run("updates pricing without touching details", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo)
		ctx := context.Background()

		product := newStoredProduct(t)

		repo.On("FindByIDForTenant", ctx, testTenantID, product.ID).Return(product, nil)
		repo.On("Save", ctx, product).Return(nil)

		newPrice := decimal.NewFromInt(175)
		result, err := service.Update(ctx, testTenantID, product.ID, UpdateProductRequest{UnitPrice: &newPrice})

		require.NoError(t, err)
		assert.Equal(t, "Consulting hour", result.Name)
		assert.True(t, result.UnitPrice.Equal(decimal.NewFromInt(175)))
		assert.True(t, result.TaxPercent.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects out-of-range tax percent", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo)
		ctx := context.Background()

		product := newStoredProduct(t)

		repo.On("FindByIDForTenant", ctx, testTenantID, product.ID).Return(product, nil)

		badTax := decimal.NewFromInt(120)
		_, err := service.Update(ctx, testTenantID, product.ID, UpdateProductRequest{TaxPercent: &badTax})

		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_Deactivate(t *testing.T) {
	repo := new(MockProductRepository)
	service := NewProductService(repo)
	ctx := context.Background()

	product := newStoredProduct(t)

	repo.On("FindByIDForTenant", ctx, testTenantID, product.ID).Return(product, nil)
	repo.On("Save", ctx, product).Return(nil)

	result, err := service.Deactivate(ctx, testTenantID, product.ID)

	require.NoError(t, err)
	assert.False(t, result.Active)
}

func TestProductService_List(t *testing.T) {
	repo := new(MockProductRepository)
	service := NewProductService(repo)
	ctx := context.Background()

	product := newStoredProduct(t)
	page := shared.NewPaginated([]catalog.Product{*product}, 1, 1, 20)

	active := true
	repo.On("FindForTenant", ctx, testTenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["active"] == true && f.Filters["type"] == "service"
	})).Return(&page, nil)

	serviceType := "service"
	result, err := service.List(ctx, testTenantID, ProductListFilter{Type: &serviceType, Active: &active})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "CONS-HR", result.Items[0].SKU)
}
