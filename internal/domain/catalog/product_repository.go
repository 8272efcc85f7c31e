package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByIDForTenant finds a product by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by SKU for a tenant
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)

	// FindForTenant lists products for a tenant with filtering and pagination
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Product], error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// DeleteForTenant deletes a product for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
