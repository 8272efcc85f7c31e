package company

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
)

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	// FindByIDForTenant finds a company by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Company, error)

	// FindDefaultForTenant finds the tenant's default company
	FindDefaultForTenant(ctx context.Context, tenantID uuid.UUID) (*Company, error)

	// FindForTenant lists companies for a tenant
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Company], error)

	// Save creates or updates a company
	Save(ctx context.Context, c *Company) error

	// SetDefault marks the given company as the tenant default and
	// clears the flag on all siblings atomically
	SetDefault(ctx context.Context, tenantID, id uuid.UUID) error

	// DeleteForTenant deletes a company for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
