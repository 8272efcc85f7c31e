package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByIDForTenant finds a user by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email across tenants.
	// Emails are globally unique so sign-in can resolve the tenant.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindForTenant lists users for a tenant
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[User], error)

	// Save creates or updates a user
	Save(ctx context.Context, u *User) error

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindBySlug finds a tenant by its slug
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)

	// FindActiveIDs lists the IDs of all active tenants
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, t *Tenant) error

	// ExistsBySlug checks if a slug is already taken
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}
