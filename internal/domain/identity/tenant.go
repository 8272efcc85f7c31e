package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/invoicehub/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

var tenantSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)

// Tenant represents an isolated workspace. Every business record in
// the system hangs off exactly one tenant.
type Tenant struct {
	shared.BaseAggregateRoot
	Slug   string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string       `gorm:"type:varchar(200);not null"`
	Status TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new active tenant
func NewTenant(slug, name string) (*Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !tenantSlugPattern.MatchString(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Tenant slug must be 3-50 lowercase letters, digits or hyphens")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		Name:              name,
		Status:            TenantStatusActive,
	}, nil
}

// Suspend blocks all sign-ins for the tenant. Idempotent.
func (t *Tenant) Suspend() {
	if t.Status == TenantStatusSuspended {
		return
	}
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
}

// Activate restores a suspended tenant
func (t *Tenant) Activate() {
	if t.Status == TenantStatusActive {
		return
	}
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now()
}

// IsActive returns true if the tenant may be used
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
