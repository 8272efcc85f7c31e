package timesheet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TimeEntryRepository defines the interface for time entry persistence
type TimeEntryRepository interface {
	// FindByIDForTenant finds a time entry by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*TimeEntry, error)

	// FindForTenant lists time entries for a tenant with filtering and pagination.
	// Filters support billable, customer_id, date_from and date_to.
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[TimeEntry], error)

	// FindBillableUninvoiced lists billable entries for a customer that
	// have not yet been placed on an invoice
	FindBillableUninvoiced(ctx context.Context, tenantID, customerID uuid.UUID) ([]TimeEntry, error)

	// SumHours sums tracked hours in a date range
	SumHours(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	// Save creates or updates a time entry
	Save(ctx context.Context, te *TimeEntry) error

	// DeleteForTenant deletes a time entry for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
