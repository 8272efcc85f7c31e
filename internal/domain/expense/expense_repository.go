package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	// FindByIDForTenant finds an expense by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseRecord, error)

	// FindForTenant lists expenses for a tenant with filtering and pagination.
	// Filters support category, billable, customer_id, date_from and date_to.
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ExpenseRecord], error)

	// FindBillableUninvoiced lists billable expenses for a customer that
	// have not yet been placed on an invoice
	FindBillableUninvoiced(ctx context.Context, tenantID, customerID uuid.UUID) ([]ExpenseRecord, error)

	// SumByCategory sums expense amounts per category in a date range
	SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[Category]decimal.Decimal, error)

	// Save creates or updates an expense
	Save(ctx context.Context, e *ExpenseRecord) error

	// DeleteForTenant deletes an expense for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
