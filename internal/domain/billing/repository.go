package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByIDForTenant finds an invoice with its lines by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)

	// FindByPublicToken finds an invoice by its public portal token.
	// Unauthenticated lookup - tenant scope comes from the token itself.
	FindByPublicToken(ctx context.Context, token string) (*Invoice, error)

	// FindForTenant lists invoices for a tenant with filtering and pagination
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Invoice], error)

	// FindOverdue lists unpaid invoices whose due date passed before the given time
	FindOverdue(ctx context.Context, tenantID uuid.UUID, before time.Time, filter shared.Filter) (*shared.Paginated[Invoice], error)

	// Save creates or updates an invoice and its lines
	Save(ctx context.Context, inv *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, inv *Invoice) error

	// DeleteForTenant deletes a draft invoice for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountByStatus counts invoices by stored status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status InvoiceStatus) (int64, error)
}

// QuoteRepository defines the interface for quote persistence
type QuoteRepository interface {
	// FindByIDForTenant finds a quote with its lines by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Quote, error)

	// FindForTenant lists quotes for a tenant with filtering and pagination
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Quote], error)

	// Save creates or updates a quote and its lines
	Save(ctx context.Context, q *Quote) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, q *Quote) error

	// DeleteForTenant deletes a draft quote for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// RecurringTemplateRepository defines the interface for recurring template persistence
type RecurringTemplateRepository interface {
	// FindByIDForTenant finds a template with its lines by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RecurringTemplate, error)

	// FindForTenant lists templates for a tenant with filtering and pagination
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[RecurringTemplate], error)

	// FindDue lists active templates due for generation at the given time
	FindDue(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]RecurringTemplate, error)

	// Save creates or updates a template and its lines
	Save(ctx context.Context, t *RecurringTemplate) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, t *RecurringTemplate) error

	// DeleteForTenant deletes a template for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence.
// Payments are append-only; there is no update or delete.
type PaymentRepository interface {
	// FindByIDForTenant finds a payment by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByInvoice lists payments recorded against an invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)

	// FindForTenant lists payments for a tenant with filtering and pagination
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Payment], error)

	// Create inserts a new payment record
	Create(ctx context.Context, p *Payment) error
}
