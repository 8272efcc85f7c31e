package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
)

// InvoiceService handles invoice business operations.
// Every mutation that moves money runs inside a single transaction so
// the invoice, its lines and the customer balance stay consistent.
type InvoiceService struct {
	invoices  billing.InvoiceRepository
	customers partner.CustomerRepository
	companies company.CompanyRepository
	sequencer shared.NumberSequencer
	tx        shared.TxRunner
	eventBus  shared.EventBus
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices billing.InvoiceRepository,
	customers partner.CustomerRepository,
	companies company.CompanyRepository,
	sequencer shared.NumberSequencer,
	tx shared.TxRunner,
) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		customers: customers,
		companies: companies,
		sequencer: sequencer,
		tx:        tx,
	}
}

// SetEventBus sets the bus domain events are published on after commit
func (s *InvoiceService) SetEventBus(bus shared.EventBus) {
	s.eventBus = bus
}

// Create creates a new draft invoice with a freshly sequenced number
// and raises the customer's outstanding balance by its total
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	comp, err := s.resolveCompany(ctx, tenantID, req.CompanyID)
	if err != nil {
		return nil, err
	}

	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !cust.IsActive() {
		return nil, shared.NewDomainError("CUSTOMER_ARCHIVED", "Cannot invoice an archived customer")
	}

	currency := comp.Currency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	dueDate := issueDate.AddDate(0, 0, comp.PaymentTermDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	var inv *billing.Invoice
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		number, err := s.sequencer.NextNumber(ctx, tenantID, shared.SeriesInvoice, comp.PrefixFor(shared.SeriesInvoice))
		if err != nil {
			return err
		}

		inv, err = billing.NewInvoice(tenantID, comp.ID, cust.ID, number, issueDate, dueDate, currency)
		if err != nil {
			return err
		}

		if err := applyInvoiceLines(inv, req.Lines); err != nil {
			return err
		}
		if req.Discount != nil {
			if err := inv.SetDiscount(*toDiscount(req.Discount)); err != nil {
				return err
			}
		}

		notes, terms := req.Notes, req.Terms
		if notes == "" {
			notes = comp.DefaultNotes
		}
		if terms == "" {
			terms = comp.DefaultTerms
		}
		inv.SetNotes(notes, terms)

		if err := s.invoices.Save(ctx, inv); err != nil {
			return err
		}

		if err := cust.IncreaseBalance(inv.Total); err != nil {
			return err
		}
		return s.customers.SaveWithLock(ctx, cust)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, &inv.BaseAggregateRoot)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByNumber retrieves an invoice by its document number
func (s *InvoiceService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.CompanyID != nil {
		domainFilter.Filters["company_id"] = *filter.CompanyID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	page, err := s.invoices.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToInvoiceListItemResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Update updates a draft invoice. The customer balance is adjusted by
// the total delta in the same transaction.
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft invoices can be modified")
	}

	oldTotal := inv.Total

	if req.IssueDate != nil || req.DueDate != nil {
		issueDate := inv.IssueDate
		if req.IssueDate != nil {
			issueDate = *req.IssueDate
		}
		dueDate := inv.DueDate
		if req.DueDate != nil {
			dueDate = *req.DueDate
		}
		if err := inv.Reschedule(issueDate, dueDate); err != nil {
			return nil, err
		}
	}

	if req.Lines != nil {
		existing := make([]uuid.UUID, len(inv.Items))
		for i, item := range inv.Items {
			existing[i] = item.ID
		}
		for _, id := range existing {
			if err := inv.RemoveLine(id); err != nil {
				return nil, err
			}
		}
		if err := applyInvoiceLines(inv, *req.Lines); err != nil {
			return nil, err
		}
	}

	if req.Discount != nil {
		if err := inv.SetDiscount(*toDiscount(req.Discount)); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil || req.Terms != nil {
		notes, terms := inv.Notes, inv.Terms
		if req.Notes != nil {
			notes = *req.Notes
		}
		if req.Terms != nil {
			terms = *req.Terms
		}
		inv.SetNotes(notes, terms)
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		return s.adjustCustomerBalance(ctx, tenantID, inv.CustomerID, inv.Total.Sub(oldTotal))
	})
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Delete deletes a draft invoice and releases its balance contribution
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	if !inv.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be deleted; void instead")
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.invoices.DeleteForTenant(ctx, tenantID, invoiceID); err != nil {
			return err
		}
		return s.adjustCustomerBalance(ctx, tenantID, inv.CustomerID, inv.Total.Neg())
	})
}

// Void cancels an invoice that has no recorded payments and releases
// its remaining balance contribution
func (s *InvoiceService) Void(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	released := inv.AmountDue

	if err := inv.Void(); err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		return s.adjustCustomerBalance(ctx, tenantID, inv.CustomerID, released.Neg())
	})
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// ListOverdue retrieves unpaid invoices past their due date
func (s *InvoiceService) ListOverdue(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	page, err := s.invoices.FindOverdue(ctx, tenantID, time.Now(), domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToInvoiceListItemResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// resolveCompany loads the requested company, falling back to the
// tenant's default company
func (s *InvoiceService) resolveCompany(ctx context.Context, tenantID uuid.UUID, companyID *uuid.UUID) (*company.Company, error) {
	if companyID != nil {
		return s.companies.FindByIDForTenant(ctx, tenantID, *companyID)
	}
	return s.companies.FindDefaultForTenant(ctx, tenantID)
}

// adjustCustomerBalance applies a signed balance delta to the customer
func (s *InvoiceService) adjustCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if delta.IsNegative() {
		if err := cust.DecreaseBalance(delta.Neg()); err != nil {
			return err
		}
	} else {
		if err := cust.IncreaseBalance(delta); err != nil {
			return err
		}
	}
	return s.customers.SaveWithLock(ctx, cust)
}

func (s *InvoiceService) publishEvents(ctx context.Context, agg *shared.BaseAggregateRoot) {
	if s.eventBus == nil {
		return
	}
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
	agg.ClearDomainEvents()
}

// applyInvoiceLines adds request lines to the invoice in order
func applyInvoiceLines(inv *billing.Invoice, lines []LineItemInput) error {
	for _, line := range lines {
		item, err := inv.AddLine(line.Description, line.Quantity, line.UnitPrice, line.TaxPercent)
		if err != nil {
			return err
		}
		if line.ProductID != nil {
			item.SetProduct(*line.ProductID)
		}
	}
	return nil
}
