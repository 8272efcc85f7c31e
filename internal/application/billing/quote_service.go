package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
)

// QuoteService handles quote business operations, including the
// once-only conversion of an accepted quote into a draft invoice.
type QuoteService struct {
	quotes    billing.QuoteRepository
	invoices  billing.InvoiceRepository
	customers partner.CustomerRepository
	companies company.CompanyRepository
	sequencer shared.NumberSequencer
	tx        shared.TxRunner
	eventBus  shared.EventBus
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quotes billing.QuoteRepository,
	invoices billing.InvoiceRepository,
	customers partner.CustomerRepository,
	companies company.CompanyRepository,
	sequencer shared.NumberSequencer,
	tx shared.TxRunner,
) *QuoteService {
	return &QuoteService{
		quotes:    quotes,
		invoices:  invoices,
		customers: customers,
		companies: companies,
		sequencer: sequencer,
		tx:        tx,
	}
}

// SetEventBus sets the bus domain events are published on after commit
func (s *QuoteService) SetEventBus(bus shared.EventBus) {
	s.eventBus = bus
}

// Create creates a new draft quote with a freshly sequenced number
func (s *QuoteService) Create(ctx context.Context, tenantID uuid.UUID, req CreateQuoteRequest) (*QuoteResponse, error) {
	comp, err := s.resolveCompany(ctx, tenantID, req.CompanyID)
	if err != nil {
		return nil, err
	}

	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !cust.IsActive() {
		return nil, shared.NewDomainError("CUSTOMER_ARCHIVED", "Cannot quote an archived customer")
	}

	currency := comp.Currency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	var q *billing.Quote
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		number, err := s.sequencer.NextNumber(ctx, tenantID, shared.SeriesQuote, comp.PrefixFor(shared.SeriesQuote))
		if err != nil {
			return err
		}

		q, err = billing.NewQuote(tenantID, comp.ID, cust.ID, number, issueDate, req.ValidUntil, currency)
		if err != nil {
			return err
		}

		for _, line := range req.Lines {
			item, err := q.AddLine(line.Description, line.Quantity, line.UnitPrice, line.TaxPercent)
			if err != nil {
				return err
			}
			if line.ProductID != nil {
				item.SetProduct(*line.ProductID)
			}
		}
		if req.Discount != nil {
			if err := q.SetDiscount(*toDiscount(req.Discount)); err != nil {
				return err
			}
		}
		q.SetNotes(req.Notes, req.Terms)

		return s.quotes.Save(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, q)

	response := ToQuoteResponse(q)
	return &response, nil
}

// GetByID retrieves a quote by ID
func (s *QuoteService) GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteResponse, error) {
	q, err := s.quotes.FindByIDForTenant(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(q)
	return &response, nil
}

// List retrieves quotes with filtering and pagination
func (s *QuoteService) List(ctx context.Context, tenantID uuid.UUID, filter QuoteListFilter) (*shared.Paginated[QuoteResponse], error) {
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
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}

	page, err := s.quotes.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToQuoteResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// MarkSent transitions a quote from draft to sent
func (s *QuoteService) MarkSent(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteResponse, error) {
	q, err := s.quotes.FindByIDForTenant(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := q.MarkSent(); err != nil {
		return nil, err
	}
	if err := s.quotes.SaveWithLock(ctx, q); err != nil {
		return nil, err
	}
	response := ToQuoteResponse(q)
	return &response, nil
}

// Decline marks a quote as declined
func (s *QuoteService) Decline(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteResponse, error) {
	q, err := s.quotes.FindByIDForTenant(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := q.Decline(); err != nil {
		return nil, err
	}
	if err := s.quotes.SaveWithLock(ctx, q); err != nil {
		return nil, err
	}
	response := ToQuoteResponse(q)
	return &response, nil
}

// Delete deletes a draft quote
func (s *QuoteService) Delete(ctx context.Context, tenantID, quoteID uuid.UUID) error {
	q, err := s.quotes.FindByIDForTenant(ctx, tenantID, quoteID)
	if err != nil {
		return err
	}
	if !q.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Only draft quotes can be deleted")
	}
	return s.quotes.DeleteForTenant(ctx, tenantID, quoteID)
}

// Convert produces a draft invoice from the quote exactly once.
// The invoice gets a freshly sequenced number, copies the quote's
// lines and discount, and raises the customer balance by its total.
// A second call fails with an already-converted error and writes
// nothing.
func (s *QuoteService) Convert(ctx context.Context, tenantID, quoteID uuid.UUID) (*ConvertQuoteResponse, error) {
	var inv *billing.Invoice
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		q, err := s.quotes.FindByIDForTenant(ctx, tenantID, quoteID)
		if err != nil {
			return err
		}
		if q.IsConverted() {
			return shared.ErrAlreadyConverted
		}

		comp, err := s.companies.FindByIDForTenant(ctx, tenantID, q.CompanyID)
		if err != nil {
			return err
		}

		number, err := s.sequencer.NextNumber(ctx, tenantID, shared.SeriesInvoice, comp.PrefixFor(shared.SeriesInvoice))
		if err != nil {
			return err
		}

		issueDate := time.Now()
		dueDate := issueDate.AddDate(0, 0, comp.PaymentTermDays)
		inv, err = billing.NewInvoice(tenantID, q.CompanyID, q.CustomerID, number, issueDate, dueDate, q.Currency)
		if err != nil {
			return err
		}

		if err := inv.CopyLinesFrom(q.Items); err != nil {
			return err
		}
		if discount := q.DiscountSpec(); discount != nil {
			if err := inv.SetDiscount(*discount); err != nil {
				return err
			}
		}
		inv.SetNotes(q.Notes, q.Terms)
		inv.SourceQuoteID = &q.ID

		if err := s.invoices.Save(ctx, inv); err != nil {
			return err
		}

		if err := q.MarkConverted(inv.ID); err != nil {
			return err
		}
		if err := s.quotes.SaveWithLock(ctx, q); err != nil {
			return err
		}

		cust, err := s.customers.FindByIDForTenant(ctx, tenantID, q.CustomerID)
		if err != nil {
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

	return &ConvertQuoteResponse{
		Invoice: ConvertedInvoiceRef{
			ID:     inv.ID,
			Number: inv.Number,
			Total:  inv.Total,
		},
	}, nil
}

func (s *QuoteService) resolveCompany(ctx context.Context, tenantID uuid.UUID, companyID *uuid.UUID) (*company.Company, error) {
	if companyID != nil {
		return s.companies.FindByIDForTenant(ctx, tenantID, *companyID)
	}
	return s.companies.FindDefaultForTenant(ctx, tenantID)
}

func (s *QuoteService) publishEvents(ctx context.Context, q *billing.Quote) {
	if s.eventBus == nil {
		return
	}
	events := q.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
	q.ClearDomainEvents()
}
