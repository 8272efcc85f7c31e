package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
)

// PaymentService records payments against invoices. The payment row,
// the invoice settlement state and the customer balance are written as
// one atomic unit; a failure anywhere rolls all three back.
type PaymentService struct {
	payments  billing.PaymentRepository
	invoices  billing.InvoiceRepository
	customers partner.CustomerRepository
	sequencer shared.NumberSequencer
	tx        shared.TxRunner
	eventBus  shared.EventBus
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	payments billing.PaymentRepository,
	invoices billing.InvoiceRepository,
	customers partner.CustomerRepository,
	sequencer shared.NumberSequencer,
	tx shared.TxRunner,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		invoices:  invoices,
		customers: customers,
		sequencer: sequencer,
		tx:        tx,
	}
}

// SetEventBus sets the bus domain events are published on after commit
func (s *PaymentService) SetEventBus(bus shared.EventBus) {
	s.eventBus = bus
}

// Record creates a payment and settles it against the invoice.
// Amounts above the invoice's current amount due are rejected before
// anything is written.
func (s *PaymentService) Record(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	var (
		inv     *billing.Invoice
		payment *billing.Payment
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.FindByIDForTenant(ctx, tenantID, req.InvoiceID)
		if err != nil {
			return err
		}

		if err := inv.ApplyPayment(req.Amount); err != nil {
			return err
		}

		number, err := s.sequencer.NextNumber(ctx, tenantID, shared.SeriesPayment, "")
		if err != nil {
			return err
		}

		payment, err = billing.NewPayment(tenantID, number, inv.ID, inv.CustomerID, req.Amount, inv.Currency, billing.PaymentMethod(req.Method), paymentDate, req.Reference)
		if err != nil {
			return err
		}
		payment.Notes = req.Notes

		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}

		cust, err := s.customers.FindByIDForTenant(ctx, tenantID, inv.CustomerID)
		if err != nil {
			return err
		}
		if err := cust.DecreaseBalance(req.Amount); err != nil {
			return err
		}
		return s.customers.SaveWithLock(ctx, cust)
	})
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		events := inv.GetDomainEvents()
		if len(events) > 0 {
			_ = s.eventBus.Publish(ctx, events...)
			inv.ClearDomainEvents()
		}
	}

	return &RecordPaymentResponse{
		Payment: ToPaymentResponse(payment),
		Invoice: InvoiceSettlementState{
			ID:         inv.ID,
			Number:     inv.Number,
			Status:     inv.Status.String(),
			AmountPaid: inv.AmountPaid,
			AmountDue:  inv.AmountDue,
		},
	}, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.payments.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// ListByInvoice retrieves payments recorded against an invoice
func (s *PaymentService) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.payments.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) (*shared.Paginated[PaymentResponse], error) {
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
	if filter.InvoiceID != nil {
		domainFilter.Filters["invoice_id"] = *filter.InvoiceID
	}
	if filter.Method != nil {
		domainFilter.Filters["method"] = *filter.Method
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	page, err := s.payments.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToPaymentResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}
