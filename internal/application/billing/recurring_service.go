package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
)

// invoiceDispatcher delivers a generated invoice to the customer.
// Satisfied by SendService; optional so generation works without a
// configured mailer.
type invoiceDispatcher interface {
	SendInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*SendInvoiceResponse, error)
}

// RecurringService manages recurring invoice templates and stamps out
// invoices from templates that are due. There is no internal
// scheduler; generation runs when an external caller asks for it.
type RecurringService struct {
	templates  billing.RecurringTemplateRepository
	invoices   billing.InvoiceRepository
	customers  partner.CustomerRepository
	companies  company.CompanyRepository
	sequencer  shared.NumberSequencer
	tx         shared.TxRunner
	dispatcher invoiceDispatcher
	logger     *zap.Logger
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(
	templates billing.RecurringTemplateRepository,
	invoices billing.InvoiceRepository,
	customers partner.CustomerRepository,
	companies company.CompanyRepository,
	sequencer shared.NumberSequencer,
	tx shared.TxRunner,
	logger *zap.Logger,
) *RecurringService {
	return &RecurringService{
		templates: templates,
		invoices:  invoices,
		customers: customers,
		companies: companies,
		sequencer: sequencer,
		tx:        tx,
		logger:    logger,
	}
}

// SetDispatcher sets the delivery collaborator used for auto-send
// templates
func (s *RecurringService) SetDispatcher(d invoiceDispatcher) {
	s.dispatcher = d
}

// Create creates a new recurring template
func (s *RecurringService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRecurringTemplateRequest) (*RecurringTemplateResponse, error) {
	comp, err := s.resolveCompany(ctx, tenantID, req.CompanyID)
	if err != nil {
		return nil, err
	}

	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !cust.IsActive() {
		return nil, shared.NewDomainError("CUSTOMER_ARCHIVED", "Cannot bill an archived customer")
	}

	currency := comp.Currency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}

	tmpl, err := billing.NewRecurringTemplate(tenantID, comp.ID, cust.ID, req.Name, billing.Frequency(req.Frequency), req.StartDate, req.EndDate, currency)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		item, err := tmpl.AddLine(line.Description, line.Quantity, line.UnitPrice, line.TaxPercent)
		if err != nil {
			return nil, err
		}
		if line.ProductID != nil {
			item.SetProduct(*line.ProductID)
		}
	}
	if req.Discount != nil {
		if err := tmpl.SetDiscount(*toDiscount(req.Discount)); err != nil {
			return nil, err
		}
	}
	if req.PaymentTermDays != nil {
		if err := tmpl.SetPaymentTermDays(*req.PaymentTermDays); err != nil {
			return nil, err
		}
	} else {
		if err := tmpl.SetPaymentTermDays(comp.PaymentTermDays); err != nil {
			return nil, err
		}
	}
	tmpl.SetAutoSend(req.AutoSend)
	tmpl.SetNotes(req.Notes, req.Terms)

	if err := s.templates.Save(ctx, tmpl); err != nil {
		return nil, err
	}

	response := ToRecurringTemplateResponse(tmpl)
	return &response, nil
}

// GetByID retrieves a recurring template by ID
func (s *RecurringService) GetByID(ctx context.Context, tenantID, templateID uuid.UUID) (*RecurringTemplateResponse, error) {
	tmpl, err := s.templates.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	response := ToRecurringTemplateResponse(tmpl)
	return &response, nil
}

// List retrieves recurring templates with filtering and pagination
func (s *RecurringService) List(ctx context.Context, tenantID uuid.UUID, filter RecurringTemplateListFilter) (*shared.Paginated[RecurringTemplateResponse], error) {
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
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}
	if filter.Frequency != nil {
		domainFilter.Filters["frequency"] = *filter.Frequency
	}

	page, err := s.templates.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToRecurringTemplateResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Activate re-enables a deactivated template
func (s *RecurringService) Activate(ctx context.Context, tenantID, templateID uuid.UUID) (*RecurringTemplateResponse, error) {
	return s.setActive(ctx, tenantID, templateID, true)
}

// Deactivate stops a template from generating
func (s *RecurringService) Deactivate(ctx context.Context, tenantID, templateID uuid.UUID) (*RecurringTemplateResponse, error) {
	return s.setActive(ctx, tenantID, templateID, false)
}

// Delete removes a recurring template. Invoices it generated stand.
func (s *RecurringService) Delete(ctx context.Context, tenantID, templateID uuid.UUID) error {
	return s.templates.DeleteForTenant(ctx, tenantID, templateID)
}

// Generate stamps out an invoice from a single template on demand.
// A template that is not yet due, expired or inactive is rejected with
// the matching domain error; expiry also deactivates the template.
func (s *RecurringService) Generate(ctx context.Context, tenantID, templateID uuid.UUID) (*GeneratedInvoiceResult, error) {
	result, autoSend, err := s.generateOne(ctx, tenantID, templateID, time.Now())
	if err != nil {
		return nil, err
	}

	if autoSend {
		s.autoSend(ctx, tenantID, result)
	}
	return result, nil
}

// generateOne runs the guard and generation for one template inside a
// transaction. A guard rejection rolls the transaction back, so the
// one-shot deactivation of an expired template is persisted separately
// afterwards.
func (s *RecurringService) generateOne(ctx context.Context, tenantID, templateID uuid.UUID, now time.Time) (*GeneratedInvoiceResult, bool, error) {
	var (
		result   *GeneratedInvoiceResult
		autoSend bool
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		tmpl, err := s.templates.FindByIDForTenant(ctx, tenantID, templateID)
		if err != nil {
			return err
		}

		if guardErr := tmpl.EnsureGeneratable(now); guardErr != nil {
			return guardErr
		}

		result, err = s.generateFrom(ctx, tenantID, tmpl, now)
		autoSend = tmpl.AutoSend
		return err
	})
	if errors.Is(err, shared.ErrTemplateExpired) {
		s.deactivateExpired(ctx, tenantID, templateID)
	}
	return result, autoSend, err
}

// deactivateExpired stops an expired template outside the generation
// transaction. Best effort: the caller already surfaces
// ErrTemplateExpired, and a second Generate call retries the
// deactivation if this one fails.
func (s *RecurringService) deactivateExpired(ctx context.Context, tenantID, templateID uuid.UUID) {
	tmpl, err := s.templates.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		s.logger.Warn("load expired template for deactivation",
			zap.String("template_id", templateID.String()),
			zap.Error(err),
		)
		return
	}

	tmpl.Deactivate()
	if err := s.templates.SaveWithLock(ctx, tmpl); err != nil {
		s.logger.Warn("deactivate expired template",
			zap.String("template_id", templateID.String()),
			zap.Error(err),
		)
	}
}

// GenerateDue stamps out invoices from every template due at the time
// of the call. Each template runs in its own transaction; one failing
// template does not stop the run.
func (s *RecurringService) GenerateDue(ctx context.Context, tenantID uuid.UUID) (*GenerateRunResponse, error) {
	now := time.Now()

	due, err := s.templates.FindDue(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	run := &GenerateRunResponse{
		Generated: make([]GeneratedInvoiceResult, 0, len(due)),
		Skipped:   make([]SkippedTemplateResult, 0),
	}

	for i := range due {
		templateID := due[i].ID
		templateName := due[i].Name

		result, autoSend, err := s.generateOne(ctx, tenantID, templateID, now)
		if err != nil {
			run.Skipped = append(run.Skipped, SkippedTemplateResult{
				TemplateID:   templateID,
				TemplateName: templateName,
				Reason:       skipReason(err),
			})
			continue
		}

		if autoSend {
			s.autoSend(ctx, tenantID, result)
		}
		run.Generated = append(run.Generated, *result)
	}

	return run, nil
}

// generateFrom creates the invoice, raises the customer balance and
// advances the template schedule. Must run inside a transaction.
func (s *RecurringService) generateFrom(ctx context.Context, tenantID uuid.UUID, tmpl *billing.RecurringTemplate, now time.Time) (*GeneratedInvoiceResult, error) {
	comp, err := s.companies.FindByIDForTenant(ctx, tenantID, tmpl.CompanyID)
	if err != nil {
		return nil, err
	}

	number, err := s.sequencer.NextNumber(ctx, tenantID, shared.SeriesInvoice, comp.PrefixFor(shared.SeriesInvoice))
	if err != nil {
		return nil, err
	}

	dueDate := now.AddDate(0, 0, tmpl.PaymentTermDays)
	inv, err := billing.NewInvoice(tenantID, tmpl.CompanyID, tmpl.CustomerID, number, now, dueDate, tmpl.Currency)
	if err != nil {
		return nil, err
	}

	if err := inv.CopyLinesFrom(tmpl.Items); err != nil {
		return nil, err
	}
	if discount := tmpl.DiscountSpec(); discount != nil {
		if err := inv.SetDiscount(*discount); err != nil {
			return nil, err
		}
	}
	inv.SetNotes(tmpl.Notes, tmpl.Terms)
	inv.RecurringTemplateID = &tmpl.ID

	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}

	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, tmpl.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := cust.IncreaseBalance(inv.Total); err != nil {
		return nil, err
	}
	if err := s.customers.SaveWithLock(ctx, cust); err != nil {
		return nil, err
	}

	tmpl.AdvanceSchedule(now)
	if err := s.templates.SaveWithLock(ctx, tmpl); err != nil {
		return nil, err
	}

	return &GeneratedInvoiceResult{
		TemplateID:    tmpl.ID,
		TemplateName:  tmpl.Name,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		Total:         inv.Total,
	}, nil
}

// autoSend delivers the generated invoice when the template asks for
// it. Delivery failure never unwinds the committed generation.
func (s *RecurringService) autoSend(ctx context.Context, tenantID uuid.UUID, result *GeneratedInvoiceResult) {
	if result == nil || s.dispatcher == nil {
		return
	}

	sent, err := s.dispatcher.SendInvoice(ctx, tenantID, result.InvoiceID)
	if err != nil {
		s.logger.Warn("auto-send failed",
			zap.String("invoice_number", result.InvoiceNumber),
			zap.Error(err),
		)
		return
	}
	result.Emailed = sent.Emailed
}

func (s *RecurringService) setActive(ctx context.Context, tenantID, templateID uuid.UUID, active bool) (*RecurringTemplateResponse, error) {
	tmpl, err := s.templates.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	if active {
		tmpl.Activate()
	} else {
		tmpl.Deactivate()
	}
	if err := s.templates.SaveWithLock(ctx, tmpl); err != nil {
		return nil, err
	}
	response := ToRecurringTemplateResponse(tmpl)
	return &response, nil
}

func (s *RecurringService) resolveCompany(ctx context.Context, tenantID uuid.UUID, companyID *uuid.UUID) (*company.Company, error) {
	if companyID != nil {
		return s.companies.FindByIDForTenant(ctx, tenantID, *companyID)
	}
	return s.companies.FindDefaultForTenant(ctx, tenantID)
}

// skipReason maps a generation error to a machine-readable reason
func skipReason(err error) string {
	switch {
	case errors.Is(err, shared.ErrNotYetDue):
		return "not_yet_due"
	case errors.Is(err, shared.ErrTemplateExpired):
		return "expired"
	case errors.Is(err, shared.ErrTemplateInactive):
		return "inactive"
	default:
		return "error: " + err.Error()
	}
}
