package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/mail"
)

// SendService delivers invoices to customers by email with the
// rendered PDF attached. The draft-to-sent transition commits before
// delivery is attempted, so a failed email never unwinds the status
// change; the response carries the delivery outcome instead.
type SendService struct {
	invoices  billing.InvoiceRepository
	customers partner.CustomerRepository
	companies company.CompanyRepository
	pdf       *PDFService
	mailer    mail.Mailer
	logger    *zap.Logger
}

// NewSendService creates a new SendService
func NewSendService(
	invoices billing.InvoiceRepository,
	customers partner.CustomerRepository,
	companies company.CompanyRepository,
	pdf *PDFService,
	mailer mail.Mailer,
	logger *zap.Logger,
) *SendService {
	return &SendService{
		invoices:  invoices,
		customers: customers,
		companies: companies,
		pdf:       pdf,
		mailer:    mailer,
		logger:    logger,
	}
}

// SendInvoice marks the invoice sent and emails it to the customer
func (s *SendService) SendInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*SendInvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, inv.CustomerID)
	if err != nil {
		return nil, err
	}
	if cust.Email == "" {
		return nil, shared.NewDomainError("NO_RECIPIENT", "Customer has no email address")
	}

	if err := inv.MarkSent(); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}

	response := &SendInvoiceResponse{Invoice: ToInvoiceResponse(inv)}

	comp, err := s.companies.FindByIDForTenant(ctx, tenantID, inv.CompanyID)
	if err != nil {
		response.EmailError = err.Error()
		return response, nil
	}

	doc, err := s.pdf.RenderInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		s.logger.Warn("invoice pdf render failed",
			zap.String("invoice_number", inv.Number),
			zap.Error(err),
		)
		response.EmailError = err.Error()
		return response, nil
	}

	msg := &mail.Message{
		To:      []string{cust.Email},
		Subject: fmt.Sprintf("Invoice %s from %s", inv.Number, comp.Name),
		HTML:    invoiceEmailBody(inv, comp, cust),
		Attachments: []mail.Attachment{
			{
				Filename:    doc.Filename,
				ContentType: doc.ContentType,
				Data:        doc.Data,
			},
		},
	}

	if _, err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("invoice email delivery failed",
			zap.String("invoice_number", inv.Number),
			zap.String("recipient", cust.Email),
			zap.Error(err),
		)
		response.EmailError = err.Error()
		return response, nil
	}

	response.Emailed = true
	return response, nil
}

func invoiceEmailBody(inv *billing.Invoice, comp *company.Company, cust *partner.Customer) string {
	name := cust.ContactName
	if name == "" {
		name = cust.Name
	}
	total := inv.TotalMoney()
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Please find attached invoice <strong>%s</strong> for <strong>%s %s</strong>, due on %s.</p>`,
		name,
		inv.Number,
		total.StringFixed(2),
		total.Currency(),
		inv.DueDate.Format("Jan 2, 2006"),
	)
	if due := inv.AmountDueMoney(); due.Amount().LessThan(inv.Total) {
		body += fmt.Sprintf("\n<p>The outstanding balance is <strong>%s %s</strong>.</p>",
			due.StringFixed(2), due.Currency())
	}
	return body + fmt.Sprintf("\n<p>Thank you,<br>%s</p>", comp.Name)
}
