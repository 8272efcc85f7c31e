package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/infrastructure/printing"
)

// DocumentFile is a rendered PDF ready for download or attachment
type DocumentFile struct {
	Filename    string
	ContentType string
	Data        []byte
	PageCount   int
}

// PDFService renders invoices and quotes to PDF documents
type PDFService struct {
	invoices  billing.InvoiceRepository
	quotes    billing.QuoteRepository
	companies company.CompanyRepository
	customers partner.CustomerRepository
	engine    *printing.TemplateEngine
	renderer  printing.PDFRenderer
}

// NewPDFService creates a new PDFService
func NewPDFService(
	invoices billing.InvoiceRepository,
	quotes billing.QuoteRepository,
	companies company.CompanyRepository,
	customers partner.CustomerRepository,
	engine *printing.TemplateEngine,
	renderer printing.PDFRenderer,
) *PDFService {
	return &PDFService{
		invoices:  invoices,
		quotes:    quotes,
		companies: companies,
		customers: customers,
		engine:    engine,
		renderer:  renderer,
	}
}

// RenderInvoice renders an invoice to a PDF named Invoice-{number}.pdf
func (s *PDFService) RenderInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*DocumentFile, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	comp, cust, err := s.loadParties(ctx, tenantID, inv.CompanyID, inv.CustomerID)
	if err != nil {
		return nil, err
	}

	html, err := s.engine.Render(printing.TemplateInvoice, printing.BuildInvoiceData(inv, comp, cust))
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:  html,
		Title: fmt.Sprintf("Invoice %s", inv.Number),
	})
	if err != nil {
		return nil, err
	}

	return &DocumentFile{
		Filename:    fmt.Sprintf("Invoice-%s.pdf", inv.Number),
		ContentType: "application/pdf",
		Data:        result.PDFData,
		PageCount:   result.PageCount,
	}, nil
}

// RenderQuote renders a quote to a PDF named Quote-{number}.pdf
func (s *PDFService) RenderQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*DocumentFile, error) {
	q, err := s.quotes.FindByIDForTenant(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}

	comp, cust, err := s.loadParties(ctx, tenantID, q.CompanyID, q.CustomerID)
	if err != nil {
		return nil, err
	}

	html, err := s.engine.Render(printing.TemplateQuote, printing.BuildQuoteData(q, comp, cust))
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:  html,
		Title: fmt.Sprintf("Quote %s", q.Number),
	})
	if err != nil {
		return nil, err
	}

	return &DocumentFile{
		Filename:    fmt.Sprintf("Quote-%s.pdf", q.Number),
		ContentType: "application/pdf",
		Data:        result.PDFData,
		PageCount:   result.PageCount,
	}, nil
}

func (s *PDFService) loadParties(ctx context.Context, tenantID, companyID, customerID uuid.UUID) (*company.Company, *partner.Customer, error) {
	comp, err := s.companies.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, nil, err
	}
	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, nil, err
	}
	return comp, cust, nil
}
