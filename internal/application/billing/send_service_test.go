package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/mail"
	"github.com/invoicehub/backend/internal/infrastructure/printing"
)

type fakeRenderer struct {
	fail error
}

func (r *fakeRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 stub"), PageCount: 1}, nil
}

func (r *fakeRenderer) Close() error { return nil }

type failingMailer struct {
	err error
}

func (m failingMailer) Send(_ context.Context, _ *mail.Message) (string, error) {
	return "", m.err
}

func newSendService(t *testing.T, invoices *MockInvoiceRepository, customers *MockCustomerRepository, companies *MockCompanyRepository, renderer printing.PDFRenderer, mailer mail.Mailer) *SendService {
	t.Helper()
	engine, err := printing.NewTemplateEngine()
	require.NoError(t, err)
	pdf := NewPDFService(invoices, new(MockQuoteRepository), companies, customers, engine, renderer)
	return NewSendService(invoices, customers, companies, pdf, mailer, zap.NewNop())
}

func TestSendService_SendInvoice(t *testing.T) {
	t.Run("marks sent and emails the pdf", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		companies := new(MockCompanyRepository)
		mailer := mail.NewStubMailer()
		service := newSendService(t, invoices, customers, companies, &fakeRenderer{}, mailer)
		ctx := context.Background()

		comp := newTestCompany(t)
		cust := newTestCustomer(t)
		inv := newDraftInvoice(t, comp, cust)

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)
		customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		companies.On("FindByIDForTenant", ctx, testTenantID, comp.ID).Return(comp, nil)
		invoices.On("SaveWithLock", ctx, inv).Return(nil)

		result, err := service.SendInvoice(ctx, testTenantID, inv.ID)

		require.NoError(t, err)
		assert.True(t, result.Emailed)
		assert.Empty(t, result.EmailError)
		assert.Equal(t, "sent", result.Invoice.Status)
		assert.Equal(t, billing.InvoiceStatusSent, inv.Status)

		sent := mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"billing@globex.test"}, sent[0].To)
		assert.Equal(t, fmt.Sprintf("Invoice %s from %s", inv.Number, comp.Name), sent[0].Subject)
		require.Len(t, sent[0].Attachments, 1)
		assert.Equal(t, "Invoice-INV-00042.pdf", sent[0].Attachments[0].Filename)
		assert.Equal(t, "application/pdf", sent[0].Attachments[0].ContentType)
	})

	t.Run("delivery failure keeps the sent status", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		companies := new(MockCompanyRepository)
		mailer := failingMailer{err: errors.New("smtp connection refused")}
		service := newSendService(t, invoices, customers, companies, &fakeRenderer{}, mailer)
		ctx := context.Background()

		comp := newTestCompany(t)
		cust := newTestCustomer(t)
		inv := newDraftInvoice(t, comp, cust)

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)
		customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		companies.On("FindByIDForTenant", ctx, testTenantID, comp.ID).Return(comp, nil)
		invoices.On("SaveWithLock", ctx, inv).Return(nil)

		result, err := service.SendInvoice(ctx, testTenantID, inv.ID)

		require.NoError(t, err)
		assert.False(t, result.Emailed)
		assert.Contains(t, result.EmailError, "smtp connection refused")
		assert.Equal(t, billing.InvoiceStatusSent, inv.Status)
		invoices.AssertCalled(t, "SaveWithLock", ctx, inv)
	})

	t.Run("render failure reports the error without unsending", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		companies := new(MockCompanyRepository)
		mailer := mail.NewStubMailer()
		renderer := &fakeRenderer{fail: printing.NewRenderError(printing.ErrCodeRenderFailed, "chrome crashed", nil)}
		service := newSendService(t, invoices, customers, companies, renderer, mailer)
		ctx := context.Background()

		comp := newTestCompany(t)
		cust := newTestCustomer(t)
		inv := newDraftInvoice(t, comp, cust)

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)
		customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		companies.On("FindByIDForTenant", ctx, testTenantID, comp.ID).Return(comp, nil)
		invoices.On("SaveWithLock", ctx, inv).Return(nil)

		result, err := service.SendInvoice(ctx, testTenantID, inv.ID)

		require.NoError(t, err)
		assert.False(t, result.Emailed)
		assert.Contains(t, result.EmailError, "chrome crashed")
		assert.Equal(t, billing.InvoiceStatusSent, inv.Status)
		assert.Empty(t, mailer.Sent())
	})

	t.Run("customer without email is rejected before any change", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		companies := new(MockCompanyRepository)
		service := newSendService(t, invoices, customers, companies, &fakeRenderer{}, mail.NewStubMailer())
		ctx := context.Background()

		comp := newTestCompany(t)
		cust := newTestCustomer(t)
		cust.Email = ""
		inv := newDraftInvoice(t, comp, cust)

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)
		customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)

		_, err := service.SendInvoice(ctx, testTenantID, inv.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_RECIPIENT", domainErr.Code)
		assert.Equal(t, billing.InvoiceStatusDraft, inv.Status)
		invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("resending a sent invoice is idempotent", func(t *testing.T) {
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		companies := new(MockCompanyRepository)
		mailer := mail.NewStubMailer()
		service := newSendService(t, invoices, customers, companies, &fakeRenderer{}, mailer)
		ctx := context.Background()

		comp := newTestCompany(t)
		cust := newTestCustomer(t)
		inv := newDraftInvoice(t, comp, cust)
		require.NoError(t, inv.MarkSent())
		firstSentAt := inv.SentAt

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)
		customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		companies.On("FindByIDForTenant", ctx, testTenantID, comp.ID).Return(comp, nil)
		invoices.On("SaveWithLock", ctx, inv).Return(nil)

		result, err := service.SendInvoice(ctx, testTenantID, inv.ID)

		require.NoError(t, err)
		assert.True(t, result.Emailed)
		assert.Equal(t, firstSentAt, inv.SentAt)
		require.Len(t, mailer.Sent(), 1)
	})
}
