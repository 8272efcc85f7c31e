package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency valueobject.Currency
		want     string
	}{
		{"dollars with cents", "1234.5", valueobject.USD, "$1,234.50"},
		{"small amount", "9.99", valueobject.USD, "$9.99"},
		{"millions", "1234567.89", valueobject.EUR, "€1,234,567.89"},
		{"negative", "-42", valueobject.GBP, "-£42.00"},
		{"zero", "0", valueobject.USD, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatMoney(amount, tt.currency))
		})
	}
}

func TestTemplateEngine_RenderInvoice(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	tenantID := uuid.New()
	comp, err := company.NewCompany(tenantID, "Acme Studio", valueobject.USD)
	require.NoError(t, err)
	comp.UpdateAddress("1 Main St", "Springfield", "IL", "62701", "USA")

	cust, err := partner.NewCustomer(tenantID, "Globex Corp", "billing@globex.test", partner.CustomerTypeOrganization)
	require.NoError(t, err)

	issueDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv, err := billing.NewInvoice(tenantID, comp.ID, cust.ID, "INV-00042",
		issueDate, issueDate.AddDate(0, 0, 30), valueobject.USD)
	require.NoError(t, err)
	_, err = inv.AddLine("Design work", decimal.NewFromInt(8), decimal.NewFromInt(120), decimal.NewFromInt(10))
	require.NoError(t, err)
	inv.SetNotes("Thanks for your business.", "Payable within 30 days.")

	html, err := engine.Render(TemplateInvoice, BuildInvoiceData(inv, comp, cust))
	require.NoError(t, err)

	assert.Contains(t, html, "INV-00042")
	assert.Contains(t, html, "Acme Studio")
	assert.Contains(t, html, "Globex Corp")
	assert.Contains(t, html, "Design work")
	assert.Contains(t, html, "$960.00")   // line subtotal
	assert.Contains(t, html, "$1,056.00") // total with tax
	assert.Contains(t, html, "Mar 1, 2026")
	assert.Contains(t, html, "Thanks for your business.")
}

func TestTemplateEngine_RenderQuote(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	tenantID := uuid.New()
	comp, err := company.NewCompany(tenantID, "Acme Studio", valueobject.USD)
	require.NoError(t, err)
	cust, err := partner.NewCustomer(tenantID, "Globex Corp", "", partner.CustomerTypeOrganization)
	require.NoError(t, err)

	issueDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	validUntil := issueDate.AddDate(0, 1, 0)
	q, err := billing.NewQuote(tenantID, comp.ID, cust.ID, "QUO-00007", issueDate, &validUntil, valueobject.USD)
	require.NoError(t, err)
	_, err = q.AddLine("Retainer", decimal.NewFromInt(1), decimal.NewFromInt(2500), decimal.Zero)
	require.NoError(t, err)

	html, err := engine.Render(TemplateQuote, BuildQuoteData(q, comp, cust))
	require.NoError(t, err)

	assert.Contains(t, html, "QUO-00007")
	assert.Contains(t, html, "Valid until: Apr 1, 2026")
	assert.Contains(t, html, "$2,500.00")
	assert.True(t, strings.Contains(html, "QUOTE"))
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	_, err = engine.Render("receipt", &DocumentData{})
	assert.Error(t, err)
}
