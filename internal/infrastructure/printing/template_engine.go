package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TemplateEngine renders document data into printable HTML using Go's
// html/template package with formatting helpers.
type TemplateEngine struct {
	funcMap   template.FuncMap
	templates map[string]*template.Template
}

// NewTemplateEngine creates a new template engine with the built-in
// invoice and quote templates compiled.
func NewTemplateEngine() (*TemplateEngine, error) {
	e := &TemplateEngine{
		templates: make(map[string]*template.Template),
	}

	e.funcMap = template.FuncMap{
		"formatMoney":   formatMoney,
		"formatDate":    formatDate,
		"formatDecimal": formatDecimal,
		"formatPercent": formatPercent,
		"upper":         strings.ToUpper,
	}

	builtins := map[string]string{
		TemplateInvoice: defaultInvoiceTemplate,
		TemplateQuote:   defaultQuoteTemplate,
	}
	for name, body := range builtins {
		tpl, err := template.New(name).Funcs(e.funcMap).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		e.templates[name] = tpl
	}

	return e, nil
}

// Built-in template names
const (
	TemplateInvoice = "invoice"
	TemplateQuote   = "quote"
)

// Render executes the named template with the given document data
func (e *TemplateEngine) Render(name string, data *DocumentData) (string, error) {
	tpl, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template: %s", name)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// currencySymbols maps ISO currency codes to display symbols
var currencySymbols = map[valueobject.Currency]string{
	valueobject.USD: "$",
	valueobject.AUD: "A$",
	valueobject.EUR: "€",
	valueobject.GBP: "£",
	valueobject.NZD: "NZ$",
	valueobject.JPY: "¥",
	valueobject.CNY: "¥",
	valueobject.INR: "₹",
	valueobject.SGD: "S$",
	valueobject.CAD: "C$",
	valueobject.CHF: "CHF ",
	valueobject.HKD: "HK$",
}

// formatMoney formats an amount with its currency symbol and thousands
// separators. Example: 1234.5 USD -> "$1,234.50"
func formatMoney(amount decimal.Decimal, currency valueobject.Currency) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = string(currency) + " "
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(2)
	parts := strings.SplitN(fixed, ".", 2)
	return sign + symbol + groupThousands(parts[0]) + "." + parts[1]
}

// groupThousands inserts comma separators into an integer string
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatDate formats a time as "Jan 2, 2006". Accepts both time.Time
// and *time.Time since optional dates are pointers.
func formatDate(v interface{}) string {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case *time.Time:
		if d == nil {
			return ""
		}
		t = *d
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// formatDecimal renders a decimal trimming trailing zeros
func formatDecimal(d decimal.Decimal) string {
	return d.String()
}

// formatPercent renders a percentage value. Example: 10 -> "10%"
func formatPercent(d decimal.Decimal) string {
	return d.String() + "%"
}
