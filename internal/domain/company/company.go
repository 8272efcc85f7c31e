package company

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
)

// Company represents the issuing business entity inside a tenant. It
// carries the defaults stamped onto new documents (currency, payment
// terms, number prefixes) and the letterhead details rendered on PDFs.
// A tenant may have several companies; exactly one is the default used
// when a request does not name one.
type Company struct {
	shared.TenantAggregateRoot
	Name      string `gorm:"type:varchar(200);not null"`
	LegalName string `gorm:"type:varchar(200)"`
	Email     string `gorm:"type:varchar(200)"`
	Phone     string `gorm:"type:varchar(50)"`
	Website   string `gorm:"type:varchar(200)"`
	TaxID     string `gorm:"type:varchar(50)"`

	Address    string `gorm:"type:text"`
	City       string `gorm:"type:varchar(100)"`
	State      string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(100)"`

	LogoURL string `gorm:"type:varchar(500)"`

	// Document defaults.
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	PaymentTermDays int                  `gorm:"not null;default:30"`
	InvoicePrefix   string               `gorm:"type:varchar(10);not null;default:'INV'"`
	QuotePrefix     string               `gorm:"type:varchar(10);not null;default:'QUO'"`
	DefaultNotes    string               `gorm:"type:text"`
	DefaultTerms    string               `gorm:"type:text"`

	IsDefault bool `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new company with sensible document defaults
func NewCompany(tenantID uuid.UUID, name string, currency valueobject.Currency) (*Company, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}

	return &Company{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Currency:            currency,
		PaymentTermDays:     30,
		InvoicePrefix:       "INV",
		QuotePrefix:         "QUO",
	}, nil
}

// Update updates the company's identity and contact details
func (c *Company) Update(name, legalName, email, phone, website, taxID string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}

	c.Name = name
	c.LegalName = legalName
	c.Email = email
	c.Phone = phone
	c.Website = website
	c.TaxID = taxID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// UpdateAddress updates the company's registered address
func (c *Company) UpdateAddress(address, city, state, postalCode, country string) {
	c.Address = address
	c.City = city
	c.State = state
	c.PostalCode = postalCode
	c.Country = country
	c.UpdatedAt = time.Now()
}

// SetLogoURL sets the letterhead logo location
func (c *Company) SetLogoURL(url string) {
	c.LogoURL = url
	c.UpdatedAt = time.Now()
}

// UpdateDefaults updates the defaults applied to new documents
func (c *Company) UpdateDefaults(currency valueobject.Currency, paymentTermDays int, invoicePrefix, quotePrefix string) error {
	if !currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}
	if paymentTermDays < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment term days cannot be negative")
	}
	if invoicePrefix == "" || quotePrefix == "" {
		return shared.NewDomainError("INVALID_PREFIX", "Number prefixes cannot be empty")
	}
	if len(invoicePrefix) > 10 || len(quotePrefix) > 10 {
		return shared.NewDomainError("INVALID_PREFIX", "Number prefixes cannot exceed 10 characters")
	}

	c.Currency = currency
	c.PaymentTermDays = paymentTermDays
	c.InvoicePrefix = invoicePrefix
	c.QuotePrefix = quotePrefix
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetDefaultNotes updates the notes and terms copied onto new documents
func (c *Company) SetDefaultNotes(notes, terms string) {
	c.DefaultNotes = notes
	c.DefaultTerms = terms
	c.UpdatedAt = time.Now()
}

// MarkDefault flags this company as the tenant default. The repository
// clears the flag on siblings in the same transaction.
func (c *Company) MarkDefault() {
	if c.IsDefault {
		return
	}
	c.IsDefault = true
	c.UpdatedAt = time.Now()
}

// PrefixFor returns the configured number prefix for a series
func (c *Company) PrefixFor(series shared.Series) string {
	switch series {
	case shared.SeriesInvoice:
		return c.InvoicePrefix
	case shared.SeriesQuote:
		return c.QuotePrefix
	}
	return series.DefaultPrefix()
}
