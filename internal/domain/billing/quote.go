package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusDeclined QuoteStatus = "declined"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// Quote represents a sales quote aggregate root. A quote carries the
// same line and totals structure as an invoice and can be converted
// into one exactly once.
type Quote struct {
	shared.TenantAggregateRoot
	CompanyID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Number     string               `gorm:"not null;index"`
	Status     QuoteStatus          `gorm:"not null;default:'draft';index"`
	IssueDate  time.Time            `gorm:"not null"`
	ValidUntil *time.Time
	Currency   valueobject.Currency `gorm:"not null;default:'USD'"`

	Items []LineItem `gorm:"foreignKey:DocumentID"`

	DiscountType  *DiscountType   `gorm:"type:varchar(10)"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Notes string
	Terms string

	// Conversion bookkeeping, set exactly once.
	ConvertedToInvoiceID *uuid.UUID `gorm:"type:uuid"`
	ConvertedAt          *time.Time

	SentAt *time.Time
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// NewQuote creates a new draft quote
func NewQuote(tenantID, companyID, customerID uuid.UUID, number string, issueDate time.Time, validUntil *time.Time, currency valueobject.Currency) (*Quote, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Quote number cannot be empty")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if validUntil != nil && validUntil.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_VALID_UNTIL", "Valid-until date cannot be before issue date")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Unsupported currency %q", currency))
	}

	q := &Quote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CompanyID:           companyID,
		CustomerID:          customerID,
		Number:              number,
		Status:              QuoteStatusDraft,
		IssueDate:           issueDate,
		ValidUntil:          validUntil,
		Currency:            currency,
		Items:               make([]LineItem, 0),
		DiscountValue:       decimal.Zero,
		Subtotal:            decimal.Zero,
		DiscountTotal:       decimal.Zero,
		TaxTotal:            decimal.Zero,
		Total:               decimal.Zero,
	}

	q.AddDomainEvent(NewQuoteCreatedEvent(q))

	return q, nil
}

// AddLine adds a line item to the quote.
// Only allowed in draft status.
func (q *Quote) AddLine(description string, quantity, unitPrice, taxPercent decimal.Decimal) (*LineItem, error) {
	if q.Status != QuoteStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft quote")
	}

	line, err := NewLineItem(q.ID, description, quantity, unitPrice, taxPercent, len(q.Items))
	if err != nil {
		return nil, err
	}

	q.Items = append(q.Items, *line)
	if err := q.recalculateTotals(); err != nil {
		return nil, err
	}
	q.UpdatedAt = time.Now()

	// Return the stored element so callers can still amend it, e.g.
	// to link a catalog product.
	return &q.Items[len(q.Items)-1], nil
}

// SetDiscount applies a document-level discount.
// Only allowed in draft status.
func (q *Quote) SetDiscount(discount Discount) error {
	if q.Status != QuoteStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change discount on a non-draft quote")
	}
	if err := discount.Validate(); err != nil {
		return err
	}

	t := discount.Type
	q.DiscountType = &t
	q.DiscountValue = discount.Value
	if err := q.recalculateTotals(); err != nil {
		return err
	}
	q.UpdatedAt = time.Now()

	return nil
}

// SetNotes sets the free-form notes and terms text
func (q *Quote) SetNotes(notes, terms string) {
	q.Notes = notes
	q.Terms = terms
	q.UpdatedAt = time.Now()
}

// MarkSent transitions the quote from draft to sent.
// Idempotent for quotes that already left draft.
func (q *Quote) MarkSent() error {
	switch q.Status {
	case QuoteStatusDraft:
		now := time.Now()
		q.Status = QuoteStatusSent
		q.SentAt = &now
		q.UpdatedAt = now
		return nil
	case QuoteStatusSent, QuoteStatusAccepted:
		return nil
	}
	return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send quote in %s status", q.Status))
}

// Decline marks the quote as declined by the customer
func (q *Quote) Decline() error {
	if q.IsConverted() {
		return shared.ErrAlreadyConverted
	}
	if q.Status == QuoteStatusDeclined {
		return nil
	}

	q.Status = QuoteStatusDeclined
	q.UpdatedAt = time.Now()

	return nil
}

// MarkExpired marks the quote as expired past its valid-until date
func (q *Quote) MarkExpired(now time.Time) error {
	if q.IsConverted() {
		return shared.ErrAlreadyConverted
	}
	if q.ValidUntil == nil || now.Before(*q.ValidUntil) {
		return shared.NewDomainError("INVALID_STATE", "Quote is still valid")
	}

	q.Status = QuoteStatusExpired
	q.UpdatedAt = now

	return nil
}

// MarkConverted stamps the quote as converted into the given invoice.
// Rejects a second conversion so the operation stays idempotent at the
// business level; a rejected call never mutates the quote.
func (q *Quote) MarkConverted(invoiceID uuid.UUID) error {
	if q.IsConverted() {
		return shared.ErrAlreadyConverted
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if q.Status == QuoteStatusDeclined {
		return shared.NewDomainError("INVALID_STATE", "Cannot convert a declined quote")
	}

	now := time.Now()
	q.ConvertedToInvoiceID = &invoiceID
	q.ConvertedAt = &now
	q.Status = QuoteStatusAccepted
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteConvertedEvent(q, invoiceID))

	return nil
}

// IsConverted returns true if the quote has already produced an invoice
func (q *Quote) IsConverted() bool {
	return q.ConvertedToInvoiceID != nil
}

// CanModify returns true if lines and discount can still change
func (q *Quote) CanModify() bool {
	return q.Status == QuoteStatusDraft
}

// DiscountSpec returns the document-level discount, if any
func (q *Quote) DiscountSpec() *Discount {
	if q.DiscountType == nil {
		return nil
	}
	return &Discount{Type: *q.DiscountType, Value: q.DiscountValue}
}

// recalculateTotals recomputes document totals from the lines
func (q *Quote) recalculateTotals() error {
	totals, err := CalculateDocumentTotals(q.Items, q.DiscountSpec())
	if err != nil {
		return err
	}

	q.Subtotal = totals.Subtotal
	q.DiscountTotal = totals.DiscountTotal
	q.TaxTotal = totals.TaxTotal
	q.Total = totals.Total

	return nil
}
