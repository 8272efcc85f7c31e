package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the stored status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusVoid    InvoiceStatus = "void"

	// InvoiceStatusOverdue is a derived display status, never stored.
	// An unpaid invoice past its due date reports it via DisplayStatus.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// IsValid checks if the status is a valid stored InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// Invoice represents a customer invoice aggregate root.
// It owns its line items and enforces the payment state machine:
// draft -> sent -> {partial -> paid}, with paid also reachable
// directly from sent.
type Invoice struct {
	shared.TenantAggregateRoot
	CompanyID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Number     string               `gorm:"not null;index"`
	Status     InvoiceStatus        `gorm:"not null;default:'draft';index"`
	IssueDate  time.Time            `gorm:"not null"`
	DueDate    time.Time            `gorm:"not null"`
	Currency   valueobject.Currency `gorm:"not null;default:'USD'"`

	Items []LineItem `gorm:"foreignKey:DocumentID"`

	DiscountType  *DiscountType   `gorm:"type:varchar(10)"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Notes string
	Terms string

	// Provenance links, set when the invoice was produced by a quote
	// conversion or a recurring template.
	SourceQuoteID       *uuid.UUID `gorm:"type:uuid"`
	RecurringTemplateID *uuid.UUID `gorm:"type:uuid;index"`

	SentAt *time.Time
	PaidAt *time.Time

	// Public portal access
	PublicToken         *string `gorm:"uniqueIndex"`
	PublicLinkExpiresAt *time.Time
	ViewedAt            *time.Time
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft invoice
func NewInvoice(tenantID, companyID, customerID uuid.UUID, number string, issueDate, dueDate time.Time, currency valueobject.Currency) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Unsupported currency %q", currency))
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CompanyID:           companyID,
		CustomerID:          customerID,
		Number:              number,
		Status:              InvoiceStatusDraft,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		Currency:            currency,
		Items:               make([]LineItem, 0),
		DiscountValue:       decimal.Zero,
		Subtotal:            decimal.Zero,
		DiscountTotal:       decimal.Zero,
		TaxTotal:            decimal.Zero,
		Total:               decimal.Zero,
		AmountPaid:          decimal.Zero,
		AmountDue:           decimal.Zero,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AddLine adds a line item to the invoice.
// Only allowed in draft status.
func (inv *Invoice) AddLine(description string, quantity, unitPrice, taxPercent decimal.Decimal) (*LineItem, error) {
	if inv.Status != InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft invoice")
	}

	line, err := NewLineItem(inv.ID, description, quantity, unitPrice, taxPercent, len(inv.Items))
	if err != nil {
		return nil, err
	}

	inv.Items = append(inv.Items, *line)
	if err := inv.recalculateTotals(); err != nil {
		return nil, err
	}
	inv.UpdatedAt = time.Now()

	// Return the stored element so callers can still amend it, e.g.
	// to link a catalog product.
	return &inv.Items[len(inv.Items)-1], nil
}

// CopyLinesFrom appends copies of another document's lines, preserving
// product links and amounts. Only allowed in draft status.
func (inv *Invoice) CopyLinesFrom(items []LineItem) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft invoice")
	}

	for _, item := range items {
		copied := item.CopyFor(inv.ID)
		copied.SortOrder = len(inv.Items)
		inv.Items = append(inv.Items, copied)
	}
	if err := inv.recalculateTotals(); err != nil {
		return err
	}
	inv.UpdatedAt = time.Now()

	return nil
}

// RemoveLine removes a line item from the invoice.
// Only allowed in draft status.
func (inv *Invoice) RemoveLine(lineID uuid.UUID) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-draft invoice")
	}

	for idx := range inv.Items {
		if inv.Items[idx].ID == lineID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			for i := range inv.Items {
				inv.Items[i].SortOrder = i
			}
			if err := inv.recalculateTotals(); err != nil {
				return err
			}
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Invoice line not found")
}

// SetDiscount applies a document-level discount.
// Only allowed in draft status.
func (inv *Invoice) SetDiscount(discount Discount) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change discount on a non-draft invoice")
	}
	if err := discount.Validate(); err != nil {
		return err
	}

	t := discount.Type
	inv.DiscountType = &t
	inv.DiscountValue = discount.Value
	if err := inv.recalculateTotals(); err != nil {
		return err
	}
	inv.UpdatedAt = time.Now()

	return nil
}

// SetNotes sets the free-form notes and payment terms text
func (inv *Invoice) SetNotes(notes, terms string) {
	inv.Notes = notes
	inv.Terms = terms
	inv.UpdatedAt = time.Now()
}

// Reschedule updates the issue and due dates.
// Only allowed in draft status.
func (inv *Invoice) Reschedule(issueDate, dueDate time.Time) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be rescheduled")
	}
	if dueDate.Before(issueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	inv.IssueDate = issueDate
	inv.DueDate = dueDate
	inv.UpdatedAt = time.Now()

	return nil
}

// MarkSent transitions the invoice from draft to sent.
// Idempotent for invoices that already left draft.
func (inv *Invoice) MarkSent() error {
	switch inv.Status {
	case InvoiceStatusDraft:
		now := time.Now()
		inv.Status = InvoiceStatusSent
		inv.SentAt = &now
		inv.UpdatedAt = now
		inv.AddDomainEvent(NewInvoiceSentEvent(inv))
		return nil
	case InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusPaid:
		return nil
	}
	return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
}

// ApplyPayment applies a payment amount to the invoice and advances the
// status machine:
//
//	amountDue <= 0              -> paid (paidAt stamped once)
//	0 < amountPaid < total      -> partial
//
// Rejects amounts that are not positive or exceed the current amount
// due; a rejected payment never mutates the invoice.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if inv.Status == InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot record a payment against a draft invoice")
	}
	if inv.Status == InvoiceStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "Cannot record a payment against a void invoice")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(inv.AmountDue) {
		return shared.ErrExceedsAmountDue
	}

	now := time.Now()
	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.AmountDue = inv.Total.Sub(inv.AmountPaid)

	if inv.AmountDue.LessThanOrEqual(decimal.Zero) {
		inv.Status = InvoiceStatusPaid
		if inv.PaidAt == nil {
			inv.PaidAt = &now
		}
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else if inv.AmountPaid.IsPositive() {
		inv.Status = InvoiceStatusPartial
	}
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoicePaymentAppliedEvent(inv, amount))

	return nil
}

// Void cancels the invoice. Only allowed before any payment is applied.
func (inv *Invoice) Void() error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusPartial {
		return shared.NewDomainError("INVALID_STATE", "Cannot void an invoice with recorded payments")
	}
	if inv.Status == InvoiceStatusVoid {
		return nil
	}

	inv.Status = InvoiceStatusVoid
	inv.UpdatedAt = time.Now()

	return nil
}

// EnablePublicAccess attaches a public portal token with an optional expiry
func (inv *Invoice) EnablePublicAccess(token string, expiresAt *time.Time) error {
	if token == "" {
		return shared.NewDomainError("INVALID_TOKEN", "Public token cannot be empty")
	}

	inv.PublicToken = &token
	inv.PublicLinkExpiresAt = expiresAt
	inv.UpdatedAt = time.Now()

	return nil
}

// PublicLinkValid reports whether the public link can be used at the given time
func (inv *Invoice) PublicLinkValid(now time.Time) bool {
	if inv.PublicToken == nil {
		return false
	}
	return inv.PublicLinkExpiresAt == nil || now.Before(*inv.PublicLinkExpiresAt)
}

// RecordView stamps the first time the customer opened the invoice.
// Subsequent views are no-ops.
func (inv *Invoice) RecordView(now time.Time) {
	if inv.ViewedAt != nil {
		return
	}
	inv.ViewedAt = &now
	inv.UpdatedAt = now
}

// IsOverdue reports whether the invoice is past due and still unpaid
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusVoid || inv.Status == InvoiceStatusDraft {
		return false
	}
	return now.After(inv.DueDate)
}

// DisplayStatus returns the status to present to users, substituting
// the derived overdue state where applicable. Overdue is display-only
// and never blocks further payments.
func (inv *Invoice) DisplayStatus(now time.Time) InvoiceStatus {
	if inv.IsOverdue(now) {
		return InvoiceStatusOverdue
	}
	return inv.Status
}

// IsDraft returns true if the invoice is in draft status
func (inv *Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// CanModify returns true if lines and discount can still change
func (inv *Invoice) CanModify() bool {
	return inv.Status == InvoiceStatusDraft
}

// TotalMoney returns the total as a Money value object
func (inv *Invoice) TotalMoney() valueobject.Money {
	return valueobject.MustMoney(inv.Total, inv.Currency)
}

// AmountDueMoney returns the amount due as a Money value object
func (inv *Invoice) AmountDueMoney() valueobject.Money {
	return valueobject.MustMoney(inv.AmountDue, inv.Currency)
}

// recalculateTotals recomputes document totals from the lines.
// Amount due tracks the total while the invoice is unpaid.
func (inv *Invoice) recalculateTotals() error {
	var discount *Discount
	if inv.DiscountType != nil {
		discount = &Discount{Type: *inv.DiscountType, Value: inv.DiscountValue}
	}

	totals, err := CalculateDocumentTotals(inv.Items, discount)
	if err != nil {
		return err
	}

	inv.Subtotal = totals.Subtotal
	inv.DiscountTotal = totals.DiscountTotal
	inv.TaxTotal = totals.TaxTotal
	inv.Total = totals.Total
	inv.AmountDue = inv.Total.Sub(inv.AmountPaid)

	return nil
}
