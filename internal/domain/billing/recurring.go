package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Frequency represents how often a recurring template generates invoices
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// IsValid checks if the frequency is supported
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Next returns the generation date following current for this frequency.
// Unknown frequencies fall back to monthly.
func (f Frequency) Next(current time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case FrequencyQuarterly:
		return current.AddDate(0, 3, 0)
	case FrequencyYearly:
		return current.AddDate(1, 0, 0)
	default:
		return current.AddDate(0, 1, 0)
	}
}

// RecurringTemplate is an aggregate root holding a frozen set of line
// items that gets stamped out as a fresh invoice each time the schedule
// comes due. The template itself never carries payments.
type RecurringTemplate struct {
	shared.TenantAggregateRoot
	CompanyID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name       string               `gorm:"not null"`
	Frequency  Frequency            `gorm:"not null"`
	Currency   valueobject.Currency `gorm:"not null;default:'USD'"`

	Items []LineItem `gorm:"foreignKey:DocumentID"`

	DiscountType  *DiscountType   `gorm:"type:varchar(10)"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	StartDate          time.Time `gorm:"not null"`
	EndDate            *time.Time
	NextGenerationDate time.Time `gorm:"not null;index"`
	LastGeneratedAt    *time.Time

	// Payment terms applied to generated invoices, in days after issue.
	PaymentTermDays int `gorm:"not null;default:30"`

	AutoSend bool `gorm:"not null;default:false"`
	Active   bool `gorm:"not null;default:true;index"`

	Notes string
	Terms string
}

// TableName returns the table name for GORM
func (RecurringTemplate) TableName() string {
	return "recurring_templates"
}

// NewRecurringTemplate creates a new active recurring template whose
// first generation is due at startDate
func NewRecurringTemplate(tenantID, companyID, customerID uuid.UUID, name string, frequency Frequency, startDate time.Time, endDate *time.Time, currency valueobject.Currency) (*RecurringTemplate, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unsupported frequency %q", frequency))
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, shared.NewDomainError("INVALID_END_DATE", "End date cannot be before start date")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Unsupported currency %q", currency))
	}

	return &RecurringTemplate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CompanyID:           companyID,
		CustomerID:          customerID,
		Name:                name,
		Frequency:           frequency,
		Currency:            currency,
		Items:               make([]LineItem, 0),
		DiscountValue:       decimal.Zero,
		StartDate:           startDate,
		EndDate:             endDate,
		NextGenerationDate:  startDate,
		PaymentTermDays:     30,
		Active:              true,
	}, nil
}

// AddLine adds a line item to the template's frozen item set
func (t *RecurringTemplate) AddLine(description string, quantity, unitPrice, taxPercent decimal.Decimal) (*LineItem, error) {
	line, err := NewLineItem(t.ID, description, quantity, unitPrice, taxPercent, len(t.Items))
	if err != nil {
		return nil, err
	}

	t.Items = append(t.Items, *line)
	t.UpdatedAt = time.Now()

	// Return the stored element so callers can still amend it, e.g.
	// to link a catalog product.
	return &t.Items[len(t.Items)-1], nil
}

// SetDiscount applies a document-level discount to generated invoices
func (t *RecurringTemplate) SetDiscount(discount Discount) error {
	if err := discount.Validate(); err != nil {
		return err
	}

	dt := discount.Type
	t.DiscountType = &dt
	t.DiscountValue = discount.Value
	t.UpdatedAt = time.Now()

	return nil
}

// SetPaymentTermDays sets the payment terms for generated invoices
func (t *RecurringTemplate) SetPaymentTermDays(days int) error {
	if days < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment term days cannot be negative")
	}
	t.PaymentTermDays = days
	t.UpdatedAt = time.Now()
	return nil
}

// SetAutoSend toggles best-effort delivery of generated invoices
func (t *RecurringTemplate) SetAutoSend(autoSend bool) {
	t.AutoSend = autoSend
	t.UpdatedAt = time.Now()
}

// SetNotes sets the notes and terms copied onto generated invoices
func (t *RecurringTemplate) SetNotes(notes, terms string) {
	t.Notes = notes
	t.Terms = terms
	t.UpdatedAt = time.Now()
}

// Deactivate stops the template from generating further invoices.
// Idempotent.
func (t *RecurringTemplate) Deactivate() {
	if !t.Active {
		return
	}
	t.Active = false
	t.UpdatedAt = time.Now()
}

// Activate re-enables the template
func (t *RecurringTemplate) Activate() {
	if t.Active {
		return
	}
	t.Active = true
	t.UpdatedAt = time.Now()
}

// IsDue reports whether a generation is due at the given time
func (t *RecurringTemplate) IsDue(now time.Time) bool {
	return !now.Before(t.NextGenerationDate)
}

// IsExpired reports whether the template's end date has passed
func (t *RecurringTemplate) IsExpired(now time.Time) bool {
	return t.EndDate != nil && now.After(*t.EndDate)
}

// EnsureGeneratable validates that the template may generate an invoice
// at the given time. An expired template is deactivated as a side
// effect before the error is returned, so expiry is applied exactly
// once even without a background sweep.
func (t *RecurringTemplate) EnsureGeneratable(now time.Time) error {
	if !t.Active {
		return shared.ErrTemplateInactive
	}
	if t.IsExpired(now) {
		t.Deactivate()
		return shared.ErrTemplateExpired
	}
	if !t.IsDue(now) {
		return shared.ErrNotYetDue
	}
	if len(t.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Template has no line items to generate from")
	}
	return nil
}

// AdvanceSchedule moves the next generation date forward by one
// frequency step from its current scheduled value and stamps the
// generation time. The next date strictly increases on every call.
func (t *RecurringTemplate) AdvanceSchedule(now time.Time) {
	t.NextGenerationDate = t.Frequency.Next(t.NextGenerationDate)
	t.LastGeneratedAt = &now
	t.UpdatedAt = now
}

// DiscountSpec returns the document-level discount, if any
func (t *RecurringTemplate) DiscountSpec() *Discount {
	if t.DiscountType == nil {
		return nil
	}
	return &Discount{Type: *t.DiscountType, Value: t.DiscountValue}
}
