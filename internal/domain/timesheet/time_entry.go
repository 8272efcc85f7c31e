package timesheet

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TimeEntry represents tracked work time. Billable entries carry an
// hourly rate and can be pulled onto a customer invoice once;
// InvoicedOnID records that linkage.
type TimeEntry struct {
	shared.TenantAggregateRoot
	CustomerID  *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"not null"`
	EntryDate   time.Time       `gorm:"not null;index"`
	Hours       decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Billable    bool            `gorm:"not null;default:false"`

	// Set when a billable entry has been placed on an invoice.
	InvoicedOnID *uuid.UUID `gorm:"type:uuid"`

	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TimeEntry) TableName() string {
	return "time_entries"
}

var maxHoursPerEntry = decimal.NewFromInt(24)

// NewTimeEntry creates a new time entry
func NewTimeEntry(tenantID uuid.UUID, description string, entryDate time.Time, hours decimal.Decimal) (*TimeEntry, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Time entry description cannot be empty")
	}
	if !hours.IsPositive() {
		return nil, shared.NewDomainError("INVALID_HOURS", "Hours must be positive")
	}
	if hours.GreaterThan(maxHoursPerEntry) {
		return nil, shared.NewDomainError("INVALID_HOURS", "A single entry cannot exceed 24 hours")
	}

	return &TimeEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Description:         description,
		EntryDate:           entryDate,
		Hours:               hours,
		HourlyRate:          decimal.Zero,
	}, nil
}

// Update updates the entry's editable fields.
// Not allowed once the entry has been invoiced.
func (te *TimeEntry) Update(description string, entryDate time.Time, hours decimal.Decimal) error {
	if te.IsInvoiced() {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a time entry that has been invoiced")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Time entry description cannot be empty")
	}
	if !hours.IsPositive() || hours.GreaterThan(maxHoursPerEntry) {
		return shared.NewDomainError("INVALID_HOURS", "Hours must be positive and at most 24")
	}

	te.Description = description
	te.EntryDate = entryDate
	te.Hours = hours
	te.UpdatedAt = time.Now()
	te.IncrementVersion()

	return nil
}

// MarkBillable ties the entry to a customer at the given hourly rate
func (te *TimeEntry) MarkBillable(customerID uuid.UUID, hourlyRate decimal.Decimal) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if hourlyRate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}
	if te.IsInvoiced() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change billing of an invoiced time entry")
	}

	te.Billable = true
	te.CustomerID = &customerID
	te.HourlyRate = hourlyRate
	te.UpdatedAt = time.Now()

	return nil
}

// MarkInvoiced records the invoice the entry was billed on.
// Rejects a second invoicing so an entry is billed at most once.
func (te *TimeEntry) MarkInvoiced(invoiceID uuid.UUID) error {
	if !te.Billable {
		return shared.NewDomainError("INVALID_STATE", "Time entry is not billable")
	}
	if te.IsInvoiced() {
		return shared.NewDomainError("ALREADY_INVOICED", "Time entry has already been invoiced")
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}

	te.InvoicedOnID = &invoiceID
	te.UpdatedAt = time.Now()

	return nil
}

// IsInvoiced returns true if the entry has been placed on an invoice
func (te *TimeEntry) IsInvoiced() bool {
	return te.InvoicedOnID != nil
}

// BillableAmount returns hours * hourly rate, rounded to cents
func (te *TimeEntry) BillableAmount() decimal.Decimal {
	if !te.Billable {
		return decimal.Zero
	}
	return te.Hours.Mul(te.HourlyRate).Round(2)
}
