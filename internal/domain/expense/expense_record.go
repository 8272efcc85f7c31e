package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Category represents the category of a business expense
type Category string

const (
	CategoryTravel      Category = "travel"
	CategoryOffice      Category = "office"
	CategorySoftware    Category = "software"
	CategoryEquipment   Category = "equipment"
	CategoryMarketing   Category = "marketing"
	CategoryMeals       Category = "meals"
	CategoryUtilities   Category = "utilities"
	CategoryContractors Category = "contractors"
	CategoryOther       Category = "other"
)

// IsValid checks if the category is supported
func (c Category) IsValid() bool {
	switch c {
	case CategoryTravel, CategoryOffice, CategorySoftware, CategoryEquipment,
		CategoryMarketing, CategoryMeals, CategoryUtilities, CategoryContractors,
		CategoryOther:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// ExpenseRecord represents a business expense. A billable expense is
// tied to a customer and can later be pulled onto one of their
// invoices; InvoicedOnID records that linkage exactly once.
type ExpenseRecord struct {
	shared.TenantAggregateRoot
	Number      string               `gorm:"not null;index"`
	Category    Category             `gorm:"type:varchar(20);not null"`
	Description string               `gorm:"not null"`
	Vendor      string               `gorm:"type:varchar(200)"`
	Amount      decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency    valueobject.Currency `gorm:"not null;default:'USD'"`
	ExpenseDate time.Time            `gorm:"not null;index"`

	Billable   bool       `gorm:"not null;default:false"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`

	// Set when a billable expense has been placed on an invoice.
	InvoicedOnID *uuid.UUID `gorm:"type:uuid"`

	// Object storage key of the uploaded receipt, if any.
	ReceiptKey string `gorm:"type:varchar(500)"`

	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ExpenseRecord) TableName() string {
	return "expense_records"
}

// NewExpenseRecord creates a new expense record
func NewExpenseRecord(tenantID uuid.UUID, number string, category Category, description string, amount decimal.Decimal, currency valueobject.Currency, expenseDate time.Time) (*ExpenseRecord, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Expense number cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unsupported expense category")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}

	return &ExpenseRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Category:            category,
		Description:         description,
		Amount:              amount.Round(2),
		Currency:            currency,
		ExpenseDate:         expenseDate,
	}, nil
}

// Update updates the expense's editable fields.
// Not allowed once the expense has been invoiced.
func (e *ExpenseRecord) Update(category Category, description, vendor string, amount decimal.Decimal, expenseDate time.Time) error {
	if e.IsInvoiced() {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit an expense that has been invoiced")
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unsupported expense category")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}

	e.Category = category
	e.Description = description
	e.Vendor = vendor
	e.Amount = amount.Round(2)
	e.ExpenseDate = expenseDate
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// MarkBillable ties the expense to a customer for later rebilling
func (e *ExpenseRecord) MarkBillable(customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if e.IsInvoiced() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change billing of an invoiced expense")
	}

	e.Billable = true
	e.CustomerID = &customerID
	e.UpdatedAt = time.Now()

	return nil
}

// MarkInvoiced records the invoice the expense was rebilled on.
// Rejects a second invoicing so an expense is billed at most once.
func (e *ExpenseRecord) MarkInvoiced(invoiceID uuid.UUID) error {
	if !e.Billable {
		return shared.NewDomainError("INVALID_STATE", "Expense is not billable")
	}
	if e.IsInvoiced() {
		return shared.NewDomainError("ALREADY_INVOICED", "Expense has already been invoiced")
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}

	e.InvoicedOnID = &invoiceID
	e.UpdatedAt = time.Now()

	return nil
}

// AttachReceipt stores the object storage key of the uploaded receipt
func (e *ExpenseRecord) AttachReceipt(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt key cannot be empty")
	}
	e.ReceiptKey = key
	e.UpdatedAt = time.Now()
	return nil
}

// IsInvoiced returns true if the expense has been placed on an invoice
func (e *ExpenseRecord) IsInvoiced() bool {
	return e.InvoicedOnID != nil
}

// AmountMoney returns the amount as a Money value object
func (e *ExpenseRecord) AmountMoney() valueobject.Money {
	return valueobject.MustMoney(e.Amount, e.Currency)
}
