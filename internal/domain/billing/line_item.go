package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem represents a billable line inside an invoice, quote or
// recurring template. It is owned exclusively by its parent document
// and immutable once the document leaves draft.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid"`
	Description string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SortOrder   int             `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "line_items"
}

// NewLineItem creates a line item with derived amounts computed
func NewLineItem(documentID uuid.UUID, description string, quantity, unitPrice, taxPercent decimal.Decimal, sortOrder int) (*LineItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot be empty")
	}

	amounts, err := CalculateLineAmounts(quantity, unitPrice, taxPercent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &LineItem{
		ID:          uuid.New(),
		DocumentID:  documentID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxPercent:  taxPercent,
		Subtotal:    amounts.Subtotal,
		TaxAmount:   amounts.TaxAmount,
		Total:       amounts.Total,
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetProduct links the line to a catalog product
func (l *LineItem) SetProduct(productID uuid.UUID) {
	l.ProductID = &productID
	l.UpdatedAt = time.Now()
}

// CopyFor returns a fresh copy of the line owned by another document.
// Used when converting quotes and stamping out recurring invoices.
func (l *LineItem) CopyFor(documentID uuid.UUID) LineItem {
	now := time.Now()
	copied := *l
	copied.ID = uuid.New()
	copied.DocumentID = documentID
	copied.CreatedAt = now
	copied.UpdatedAt = now
	return copied
}
