package billing

import (
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscountType represents how a document-level discount is expressed
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// IsValid checks if the discount type is supported
func (t DiscountType) IsValid() bool {
	return t == DiscountPercent || t == DiscountFixed
}

// Discount is an optional document-level discount specification
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Validate checks the discount specification
func (d Discount) Validate() error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be percent or fixed")
	}
	if d.Value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
	}
	if d.Type == DiscountPercent && d.Value.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount percent cannot exceed 100")
	}
	return nil
}

// LineAmounts holds the derived amounts of a single line item.
// All values are rounded half-up to cents.
type LineAmounts struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// CalculateLineAmounts computes subtotal, tax amount and total for a line:
//
//	subtotal  = quantity * unitPrice
//	taxAmount = subtotal * taxPercent / 100
//	total     = subtotal + taxAmount
//
// Pure function; both derived amounts are rounded to cents independently
// so the identity total == subtotal + taxAmount holds exactly.
func CalculateLineAmounts(quantity, unitPrice, taxPercent decimal.Decimal) (LineAmounts, error) {
	if quantity.IsNegative() {
		return LineAmounts{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxPercent.IsNegative() || taxPercent.GreaterThan(hundred) {
		return LineAmounts{}, shared.NewDomainError("INVALID_TAX_PERCENT", "Tax percent must be between 0 and 100")
	}

	subtotal := quantity.Mul(unitPrice).Round(2)
	taxAmount := subtotal.Mul(taxPercent).Div(hundred).Round(2)

	return LineAmounts{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
	}, nil
}

// DocumentTotals holds the derived amounts of a whole document
type DocumentTotals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
}

// CalculateDocumentTotals aggregates line amounts into document totals:
//
//	subtotal      = sum(line.Subtotal)
//	taxTotal      = sum(line.TaxAmount)
//	discountTotal = percent: subtotal * value/100, fixed: value
//	total         = (subtotal - discountTotal) + taxTotal
//
// Tax is computed on pre-discount line subtotals; the discount applies
// to the subtotal only and is never reflected back into per-line tax.
// A fixed discount is capped at the subtotal so the total never drops
// below the tax total.
func CalculateDocumentTotals(lines []LineItem, discount *Discount) (DocumentTotals, error) {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for i := range lines {
		subtotal = subtotal.Add(lines[i].Subtotal)
		taxTotal = taxTotal.Add(lines[i].TaxAmount)
	}

	discountTotal := decimal.Zero
	if discount != nil {
		if err := discount.Validate(); err != nil {
			return DocumentTotals{}, err
		}
		switch discount.Type {
		case DiscountPercent:
			discountTotal = subtotal.Mul(discount.Value).Div(hundred).Round(2)
		case DiscountFixed:
			discountTotal = discount.Value.Round(2)
			if discountTotal.GreaterThan(subtotal) {
				discountTotal = subtotal
			}
		}
	}

	return DocumentTotals{
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		TaxTotal:      taxTotal,
		Total:         subtotal.Sub(discountTotal).Add(taxTotal),
	}, nil
}
