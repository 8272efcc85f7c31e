package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCreditCard, PaymentMethodCash, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is an immutable record of money received against an invoice.
// It is created exactly once and never mutated afterward; corrections
// are handled by voiding the invoice side, not by editing payments.
type Payment struct {
	shared.TenantAggregateRoot
	Number      string               `gorm:"not null;index"`
	InvoiceID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency    valueobject.Currency `gorm:"not null;default:'USD'"`
	Method      PaymentMethod        `gorm:"not null"`
	PaymentDate time.Time            `gorm:"not null"`
	Reference   string
	Notes       string
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment record
func NewPayment(tenantID uuid.UUID, number string, invoiceID, customerID uuid.UUID, amount decimal.Decimal, currency valueobject.Currency, method PaymentMethod, paymentDate time.Time, reference string) (*Payment, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Payment number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unsupported payment method")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		InvoiceID:           invoiceID,
		CustomerID:          customerID,
		Amount:              amount.Round(2),
		Currency:            currency,
		Method:              method,
		PaymentDate:         paymentDate,
		Reference:           reference,
	}, nil
}

// AmountMoney returns the amount as a Money value object
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.MustMoney(p.Amount, p.Currency)
}
