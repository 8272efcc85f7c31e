package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/expense"
)

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Category    string          `json:"category" binding:"required,oneof=travel office software equipment marketing meals utilities contractors other"`
	Description string          `json:"description" binding:"required"`
	Vendor      string          `json:"vendor"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
	ExpenseDate *time.Time      `json:"expense_date"`
	Billable    bool            `json:"billable"`
	CustomerID  *uuid.UUID      `json:"customer_id"`
	Notes       string          `json:"notes"`
}

// UpdateExpenseRequest represents a request to update an expense.
// Nil fields are left unchanged.
type UpdateExpenseRequest struct {
	Category    *string          `json:"category" binding:"omitempty,oneof=travel office software equipment marketing meals utilities contractors other"`
	Description *string          `json:"description"`
	Vendor      *string          `json:"vendor"`
	Amount      *decimal.Decimal `json:"amount"`
	ExpenseDate *time.Time       `json:"expense_date"`
	Notes       *string          `json:"notes"`
}

// ExpenseListFilter represents filtering options for expense listing
type ExpenseListFilter struct {
	Search     string     `form:"search"`
	Category   *string    `form:"category" binding:"omitempty,oneof=travel office software equipment marketing meals utilities contractors other"`
	Billable   *bool      `form:"billable"`
	CustomerID *uuid.UUID `form:"customer_id"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID           uuid.UUID       `json:"id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	Number       string          `json:"number"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Vendor       string          `json:"vendor,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExpenseDate  time.Time       `json:"expense_date"`
	Billable     bool            `json:"billable"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	InvoicedOnID *uuid.UUID      `json:"invoiced_on_id,omitempty"`
	HasReceipt   bool            `json:"has_receipt"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ReceiptURLResponse carries a pre-signed receipt download link
type ReceiptURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CategoryTotal is one slice of the per-category expense breakdown
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// ToExpenseResponse converts a domain expense to a response DTO
func ToExpenseResponse(e *expense.ExpenseRecord) ExpenseResponse {
	return ExpenseResponse{
		ID:           e.ID,
		TenantID:     e.TenantID,
		Number:       e.Number,
		Category:     e.Category.String(),
		Description:  e.Description,
		Vendor:       e.Vendor,
		Amount:       e.Amount,
		Currency:     string(e.Currency),
		ExpenseDate:  e.ExpenseDate,
		Billable:     e.Billable,
		CustomerID:   e.CustomerID,
		InvoicedOnID: e.InvoicedOnID,
		HasReceipt:   e.ReceiptKey != "",
		Notes:        e.Notes,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		Version:      e.Version,
	}
}

// ToExpenseResponses converts a slice of domain expenses to response DTOs
func ToExpenseResponses(expenses []expense.ExpenseRecord) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses
}
