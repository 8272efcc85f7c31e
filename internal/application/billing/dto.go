package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/billing"
)

// ==================== Shared line item DTOs ====================

// LineItemInput represents a line item in create/update requests
type LineItemInput struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
}

// DiscountInput represents a document-level discount in requests
type DiscountInput struct {
	Type  string          `json:"type" binding:"required,oneof=percent fixed"`
	Value decimal.Decimal `json:"value" binding:"required"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	SortOrder   int             `json:"sort_order"`
}

// ==================== Invoice DTOs ====================

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	CompanyID  *uuid.UUID      `json:"company_id"`
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	IssueDate  *time.Time      `json:"issue_date"`
	DueDate    *time.Time      `json:"due_date"`
	Currency   string          `json:"currency"`
	Lines      []LineItemInput `json:"lines" binding:"required,min=1,dive"`
	Discount   *DiscountInput  `json:"discount"`
	Notes      string          `json:"notes"`
	Terms      string          `json:"terms"`
}

// UpdateInvoiceRequest represents a request to update a draft invoice
type UpdateInvoiceRequest struct {
	IssueDate *time.Time       `json:"issue_date"`
	DueDate   *time.Time       `json:"due_date"`
	Lines     *[]LineItemInput `json:"lines"`
	Discount  *DiscountInput   `json:"discount"`
	Notes     *string          `json:"notes"`
	Terms     *string          `json:"terms"`
}

// InvoiceListFilter represents filter options for invoice lists
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	CompanyID  *uuid.UUID `form:"company_id"`
	Status     *string    `form:"status"`
	Statuses   []string   `form:"statuses"`
	DateFrom   *time.Time `form:"date_from"`
	DateTo     *time.Time `form:"date_to"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	CompanyID     uuid.UUID          `json:"company_id"`
	CustomerID    uuid.UUID          `json:"customer_id"`
	Number        string             `json:"number"`
	Status        string             `json:"status"`
	IssueDate     time.Time          `json:"issue_date"`
	DueDate       time.Time          `json:"due_date"`
	Currency      string             `json:"currency"`
	Lines         []LineItemResponse `json:"lines"`
	DiscountType  *string            `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	TaxTotal      decimal.Decimal    `json:"tax_total"`
	Total         decimal.Decimal    `json:"total"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	AmountDue     decimal.Decimal    `json:"amount_due"`
	Notes         string             `json:"notes,omitempty"`
	Terms         string             `json:"terms,omitempty"`
	SourceQuoteID *uuid.UUID         `json:"source_quote_id,omitempty"`
	RecurringID   *uuid.UUID         `json:"recurring_template_id,omitempty"`
	SentAt        *time.Time         `json:"sent_at,omitempty"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	ViewedAt      *time.Time         `json:"viewed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int                `json:"version"`
}

// InvoiceListItemResponse is a slim invoice row for list views
type InvoiceListItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    time.Time       `json:"due_date"`
	Currency   string          `json:"currency"`
	Total      decimal.Decimal `json:"total"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ==================== Payment DTOs ====================

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	InvoiceID   uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Method      string          `json:"payment_method" binding:"required,oneof=bank_transfer credit_card cash check other"`
	PaymentDate *time.Time      `json:"payment_date"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

// PaymentListFilter represents filter options for payment lists
type PaymentListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	InvoiceID  *uuid.UUID `form:"invoice_id"`
	Method     *string    `form:"method"`
	DateFrom   *time.Time `form:"date_from"`
	DateTo     *time.Time `form:"date_to"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Number      string          `json:"number"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Method      string          `json:"payment_method"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RecordPaymentResponse pairs the created payment with the updated
// invoice settlement state
type RecordPaymentResponse struct {
	Payment PaymentResponse        `json:"payment"`
	Invoice InvoiceSettlementState `json:"invoice"`
}

// InvoiceSettlementState is the post-payment view of an invoice
type InvoiceSettlementState struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	AmountDue  decimal.Decimal `json:"amount_due"`
}

// ==================== Quote DTOs ====================

// CreateQuoteRequest represents a request to create a quote
type CreateQuoteRequest struct {
	CompanyID  *uuid.UUID      `json:"company_id"`
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	IssueDate  *time.Time      `json:"issue_date"`
	ValidUntil *time.Time      `json:"valid_until"`
	Currency   string          `json:"currency"`
	Lines      []LineItemInput `json:"lines" binding:"required,min=1,dive"`
	Discount   *DiscountInput  `json:"discount"`
	Notes      string          `json:"notes"`
	Terms      string          `json:"terms"`
}

// QuoteListFilter represents filter options for quote lists
type QuoteListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     *string    `form:"status"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QuoteResponse represents a quote in API responses
type QuoteResponse struct {
	ID                   uuid.UUID          `json:"id"`
	TenantID             uuid.UUID          `json:"tenant_id"`
	CompanyID            uuid.UUID          `json:"company_id"`
	CustomerID           uuid.UUID          `json:"customer_id"`
	Number               string             `json:"number"`
	Status               string             `json:"status"`
	IssueDate            time.Time          `json:"issue_date"`
	ValidUntil           *time.Time         `json:"valid_until,omitempty"`
	Currency             string             `json:"currency"`
	Lines                []LineItemResponse `json:"lines"`
	DiscountType         *string            `json:"discount_type,omitempty"`
	DiscountValue        decimal.Decimal    `json:"discount_value"`
	Subtotal             decimal.Decimal    `json:"subtotal"`
	DiscountTotal        decimal.Decimal    `json:"discount_total"`
	TaxTotal             decimal.Decimal    `json:"tax_total"`
	Total                decimal.Decimal    `json:"total"`
	Notes                string             `json:"notes,omitempty"`
	Terms                string             `json:"terms,omitempty"`
	ConvertedToInvoiceID *uuid.UUID         `json:"converted_to_invoice_id,omitempty"`
	ConvertedAt          *time.Time         `json:"converted_at,omitempty"`
	SentAt               *time.Time         `json:"sent_at,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	Version              int                `json:"version"`
}

// ConvertQuoteResponse is returned by the quote conversion operation
type ConvertQuoteResponse struct {
	Invoice ConvertedInvoiceRef `json:"invoice"`
}

// ConvertedInvoiceRef identifies the invoice produced by a conversion
type ConvertedInvoiceRef struct {
	ID     uuid.UUID       `json:"id"`
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
}

// ==================== Recurring template DTOs ====================

// CreateRecurringTemplateRequest represents a request to create a
// recurring invoice template
type CreateRecurringTemplateRequest struct {
	CompanyID       *uuid.UUID      `json:"company_id"`
	CustomerID      uuid.UUID       `json:"customer_id" binding:"required"`
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Frequency       string          `json:"frequency" binding:"required,oneof=daily weekly monthly quarterly yearly"`
	StartDate       time.Time       `json:"start_date" binding:"required"`
	EndDate         *time.Time      `json:"end_date"`
	Currency        string          `json:"currency"`
	Lines           []LineItemInput `json:"lines" binding:"required,min=1,dive"`
	Discount        *DiscountInput  `json:"discount"`
	PaymentTermDays *int            `json:"payment_term_days"`
	AutoSend        bool            `json:"auto_send"`
	Notes           string          `json:"notes"`
	Terms           string          `json:"terms"`
}

// RecurringTemplateListFilter represents filter options for template lists
type RecurringTemplateListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Active     *bool      `form:"active"`
	Frequency  *string    `form:"frequency"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RecurringTemplateResponse represents a recurring template in API responses
type RecurringTemplateResponse struct {
	ID                 uuid.UUID          `json:"id"`
	TenantID           uuid.UUID          `json:"tenant_id"`
	CompanyID          uuid.UUID          `json:"company_id"`
	CustomerID         uuid.UUID          `json:"customer_id"`
	Name               string             `json:"name"`
	Frequency          string             `json:"frequency"`
	Currency           string             `json:"currency"`
	Lines              []LineItemResponse `json:"lines"`
	StartDate          time.Time          `json:"start_date"`
	EndDate            *time.Time         `json:"end_date,omitempty"`
	NextGenerationDate time.Time          `json:"next_generation_date"`
	LastGeneratedAt    *time.Time         `json:"last_generated_at,omitempty"`
	PaymentTermDays    int                `json:"payment_term_days"`
	AutoSend           bool               `json:"auto_send"`
	Active             bool               `json:"active"`
	Notes              string             `json:"notes,omitempty"`
	Terms              string             `json:"terms,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Version            int                `json:"version"`
}

// GenerateRunResponse reports the outcome of a recurring generation run
type GenerateRunResponse struct {
	Generated []GeneratedInvoiceResult `json:"generated"`
	Skipped   []SkippedTemplateResult  `json:"skipped"`
}

// GeneratedInvoiceResult describes one invoice produced by a run
type GeneratedInvoiceResult struct {
	TemplateID    uuid.UUID       `json:"template_id"`
	TemplateName  string          `json:"template_name"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	Emailed       bool            `json:"emailed"`
}

// SkippedTemplateResult describes a template that a run did not
// generate from, with the machine-readable reason
type SkippedTemplateResult struct {
	TemplateID   uuid.UUID `json:"template_id"`
	TemplateName string    `json:"template_name"`
	Reason       string    `json:"reason"`
}

// ==================== Portal DTOs ====================

// CreatePublicLinkRequest represents a request to enable portal access
// on an invoice
type CreatePublicLinkRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// PublicLinkResponse carries the generated portal token
type PublicLinkResponse struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// PortalInvoiceResponse is the public, unauthenticated view of an
// invoice. It deliberately omits tenant and customer identifiers.
type PortalInvoiceResponse struct {
	Number        string             `json:"number"`
	Status        string             `json:"status"`
	IssueDate     time.Time          `json:"issue_date"`
	DueDate       time.Time          `json:"due_date"`
	Currency      string             `json:"currency"`
	Lines         []LineItemResponse `json:"lines"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	TaxTotal      decimal.Decimal    `json:"tax_total"`
	Total         decimal.Decimal    `json:"total"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	AmountDue     decimal.Decimal    `json:"amount_due"`
	Notes         string             `json:"notes,omitempty"`
	Terms         string             `json:"terms,omitempty"`
	ViewedAt      *time.Time         `json:"viewed_at,omitempty"`
}

// ==================== Send DTOs ====================

// SendInvoiceResponse reports the outcome of sending an invoice.
// Emailed is false with EmailError set when delivery failed after the
// status transition was committed.
type SendInvoiceResponse struct {
	Invoice    InvoiceResponse `json:"invoice"`
	Emailed    bool            `json:"emailed"`
	EmailError string          `json:"email_error,omitempty"`
}

// ==================== Converters ====================

// ToLineItemResponses converts domain line items to responses
func ToLineItemResponses(items []billing.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, item := range items {
		out[i] = LineItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxPercent:  item.TaxPercent,
			Subtotal:    item.Subtotal,
			TaxAmount:   item.TaxAmount,
			Total:       item.Total,
			SortOrder:   item.SortOrder,
		}
	}
	return out
}

// ToInvoiceResponse converts an invoice to its API representation.
// The status is the display status, so overdue shows without being
// stored.
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		TenantID:      inv.TenantID,
		CompanyID:     inv.CompanyID,
		CustomerID:    inv.CustomerID,
		Number:        inv.Number,
		Status:        inv.DisplayStatus(time.Now()).String(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      string(inv.Currency),
		Lines:         ToLineItemResponses(inv.Items),
		DiscountType:  discountTypeString(inv.DiscountType),
		DiscountValue: inv.DiscountValue,
		Subtotal:      inv.Subtotal,
		DiscountTotal: inv.DiscountTotal,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		SourceQuoteID: inv.SourceQuoteID,
		RecurringID:   inv.RecurringTemplateID,
		SentAt:        inv.SentAt,
		PaidAt:        inv.PaidAt,
		ViewedAt:      inv.ViewedAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
	}
}

// ToInvoiceListItemResponses converts invoices to slim list rows
func ToInvoiceListItemResponses(invoices []billing.Invoice) []InvoiceListItemResponse {
	now := time.Now()
	out := make([]InvoiceListItemResponse, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		out[i] = InvoiceListItemResponse{
			ID:         inv.ID,
			CustomerID: inv.CustomerID,
			Number:     inv.Number,
			Status:     inv.DisplayStatus(now).String(),
			IssueDate:  inv.IssueDate,
			DueDate:    inv.DueDate,
			Currency:   string(inv.Currency),
			Total:      inv.Total,
			AmountDue:  inv.AmountDue,
			CreatedAt:  inv.CreatedAt,
		}
	}
	return out
}

// ToPaymentResponse converts a payment to its API representation
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Number:      p.Number,
		InvoiceID:   p.InvoiceID,
		CustomerID:  p.CustomerID,
		Amount:      p.Amount,
		Currency:    string(p.Currency),
		Method:      string(p.Method),
		PaymentDate: p.PaymentDate,
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

// ToPaymentResponses converts payments to API representations
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// ToQuoteResponse converts a quote to its API representation
func ToQuoteResponse(q *billing.Quote) QuoteResponse {
	return QuoteResponse{
		ID:                   q.ID,
		TenantID:             q.TenantID,
		CompanyID:            q.CompanyID,
		CustomerID:           q.CustomerID,
		Number:               q.Number,
		Status:               q.Status.String(),
		IssueDate:            q.IssueDate,
		ValidUntil:           q.ValidUntil,
		Currency:             string(q.Currency),
		Lines:                ToLineItemResponses(q.Items),
		DiscountType:         discountTypeString(q.DiscountType),
		DiscountValue:        q.DiscountValue,
		Subtotal:             q.Subtotal,
		DiscountTotal:        q.DiscountTotal,
		TaxTotal:             q.TaxTotal,
		Total:                q.Total,
		Notes:                q.Notes,
		Terms:                q.Terms,
		ConvertedToInvoiceID: q.ConvertedToInvoiceID,
		ConvertedAt:          q.ConvertedAt,
		SentAt:               q.SentAt,
		CreatedAt:            q.CreatedAt,
		UpdatedAt:            q.UpdatedAt,
		Version:              q.Version,
	}
}

// ToQuoteResponses converts quotes to API representations
func ToQuoteResponses(quotes []billing.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		out[i] = ToQuoteResponse(&quotes[i])
	}
	return out
}

// ToRecurringTemplateResponse converts a template to its API representation
func ToRecurringTemplateResponse(t *billing.RecurringTemplate) RecurringTemplateResponse {
	return RecurringTemplateResponse{
		ID:                 t.ID,
		TenantID:           t.TenantID,
		CompanyID:          t.CompanyID,
		CustomerID:         t.CustomerID,
		Name:               t.Name,
		Frequency:          string(t.Frequency),
		Currency:           string(t.Currency),
		Lines:              ToLineItemResponses(t.Items),
		StartDate:          t.StartDate,
		EndDate:            t.EndDate,
		NextGenerationDate: t.NextGenerationDate,
		LastGeneratedAt:    t.LastGeneratedAt,
		PaymentTermDays:    t.PaymentTermDays,
		AutoSend:           t.AutoSend,
		Active:             t.Active,
		Notes:              t.Notes,
		Terms:              t.Terms,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		Version:            t.Version,
	}
}

// ToRecurringTemplateResponses converts templates to API representations
func ToRecurringTemplateResponses(templates []billing.RecurringTemplate) []RecurringTemplateResponse {
	out := make([]RecurringTemplateResponse, len(templates))
	for i := range templates {
		out[i] = ToRecurringTemplateResponse(&templates[i])
	}
	return out
}

// ToPortalInvoiceResponse converts an invoice to its public portal view
func ToPortalInvoiceResponse(inv *billing.Invoice) PortalInvoiceResponse {
	return PortalInvoiceResponse{
		Number:        inv.Number,
		Status:        inv.DisplayStatus(time.Now()).String(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      string(inv.Currency),
		Lines:         ToLineItemResponses(inv.Items),
		Subtotal:      inv.Subtotal,
		DiscountTotal: inv.DiscountTotal,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		ViewedAt:      inv.ViewedAt,
	}
}

func discountTypeString(t *billing.DiscountType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

func toDiscount(in *DiscountInput) *billing.Discount {
	if in == nil {
		return nil
	}
	return &billing.Discount{
		Type:  billing.DiscountType(in.Type),
		Value: in.Value,
	}
}
