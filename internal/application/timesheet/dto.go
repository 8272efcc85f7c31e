package timesheet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/timesheet"
)

// CreateTimeEntryRequest represents a request to track time
type CreateTimeEntryRequest struct {
	Description string           `json:"description" binding:"required"`
	EntryDate   *time.Time       `json:"entry_date"`
	Hours       decimal.Decimal  `json:"hours" binding:"required"`
	Billable    bool             `json:"billable"`
	CustomerID  *uuid.UUID       `json:"customer_id"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	Notes       string           `json:"notes"`
}

// UpdateTimeEntryRequest represents a request to update a time entry.
// Nil fields are left unchanged.
type UpdateTimeEntryRequest struct {
	Description *string          `json:"description"`
	EntryDate   *time.Time       `json:"entry_date"`
	Hours       *decimal.Decimal `json:"hours"`
	Notes       *string          `json:"notes"`
}

// TimeEntryListFilter represents filtering options for entry listing
type TimeEntryListFilter struct {
	Search     string     `form:"search"`
	Billable   *bool      `form:"billable"`
	CustomerID *uuid.UUID `form:"customer_id"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// TimeEntryResponse represents a time entry in API responses
type TimeEntryResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	Description    string          `json:"description"`
	EntryDate      time.Time       `json:"entry_date"`
	Hours          decimal.Decimal `json:"hours"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	Billable       bool            `json:"billable"`
	BillableAmount decimal.Decimal `json:"billable_amount"`
	InvoicedOnID   *uuid.UUID      `json:"invoiced_on_id,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToTimeEntryResponse converts a domain time entry to a response DTO
func ToTimeEntryResponse(te *timesheet.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:             te.ID,
		TenantID:       te.TenantID,
		CustomerID:     te.CustomerID,
		Description:    te.Description,
		EntryDate:      te.EntryDate,
		Hours:          te.Hours,
		HourlyRate:     te.HourlyRate,
		Billable:       te.Billable,
		BillableAmount: te.BillableAmount(),
		InvoicedOnID:   te.InvoicedOnID,
		Notes:          te.Notes,
		CreatedAt:      te.CreatedAt,
		UpdatedAt:      te.UpdatedAt,
		Version:        te.Version,
	}
}

// ToTimeEntryResponses converts a slice of domain time entries to response DTOs
func ToTimeEntryResponses(entries []timesheet.TimeEntry) []TimeEntryResponse {
	responses := make([]TimeEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToTimeEntryResponse(&entries[i])
	}
	return responses
}
