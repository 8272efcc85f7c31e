package timesheet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/timesheet"
)

// TimeEntryService handles tracked work time
type TimeEntryService struct {
	entries   timesheet.TimeEntryRepository
	customers partner.CustomerRepository
}

// NewTimeEntryService creates a new TimeEntryService
func NewTimeEntryService(entries timesheet.TimeEntryRepository, customers partner.CustomerRepository) *TimeEntryService {
	return &TimeEntryService{
		entries:   entries,
		customers: customers,
	}
}

// Create tracks a new time entry
func (s *TimeEntryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTimeEntryRequest) (*TimeEntryResponse, error) {
	if req.Billable {
		if req.CustomerID == nil {
			return nil, shared.NewDomainError("INVALID_CUSTOMER", "Billable time entries require a customer")
		}
		if _, err := s.customers.FindByIDForTenant(ctx, tenantID, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	entryDate := time.Now()
	if req.EntryDate != nil {
		entryDate = *req.EntryDate
	}

	entry, err := timesheet.NewTimeEntry(tenantID, req.Description, entryDate, req.Hours)
	if err != nil {
		return nil, err
	}
	entry.Notes = req.Notes
	if req.Billable {
		rate := decimal.Zero
		if req.HourlyRate != nil {
			rate = *req.HourlyRate
		}
		if err := entry.MarkBillable(*req.CustomerID, rate); err != nil {
			return nil, err
		}
	}

	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}

	response := ToTimeEntryResponse(entry)
	return &response, nil
}

// GetByID retrieves a time entry by ID
func (s *TimeEntryService) GetByID(ctx context.Context, tenantID, entryID uuid.UUID) (*TimeEntryResponse, error) {
	entry, err := s.entries.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	response := ToTimeEntryResponse(entry)
	return &response, nil
}

// List retrieves time entries with filtering and pagination
func (s *TimeEntryService) List(ctx context.Context, tenantID uuid.UUID, filter TimeEntryListFilter) (*shared.Paginated[TimeEntryResponse], error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Billable != nil {
		domainFilter.Filters["billable"] = *filter.Billable
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	page, err := s.entries.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToTimeEntryResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// ListBillableUninvoiced lists a customer's billable entries not yet
// placed on an invoice
func (s *TimeEntryService) ListBillableUninvoiced(ctx context.Context, tenantID, customerID uuid.UUID) ([]TimeEntryResponse, error) {
	entries, err := s.entries.FindBillableUninvoiced(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return ToTimeEntryResponses(entries), nil
}

// Update updates a time entry's editable fields. Invoiced entries are
// frozen.
func (s *TimeEntryService) Update(ctx context.Context, tenantID, entryID uuid.UUID, req UpdateTimeEntryRequest) (*TimeEntryResponse, error) {
	entry, err := s.entries.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	description := entry.Description
	if req.Description != nil {
		description = *req.Description
	}
	entryDate := entry.EntryDate
	if req.EntryDate != nil {
		entryDate = *req.EntryDate
	}
	hours := entry.Hours
	if req.Hours != nil {
		hours = *req.Hours
	}
	if err := entry.Update(description, entryDate, hours); err != nil {
		return nil, err
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}

	response := ToTimeEntryResponse(entry)
	return &response, nil
}

// MarkBillable ties a time entry to a customer at an hourly rate
func (s *TimeEntryService) MarkBillable(ctx context.Context, tenantID, entryID, customerID uuid.UUID, hourlyRate decimal.Decimal) (*TimeEntryResponse, error) {
	entry, err := s.entries.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return nil, err
	}

	if err := entry.MarkBillable(customerID, hourlyRate); err != nil {
		return nil, err
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}

	response := ToTimeEntryResponse(entry)
	return &response, nil
}

// MarkInvoiced records the invoice a billable entry was billed on
func (s *TimeEntryService) MarkInvoiced(ctx context.Context, tenantID, entryID, invoiceID uuid.UUID) (*TimeEntryResponse, error) {
	entry, err := s.entries.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.MarkInvoiced(invoiceID); err != nil {
		return nil, err
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}

	response := ToTimeEntryResponse(entry)
	return &response, nil
}

// Delete removes a time entry. Invoiced entries are kept for the
// audit trail.
func (s *TimeEntryService) Delete(ctx context.Context, tenantID, entryID uuid.UUID) error {
	entry, err := s.entries.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return err
	}
	if entry.IsInvoiced() {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete a time entry that has been invoiced")
	}

	return s.entries.DeleteForTenant(ctx, tenantID, entryID)
}

// SumHours sums tracked hours in a date range
func (s *TimeEntryService) SumHours(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	return s.entries.SumHours(ctx, tenantID, from, to)
}
