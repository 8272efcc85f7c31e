package finance

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/expense"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
)

// ObjectStorage is the slice of object storage the expense service
// needs for receipt attachments
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// receiptURLTTL is how long pre-signed receipt links stay valid
const receiptURLTTL = 15 * time.Minute

// ExpenseService handles business expense tracking
type ExpenseService struct {
	expenses  expense.ExpenseRepository
	customers partner.CustomerRepository
	sequencer shared.NumberSequencer
	tx        shared.TxRunner
	storage   ObjectStorage
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenses expense.ExpenseRepository,
	customers partner.CustomerRepository,
	sequencer shared.NumberSequencer,
	tx shared.TxRunner,
	storage ObjectStorage,
) *ExpenseService {
	return &ExpenseService{
		expenses:  expenses,
		customers: customers,
		sequencer: sequencer,
		tx:        tx,
		storage:   storage,
	}
}

// Create records a new expense with a freshly sequenced number
func (s *ExpenseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if req.Billable {
		if req.CustomerID == nil {
			return nil, shared.NewDomainError("INVALID_CUSTOMER", "Billable expenses require a customer")
		}
		if _, err := s.customers.FindByIDForTenant(ctx, tenantID, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	currency := valueobject.DefaultCurrency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}
	expenseDate := time.Now()
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}

	var record *expense.ExpenseRecord
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		number, err := s.sequencer.NextNumber(ctx, tenantID, shared.SeriesExpense, "")
		if err != nil {
			return err
		}

		record, err = expense.NewExpenseRecord(tenantID, number, expense.Category(req.Category), req.Description, req.Amount, currency, expenseDate)
		if err != nil {
			return err
		}
		record.Vendor = req.Vendor
		record.Notes = req.Notes
		if req.Billable {
			if err := record.MarkBillable(*req.CustomerID); err != nil {
				return err
			}
		}

		return s.expenses.Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	response := ToExpenseResponse(record)
	return &response, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, tenantID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	record, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(record)
	return &response, nil
}

// List retrieves expenses with filtering and pagination
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter ExpenseListFilter) (*shared.Paginated[ExpenseResponse], error) {
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
	if filter.Category != nil {
		domainFilter.Filters["category"] = *filter.Category
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

	page, err := s.expenses.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToExpenseResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// ListBillableUninvoiced lists a customer's billable expenses not yet
// placed on an invoice
func (s *ExpenseService) ListBillableUninvoiced(ctx context.Context, tenantID, customerID uuid.UUID) ([]ExpenseResponse, error) {
	records, err := s.expenses.FindBillableUninvoiced(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return ToExpenseResponses(records), nil
}

// Update updates an expense's editable fields. Invoiced expenses are
// frozen.
func (s *ExpenseService) Update(ctx context.Context, tenantID, expenseID uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	record, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	category := record.Category
	if req.Category != nil {
		category = expense.Category(*req.Category)
	}
	description := record.Description
	if req.Description != nil {
		description = *req.Description
	}
	vendor := record.Vendor
	if req.Vendor != nil {
		vendor = *req.Vendor
	}
	amount := record.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	expenseDate := record.ExpenseDate
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}
	if err := record.Update(category, description, vendor, amount, expenseDate); err != nil {
		return nil, err
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := s.expenses.Save(ctx, record); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(record)
	return &response, nil
}

// MarkBillable ties an expense to a customer for later rebilling
func (s *ExpenseService) MarkBillable(ctx context.Context, tenantID, expenseID, customerID uuid.UUID) (*ExpenseResponse, error) {
	record, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return nil, err
	}

	if err := record.MarkBillable(customerID); err != nil {
		return nil, err
	}
	if err := s.expenses.Save(ctx, record); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(record)
	return &response, nil
}

// MarkInvoiced records the invoice a billable expense was rebilled on
func (s *ExpenseService) MarkInvoiced(ctx context.Context, tenantID, expenseID, invoiceID uuid.UUID) (*ExpenseResponse, error) {
	record, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	if err := record.MarkInvoiced(invoiceID); err != nil {
		return nil, err
	}
	if err := s.expenses.Save(ctx, record); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(record)
	return &response, nil
}

// AttachReceipt uploads a receipt file and links it to the expense
func (s *ExpenseService) AttachReceipt(ctx context.Context, tenantID, expenseID uuid.UUID, filename, contentType string, data []byte) (*ExpenseResponse, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt file is empty")
	}

	record, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	key := receiptKey(tenantID, expenseID, filename)
	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		return nil, err
	}

	if err := record.AttachReceipt(key); err != nil {
		return nil, err
	}
	if err := s.expenses.Save(ctx, record); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(record)
	return &response, nil
}

// ReceiptURL returns a short-lived download link for the receipt
func (s *ExpenseService) ReceiptURL(ctx context.Context, tenantID, expenseID uuid.UUID) (*ReceiptURLResponse, error) {
	record, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	if record.ReceiptKey == "" {
		return nil, shared.ErrNotFound
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, record.ReceiptKey, receiptURLTTL)
	if err != nil {
		return nil, err
	}

	return &ReceiptURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// Delete removes an expense and its stored receipt. Invoiced expenses
// are kept for the audit trail.
func (s *ExpenseService) Delete(ctx context.Context, tenantID, expenseID uuid.UUID) error {
	record, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return err
	}
	if record.IsInvoiced() {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete an expense that has been invoiced")
	}

	if err := s.expenses.DeleteForTenant(ctx, tenantID, expenseID); err != nil {
		return err
	}
	if record.ReceiptKey != "" {
		// Receipt cleanup is best effort: the expense row is gone.
		_ = s.storage.DeleteObject(ctx, record.ReceiptKey)
	}
	return nil
}

// SumByCategory sums expense amounts per category in a date range
func (s *ExpenseService) SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]CategoryTotal, error) {
	sums, err := s.expenses.SumByCategory(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for category, total := range sums {
		totals = append(totals, CategoryTotal{Category: category.String(), Total: total})
	}
	return totals, nil
}

// receiptKey builds the object storage key for a receipt upload
func receiptKey(tenantID, expenseID uuid.UUID, filename string) string {
	base := strings.ToLower(path.Base(filename))
	if base == "." || base == "/" || base == "" {
		base = "receipt"
	}
	return fmt.Sprintf("receipts/%s/%s/%s", tenantID, expenseID, base)
}
