package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/invoicehub/backend/internal/domain/expense"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/invoicehub/backend/internal/infrastructure/storage"
)

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ExpenseRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[expense.ExpenseRecord], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[expense.ExpenseRecord]), args.Error(1)
}

func (m *MockExpenseRepository) FindBillableUninvoiced(ctx context.Context, tenantID, customerID uuid.UUID) ([]expense.ExpenseRecord, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRepository) SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[expense.Category]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[expense.Category]decimal.Decimal), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, e *expense.ExpenseRecord) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[partner.Customer], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[partner.Customer]), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, c *partner.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

type stubSequencer struct {
	numbers []string
	calls   int
}

func (s *stubSequencer) NextNumber(_ context.Context, _ uuid.UUID, _ shared.Series, _ string) (string, error) {
	if s.calls >= len(s.numbers) {
		return "", shared.NewDomainError("SEQUENCE_EXHAUSTED", "no numbers left")
	}
	n := s.numbers[s.calls]
	s.calls++
	return n, nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var testTenantID = uuid.New()

type expenseServiceMocks struct {
	expenses  *MockExpenseRepository
	customers *MockCustomerRepository
	storage   *storage.StubObjectStorage
}

func newExpenseService(numbers ...string) (*ExpenseService, *expenseServiceMocks) {
	m := &expenseServiceMocks{
		expenses:  new(MockExpenseRepository),
		customers: new(MockCustomerRepository),
		storage:   storage.NewStubObjectStorage(),
	}
	service := NewExpenseService(m.expenses, m.customers, &stubSequencer{numbers: numbers}, passthroughTxRunner{}, m.storage)
	return service, m
}

func newStoredExpense(t *testing.T) *expense.ExpenseRecord {
	t.Helper()
	record, err := expense.NewExpenseRecord(testTenantID, "EXP-00007", expense.CategorySoftware, "IDE licenses",
		decimal.NewFromInt(499), valueobject.USD, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return record
}

func TestExpenseService_Create(t *testing.T) {
	t.Run("records a sequenced expense", func(t *testing.T) {
		service, m := newExpenseService("EXP-00001")
		ctx := context.Background()

		m.expenses.On("Save", ctx, mock.AnythingOfType("*expense.ExpenseRecord")).Return(nil)

		result, err := service.Create(ctx, testTenantID, CreateExpenseRequest{
			Category:    "travel",
			Description: "Train to client site",
			Vendor:      "DB",
			Amount:      decimal.NewFromFloat(89.90),
		})

		require.NoError(t, err)
		assert.Equal(t, "EXP-00001", result.Number)
		assert.Equal(t, "travel", result.Category)
		assert.Equal(t, "USD", result.Currency)
		assert.False(t, result.Billable)
	})

	t.Run("billable expense requires an existing customer", func(t *testing.T) {
		service, m := newExpenseService("EXP-00001")
		ctx := context.Background()

		cust, err := partner.NewCustomer(testTenantID, "Globex Corp", "", partner.CustomerTypeOrganization)
		require.NoError(t, err)

		m.customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		m.expenses.On("Save", ctx, mock.AnythingOfType("*expense.ExpenseRecord")).Return(nil)

		result, err := service.Create(ctx, testTenantID, CreateExpenseRequest{
			Category:    "contractors",
			Description: "Subcontracted design",
			Amount:      decimal.NewFromInt(1500),
			Billable:    true,
			CustomerID:  &cust.ID,
		})

		require.NoError(t, err)
		assert.True(t, result.Billable)
		require.NotNil(t, result.CustomerID)
		assert.Equal(t, cust.ID, *result.CustomerID)
	})

	t.Run("billable without customer is rejected", func(t *testing.T) {
		service, m := newExpenseService("EXP-00001")
		ctx := context.Background()

		_, err := service.Create(ctx, testTenantID, CreateExpenseRequest{
			Category:    "office",
			Description: "Desks",
			Amount:      decimal.NewFromInt(900),
			Billable:    true,
		})

		require.Error(t, err)
		m.expenses.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestExpenseService_Receipts(t *testing.T) {
	t.Run("attach stores the file and links the key", func(t *testing.T) {
		service, m := newExpenseService()
		ctx := context.Background()

		record := newStoredExpense(t)

		m.expenses.On("FindByIDForTenant", ctx, testTenantID, record.ID).Return(record, nil)
		m.expenses.On("Save", ctx, record).Return(nil)

		result, err := service.AttachReceipt(ctx, testTenantID, record.ID, "Receipt Scan.PDF", "application/pdf", []byte("%PDF-1.4"))

		require.NoError(t, err)
		assert.True(t, result.HasReceipt)

		data, ok := m.storage.Object(record.ReceiptKey)
		require.True(t, ok)
		assert.Equal(t, []byte("%PDF-1.4"), data)
		assert.Contains(t, record.ReceiptKey, "receipt scan.pdf")
	})

	t.Run("empty upload is rejected", func(t *testing.T) {
		service, m := newExpenseService()
		ctx := context.Background()

		_, err := service.AttachReceipt(ctx, testTenantID, uuid.New(), "r.pdf", "application/pdf", nil)

		require.Error(t, err)
		m.expenses.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("receipt url for an expense without receipt is not found", func(t *testing.T) {
		service, m := newExpenseService()
		ctx := context.Background()

		record := newStoredExpense(t)
		m.expenses.On("FindByIDForTenant", ctx, testTenantID, record.ID).Return(record, nil)

		_, err := service.ReceiptURL(ctx, testTenantID, record.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestExpenseService_MarkInvoiced(t *testing.T) {
	service, m := newExpenseService()
	ctx := context.Background()

	record := newStoredExpense(t)
	customerID := uuid.New()
	require.NoError(t, record.MarkBillable(customerID))

	m.expenses.On("FindByIDForTenant", ctx, testTenantID, record.ID).Return(record, nil)
	m.expenses.On("Save", ctx, record).Return(nil)

	invoiceID := uuid.New()
	result, err := service.MarkInvoiced(ctx, testTenantID, record.ID, invoiceID)

	require.NoError(t, err)
	require.NotNil(t, result.InvoicedOnID)
	assert.Equal(t, invoiceID, *result.InvoicedOnID)

	// A second invoicing is rejected.
	_, err = service.MarkInvoiced(ctx, testTenantID, record.ID, uuid.New())
	require.Error(t, err)
}

func TestExpenseService_Delete(t *testing.T) {
	t.Run("removes the expense and its receipt", func(t *testing.T) {
		service, m := newExpenseService()
		ctx := context.Background()

		record := newStoredExpense(t)
		key := "receipts/x/y/r.pdf"
		require.NoError(t, m.storage.Upload(ctx, key, []byte("%PDF-1.4"), "application/pdf"))
		require.NoError(t, record.AttachReceipt(key))

		m.expenses.On("FindByIDForTenant", ctx, testTenantID, record.ID).Return(record, nil)
		m.expenses.On("DeleteForTenant", ctx, testTenantID, record.ID).Return(nil)

		err := service.Delete(ctx, testTenantID, record.ID)

		require.NoError(t, err)
		_, ok := m.storage.Object(key)
		assert.False(t, ok)
	})

	t.Run("invoiced expense cannot be deleted", func(t *testing.T) {
		service, m := newExpenseService()
		ctx := context.Background()

		record := newStoredExpense(t)
		require.NoError(t, record.MarkBillable(uuid.New()))
		require.NoError(t, record.MarkInvoiced(uuid.New()))

		m.expenses.On("FindByIDForTenant", ctx, testTenantID, record.ID).Return(record, nil)

		err := service.Delete(ctx, testTenantID, record.ID)

		require.Error(t, err)
		m.expenses.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExpenseService_SumByCategory(t *testing.T) {
	service, m := newExpenseService()
	ctx := context.Background()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	m.expenses.On("SumByCategory", ctx, testTenantID, from, to).Return(map[expense.Category]decimal.Decimal{
		expense.CategoryTravel:   decimal.NewFromInt(1200),
		expense.CategorySoftware: decimal.NewFromInt(499),
	}, nil)

	totals, err := service.SumByCategory(ctx, testTenantID, from, to)

	require.NoError(t, err)
	assert.Len(t, totals, 2)

	byCategory := make(map[string]decimal.Decimal, len(totals))
	for _, total := range totals {
		byCategory[total.Category] = total.Total
	}
	assert.True(t, byCategory["travel"].Equal(decimal.NewFromInt(1200)))
	assert.True(t, byCategory["software"].Equal(decimal.NewFromInt(499)))
}
