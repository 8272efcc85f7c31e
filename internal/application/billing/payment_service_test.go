package billing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
)

func newPaymentService(payments *MockPaymentRepository, invoices *MockInvoiceRepository, customers *MockCustomerRepository, seq *stubSequencer) *PaymentService {
	return NewPaymentService(payments, invoices, customers, seq, passthroughTxRunner{})
}

func sentInvoiceWithBalance(t *testing.T, cust *partner.Customer) *billing.Invoice {
	t.Helper()
	inv := newDraftInvoice(t, newTestCompany(t), cust) // total 1100
	require.NoError(t, inv.MarkSent())
	require.NoError(t, cust.IncreaseBalance(inv.Total))
	inv.ClearDomainEvents()
	return inv
}

func TestPaymentService_Record(t *testing.T) {
	t.Run("partial payment updates invoice and balance atomically", func(t *testing.T) {
		payments := new(MockPaymentRepository)
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		seq := &stubSequencer{numbers: []string{"PAY-00001"}}
		service := newPaymentService(payments, invoices, customers, seq)
		ctx := context.Background()

		cust := newTestCustomer(t)
		inv := sentInvoiceWithBalance(t, cust)

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)
		invoices.On("SaveWithLock", ctx, inv).Return(nil)
		payments.On("Create", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
		customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		customers.On("SaveWithLock", ctx, cust).Return(nil)

		result, err := service.Record(ctx, testTenantID, RecordPaymentRequest{
			InvoiceID: inv.ID,
			Amount:    decimal.NewFromInt(500),
			Method:    "bank_transfer",
		})

		require.NoError(t, err)
		assert.Equal(t, "PAY-00001", result.Payment.Number)
		assert.Equal(t, "partial", result.Invoice.Status)
		assert.True(t, result.Invoice.AmountPaid.Equal(decimal.NewFromInt(500)))
		assert.True(t, result.Invoice.AmountDue.Equal(decimal.NewFromInt(600)))
		assert.True(t, cust.Balance.Equal(decimal.NewFromInt(600)), "balance = %s", cust.Balance)
		payments.AssertExpectations(t)
	})

	t.Run("full payment marks invoice paid", func(t *testing.T) {
		payments := new(MockPaymentRepository)
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		seq := &stubSequencer{numbers: []string{"PAY-00001"}}
		service := newPaymentService(payments, invoices, customers, seq)
		ctx := context.Background()

		cust := newTestCustomer(t)
		inv := sentInvoiceWithBalance(t, cust)

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)
		invoices.On("SaveWithLock", ctx, inv).Return(nil)
		payments.On("Create", ctx, mock.Anything).Return(nil)
		customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		customers.On("SaveWithLock", ctx, cust).Return(nil)

		result, err := service.Record(ctx, testTenantID, RecordPaymentRequest{
			InvoiceID: inv.ID,
			Amount:    decimal.NewFromInt(1100),
			Method:    "credit_card",
		})

		require.NoError(t, err)
		assert.Equal(t, "paid", result.Invoice.Status)
		assert.True(t, result.Invoice.AmountDue.IsZero())
		assert.True(t, cust.Balance.IsZero(), "balance = %s", cust.Balance)
	})

	t.Run("rejects amount above amount due without writing", func(t *testing.T) {
		payments := new(MockPaymentRepository)
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		seq := &stubSequencer{numbers: []string{"PAY-00001"}}
		service := newPaymentService(payments, invoices, customers, seq)
		ctx := context.Background()

		cust := newTestCustomer(t)
		inv := sentInvoiceWithBalance(t, cust)

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)

		_, err := service.Record(ctx, testTenantID, RecordPaymentRequest{
			InvoiceID: inv.ID,
			Amount:    decimal.NewFromInt(1200),
			Method:    "cash",
		})

		assert.ErrorIs(t, err, shared.ErrExceedsAmountDue)
		assert.True(t, inv.AmountPaid.IsZero())
		payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		customers.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("rejects payment against draft invoice", func(t *testing.T) {
		payments := new(MockPaymentRepository)
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		seq := &stubSequencer{numbers: []string{"PAY-00001"}}
		service := newPaymentService(payments, invoices, customers, seq)
		ctx := context.Background()

		inv := newDraftInvoice(t, newTestCompany(t), newTestCustomer(t))

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)

		_, err := service.Record(ctx, testTenantID, RecordPaymentRequest{
			InvoiceID: inv.ID,
			Amount:    decimal.NewFromInt(100),
			Method:    "cash",
		})

		require.Error(t, err)
		payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("two partial payments settle the invoice", func(t *testing.T) {
		payments := new(MockPaymentRepository)
		invoices := new(MockInvoiceRepository)
		customers := new(MockCustomerRepository)
		seq := &stubSequencer{numbers: []string{"PAY-00001", "PAY-00002"}}
		service := newPaymentService(payments, invoices, customers, seq)
		ctx := context.Background()

		cust := newTestCustomer(t)
		inv := sentInvoiceWithBalance(t, cust)

		invoices.On("FindByIDForTenant", ctx, testTenantID, inv.ID).Return(inv, nil)
		invoices.On("SaveWithLock", ctx, inv).Return(nil)
		payments.On("Create", ctx, mock.Anything).Return(nil)
		customers.On("FindByIDForTenant", ctx, testTenantID, cust.ID).Return(cust, nil)
		customers.On("SaveWithLock", ctx, cust).Return(nil)

		first, err := service.Record(ctx, testTenantID, RecordPaymentRequest{
			InvoiceID: inv.ID, Amount: decimal.NewFromInt(600), Method: "bank_transfer",
		})
		require.NoError(t, err)
		assert.Equal(t, "partial", first.Invoice.Status)

		second, err := service.Record(ctx, testTenantID, RecordPaymentRequest{
			InvoiceID: inv.ID, Amount: decimal.NewFromInt(500), Method: "bank_transfer",
		})
		require.NoError(t, err)
		assert.Equal(t, "paid", second.Invoice.Status)
		assert.True(t, cust.Balance.IsZero())
	})
}
