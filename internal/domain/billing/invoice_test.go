package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv, err := NewInvoice(uuid.New(), uuid.New(), uuid.New(), "INV-00001", issue, issue.AddDate(0, 0, 30), valueobject.USD)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("valid invoice starts as draft", func(t *testing.T) {
		inv := newTestInvoice(t)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.True(t, inv.Total.IsZero())
		assert.Len(t, inv.GetDomainEvents(), 1)
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), uuid.New(), uuid.New(), "", time.Now(), time.Now(), valueobject.USD)
		assert.Error(t, err)
	})

	t.Run("rejects due date before issue date", func(t *testing.T) {
		now := time.Now()
		_, err := NewInvoice(uuid.New(), uuid.New(), uuid.New(), "INV-00001", now, now.AddDate(0, 0, -1), valueobject.USD)
		assert.Error(t, err)
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		now := time.Now()
		_, err := NewInvoice(uuid.New(), uuid.New(), uuid.New(), "INV-00001", now, now, "XXX")
		assert.Error(t, err)
	})
}

func TestInvoiceLines(t *testing.T) {
	t.Run("adding lines recalculates totals", func(t *testing.T) {
		inv := newTestInvoice(t)

		_, err := inv.AddLine("Design work", d("10"), d("100"), d("10"))
		require.NoError(t, err)
		_, err = inv.AddLine("Hosting", d("1"), d("250"), d("0"))
		require.NoError(t, err)

		assert.True(t, inv.Subtotal.Equal(d("1250")), "subtotal = %s", inv.Subtotal)
		assert.True(t, inv.TaxTotal.Equal(d("100")))
		assert.True(t, inv.Total.Equal(d("1350")))
		assert.True(t, inv.AmountDue.Equal(inv.Total))
	})

	t.Run("removing a line reorders and recalculates", func(t *testing.T) {
		inv := newTestInvoice(t)
		first, err := inv.AddLine("A", d("1"), d("10"), d("0"))
		require.NoError(t, err)
		_, err = inv.AddLine("B", d("1"), d("20"), d("0"))
		require.NoError(t, err)

		require.NoError(t, inv.RemoveLine(first.ID))
		assert.Len(t, inv.Items, 1)
		assert.Equal(t, 0, inv.Items[0].SortOrder)
		assert.True(t, inv.Total.Equal(d("20")))
	})

	t.Run("copied lines get fresh identity and keep amounts", func(t *testing.T) {
		source := newTestInvoice(t)
		line, err := source.AddLine("Design work", d("10"), d("100"), d("10"))
		require.NoError(t, err)
		productID := uuid.New()
		line.SetProduct(productID)
		_, err = source.AddLine("Hosting", d("1"), d("250"), d("0"))
		require.NoError(t, err)

		inv := newTestInvoice(t)
		require.NoError(t, inv.CopyLinesFrom(source.Items))

		require.Len(t, inv.Items, 2)
		assert.NotEqual(t, source.Items[0].ID, inv.Items[0].ID)
		assert.Equal(t, inv.ID, inv.Items[0].DocumentID)
		assert.Equal(t, 0, inv.Items[0].SortOrder)
		assert.Equal(t, 1, inv.Items[1].SortOrder)
		require.NotNil(t, inv.Items[0].ProductID)
		assert.Equal(t, productID, *inv.Items[0].ProductID)
		assert.True(t, inv.Subtotal.Equal(source.Subtotal))
		assert.True(t, inv.Total.Equal(source.Total))
		assert.True(t, inv.AmountDue.Equal(inv.Total))
	})

	t.Run("copying into a non-draft invoice is rejected", func(t *testing.T) {
		source := newTestInvoice(t)
		_, err := source.AddLine("Work", d("1"), d("10"), d("0"))
		require.NoError(t, err)

		inv := newTestInvoice(t)
		_, err = inv.AddLine("Existing", d("1"), d("5"), d("0"))
		require.NoError(t, err)
		require.NoError(t, inv.MarkSent())

		assert.Error(t, inv.CopyLinesFrom(source.Items))
	})

	t.Run("lines frozen once sent", func(t *testing.T) {
		inv := newTestInvoice(t)
		line, err := inv.AddLine("A", d("1"), d("10"), d("0"))
		require.NoError(t, err)
		require.NoError(t, inv.MarkSent())

		_, err = inv.AddLine("B", d("1"), d("20"), d("0"))
		assert.Error(t, err)
		assert.Error(t, inv.RemoveLine(line.ID))
		assert.Error(t, inv.SetDiscount(Discount{Type: DiscountPercent, Value: d("10")}))
	})
}

func TestInvoiceDiscount(t *testing.T) {
	inv := newTestInvoice(t)
	_, err := inv.AddLine("Work", d("10"), d("100"), d("10"))
	require.NoError(t, err)

	require.NoError(t, inv.SetDiscount(Discount{Type: DiscountPercent, Value: d("10")}))
	assert.True(t, inv.DiscountTotal.Equal(d("100")))
	assert.True(t, inv.Total.Equal(d("1000")), "total = %s", inv.Total) // 1000 - 100 + 100 tax
	assert.True(t, inv.AmountDue.Equal(d("1000")))
}

func TestInvoiceApplyPayment(t *testing.T) {
	newSentInvoice := func(t *testing.T) *Invoice {
		inv := newTestInvoice(t)
		_, err := inv.AddLine("Work", d("5"), d("100"), d("0"))
		require.NoError(t, err)
		require.NoError(t, inv.MarkSent())
		return inv
	}

	t.Run("partial then paid", func(t *testing.T) {
		inv := newSentInvoice(t) // total 500

		require.NoError(t, inv.ApplyPayment(d("200")))
		assert.Equal(t, InvoiceStatusPartial, inv.Status)
		assert.True(t, inv.AmountDue.Equal(d("300")))
		assert.Nil(t, inv.PaidAt)

		require.NoError(t, inv.ApplyPayment(d("300")))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.AmountDue.IsZero())
		require.NotNil(t, inv.PaidAt)
	})

	t.Run("full payment goes straight to paid", func(t *testing.T) {
		inv := newSentInvoice(t)
		require.NoError(t, inv.ApplyPayment(d("500")))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("rejects overpayment without mutating", func(t *testing.T) {
		inv := newSentInvoice(t)
		err := inv.ApplyPayment(d("500.01"))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrExceedsAmountDue)
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		assert.True(t, inv.AmountPaid.IsZero())
		assert.True(t, inv.AmountDue.Equal(d("500")))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		inv := newSentInvoice(t)
		assert.Error(t, inv.ApplyPayment(d("0")))
		assert.Error(t, inv.ApplyPayment(d("-10")))
	})

	t.Run("rejects payment against draft", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.AddLine("Work", d("1"), d("100"), d("0"))
		require.NoError(t, err)
		assert.Error(t, inv.ApplyPayment(d("100")))
	})

	t.Run("paidAt stamped once", func(t *testing.T) {
		inv := newSentInvoice(t)
		require.NoError(t, inv.ApplyPayment(d("500")))
		firstPaidAt := *inv.PaidAt

		// A later no-op send or view must not move the stamp.
		require.NoError(t, inv.MarkSent())
		assert.Equal(t, firstPaidAt, *inv.PaidAt)
	})
}

func TestInvoiceOverdue(t *testing.T) {
	inv := newTestInvoice(t) // due 2026-03-31
	_, err := inv.AddLine("Work", d("1"), d("100"), d("0"))
	require.NoError(t, err)

	beforeDue := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	afterDue := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	t.Run("draft is never overdue", func(t *testing.T) {
		assert.False(t, inv.IsOverdue(afterDue))
		assert.Equal(t, InvoiceStatusDraft, inv.DisplayStatus(afterDue))
	})

	t.Run("sent past due shows overdue", func(t *testing.T) {
		require.NoError(t, inv.MarkSent())
		assert.False(t, inv.IsOverdue(beforeDue))
		assert.True(t, inv.IsOverdue(afterDue))
		assert.Equal(t, InvoiceStatusOverdue, inv.DisplayStatus(afterDue))
		// Stored status is untouched.
		assert.Equal(t, InvoiceStatusSent, inv.Status)
	})

	t.Run("overdue does not block payments", func(t *testing.T) {
		require.NoError(t, inv.ApplyPayment(d("100")))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.False(t, inv.IsOverdue(afterDue))
	})
}

func TestInvoicePublicAccess(t *testing.T) {
	inv := newTestInvoice(t)

	t.Run("no token means no access", func(t *testing.T) {
		assert.False(t, inv.PublicLinkValid(time.Now()))
	})

	t.Run("token without expiry", func(t *testing.T) {
		require.NoError(t, inv.EnablePublicAccess("tok-123", nil))
		assert.True(t, inv.PublicLinkValid(time.Now().AddDate(10, 0, 0)))
	})

	t.Run("expired link rejected", func(t *testing.T) {
		expiry := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, inv.EnablePublicAccess("tok-456", &expiry))
		assert.False(t, inv.PublicLinkValid(expiry.Add(time.Hour)))
		assert.True(t, inv.PublicLinkValid(expiry.Add(-time.Hour)))
	})

	t.Run("viewedAt set once", func(t *testing.T) {
		first := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
		inv.RecordView(first)
		require.NotNil(t, inv.ViewedAt)
		inv.RecordView(first.Add(time.Hour))
		assert.Equal(t, first, *inv.ViewedAt)
	})
}

func TestInvoiceVoid(t *testing.T) {
	inv := newTestInvoice(t)
	_, err := inv.AddLine("Work", d("1"), d("100"), d("0"))
	require.NoError(t, err)

	require.NoError(t, inv.Void())
	assert.Equal(t, InvoiceStatusVoid, inv.Status)

	t.Run("void with payments rejected", func(t *testing.T) {
		paid := newTestInvoice(t)
		_, err := paid.AddLine("Work", d("1"), d("100"), d("0"))
		require.NoError(t, err)
		require.NoError(t, paid.MarkSent())
		require.NoError(t, paid.ApplyPayment(d("50")))
		assert.Error(t, paid.Void())
	})
}
