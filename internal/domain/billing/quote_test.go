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

func newTestQuote(t *testing.T) *Quote {
	t.Helper()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	q, err := NewQuote(uuid.New(), uuid.New(), uuid.New(), "QUO-00001", issue, nil, valueobject.USD)
	require.NoError(t, err)
	return q
}

func TestNewQuote(t *testing.T) {
	t.Run("valid quote starts as draft", func(t *testing.T) {
		q := newTestQuote(t)
		assert.Equal(t, QuoteStatusDraft, q.Status)
		assert.False(t, q.IsConverted())
	})

	t.Run("rejects valid-until before issue date", func(t *testing.T) {
		issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		until := issue.AddDate(0, 0, -1)
		_, err := NewQuote(uuid.New(), uuid.New(), uuid.New(), "QUO-00001", issue, &until, valueobject.USD)
		assert.Error(t, err)
	})
}

func TestQuoteTotals(t *testing.T) {
	q := newTestQuote(t)
	_, err := q.AddLine("Development", d("10"), d("100"), d("10"))
	require.NoError(t, err)

	assert.True(t, q.Subtotal.Equal(d("1000")))
	assert.True(t, q.TaxTotal.Equal(d("100")))
	assert.True(t, q.Total.Equal(d("1100")))

	require.NoError(t, q.SetDiscount(Discount{Type: DiscountFixed, Value: d("50")}))
	assert.True(t, q.Total.Equal(d("1050")))
}

func TestQuoteMarkConverted(t *testing.T) {
	t.Run("stamps conversion exactly once", func(t *testing.T) {
		q := newTestQuote(t)
		_, err := q.AddLine("Development", d("10"), d("100"), d("10"))
		require.NoError(t, err)

		invoiceID := uuid.New()
		require.NoError(t, q.MarkConverted(invoiceID))
		assert.Equal(t, QuoteStatusAccepted, q.Status)
		require.NotNil(t, q.ConvertedToInvoiceID)
		assert.Equal(t, invoiceID, *q.ConvertedToInvoiceID)
		require.NotNil(t, q.ConvertedAt)

		// Second conversion must fail without touching the stamp.
		firstConvertedAt := *q.ConvertedAt
		err = q.MarkConverted(uuid.New())
		assert.ErrorIs(t, err, shared.ErrAlreadyConverted)
		assert.Equal(t, invoiceID, *q.ConvertedToInvoiceID)
		assert.Equal(t, firstConvertedAt, *q.ConvertedAt)
	})

	t.Run("rejects nil invoice id", func(t *testing.T) {
		q := newTestQuote(t)
		assert.Error(t, q.MarkConverted(uuid.Nil))
	})

	t.Run("declined quote cannot convert", func(t *testing.T) {
		q := newTestQuote(t)
		require.NoError(t, q.Decline())
		assert.Error(t, q.MarkConverted(uuid.New()))
	})
}

func TestQuoteLifecycle(t *testing.T) {
	t.Run("send is idempotent once sent", func(t *testing.T) {
		q := newTestQuote(t)
		require.NoError(t, q.MarkSent())
		assert.Equal(t, QuoteStatusSent, q.Status)
		require.NoError(t, q.MarkSent())
	})

	t.Run("expiry requires a passed valid-until", func(t *testing.T) {
		issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		until := issue.AddDate(0, 0, 14)
		q, err := NewQuote(uuid.New(), uuid.New(), uuid.New(), "QUO-00002", issue, &until, valueobject.USD)
		require.NoError(t, err)

		assert.Error(t, q.MarkExpired(until.AddDate(0, 0, -1)))
		require.NoError(t, q.MarkExpired(until.AddDate(0, 0, 1)))
		assert.Equal(t, QuoteStatusExpired, q.Status)
	})

	t.Run("converted quote cannot be declined", func(t *testing.T) {
		q := newTestQuote(t)
		require.NoError(t, q.MarkConverted(uuid.New()))
		assert.ErrorIs(t, q.Decline(), shared.ErrAlreadyConverted)
	})

	t.Run("lines frozen once sent", func(t *testing.T) {
		q := newTestQuote(t)
		require.NoError(t, q.MarkSent())
		_, err := q.AddLine("Extra", d("1"), d("10"), d("0"))
		assert.Error(t, err)
	})
}
