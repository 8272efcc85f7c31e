package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSequencerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&numberSequence{})
	require.NoError(t, err)

	return db
}

func TestNumberSequencer_NextNumber(t *testing.T) {
	db := setupSequencerTestDB(t)
	seq := NewGormNumberSequencer(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("starts at one and pads to five digits", func(t *testing.T) {
		number, err := seq.NextNumber(ctx, tenantID, shared.SeriesInvoice, "INV")
		require.NoError(t, err)
		assert.Equal(t, "INV-00001", number)
	})

	t.Run("numbers are sequential and never repeat", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			number, err := seq.NextNumber(ctx, tenantID, shared.SeriesInvoice, "INV")
			require.NoError(t, err)
			assert.False(t, seen[number], "number %s issued twice", number)
			seen[number] = true
		}
	})

	t.Run("series have independent counters", func(t *testing.T) {
		number, err := seq.NextNumber(ctx, tenantID, shared.SeriesQuote, "QUO")
		require.NoError(t, err)
		assert.Equal(t, "QUO-00001", number)
	})

	t.Run("tenants have independent counters", func(t *testing.T) {
		number, err := seq.NextNumber(ctx, uuid.New(), shared.SeriesInvoice, "INV")
		require.NoError(t, err)
		assert.Equal(t, "INV-00001", number)
	})

	t.Run("empty prefix falls back to the series default", func(t *testing.T) {
		number, err := seq.NextNumber(ctx, uuid.New(), shared.SeriesPayment, "")
		require.NoError(t, err)
		assert.Equal(t, "PAY-00001", number)
	})
}

func TestNumberSequencer_RollbackDoesNotConsumeNumber(t *testing.T) {
	db := setupSequencerTestDB(t)
	seq := NewGormNumberSequencer(db)
	runner := NewGormTxRunner(db)
	ctx := context.Background()
	tenantID := uuid.New()

	boom := errors.New("boom")
	err := runner.InTx(ctx, func(ctx context.Context) error {
		_, err := seq.NextNumber(ctx, tenantID, shared.SeriesInvoice, "INV")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	number, err := seq.NextNumber(ctx, tenantID, shared.SeriesInvoice, "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", number)
}

func TestNumberSequencer_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	db := setupSequencerTestDB(t)
	// A single connection keeps the goroutines on one in-memory
	// database; SQLite serializes their transactions on it.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	seq := NewGormNumberSequencer(db)
	ctx := context.Background()
	tenantID := uuid.New()

	const callers = 20
	numbers := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := seq.NextNumber(ctx, tenantID, shared.SeriesInvoice, "INV")
			assert.NoError(t, err)
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for number := range numbers {
		assert.False(t, seen[number], "number %s issued twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, callers)

	// The counter advanced exactly once per caller.
	next, err := seq.NextNumber(ctx, tenantID, shared.SeriesInvoice, "INV")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%05d", callers+1), next)
}
