package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = AutoMigrateModels(db)
	require.NoError(t, err)

	return db
}

func newPersistedInvoice(t *testing.T, repo *GormInvoiceRepository, tenantID uuid.UUID) *billing.Invoice {
	t.Helper()

	issueDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv, err := billing.NewInvoice(tenantID, uuid.New(), uuid.New(), "INV-00001",
		issueDate, issueDate.AddDate(0, 0, 30), valueobject.USD)
	require.NoError(t, err)

	_, err = inv.AddLine("Consulting", decimal.NewFromInt(10), decimal.NewFromInt(150), decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = inv.AddLine("Hosting", decimal.NewFromInt(1), decimal.NewFromInt(50), decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), inv))
	return inv
}

func TestInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	inv := newPersistedInvoice(t, repo, tenantID)

	t.Run("finds by id with lines in order", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
		require.NoError(t, err)

		assert.Equal(t, "INV-00001", found.Number)
		require.Len(t, found.Items, 2)
		assert.Equal(t, "Consulting", found.Items[0].Description)
		assert.Equal(t, "Hosting", found.Items[1].Description)
		assert.True(t, found.Total.Equal(decimal.NewFromInt(1700)), "got %s", found.Total)
	})

	t.Run("finds by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, tenantID, "INV-00001")
		require.NoError(t, err)
		assert.Equal(t, inv.ID, found.ID)
	})

	t.Run("not found for other tenant", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), inv.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("removed lines are deleted on save", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
		require.NoError(t, err)

		require.NoError(t, found.RemoveLine(found.Items[1].ID))
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		assert.Len(t, reloaded.Items, 1)

		var orphans int64
		require.NoError(t, db.Model(&billing.LineItem{}).
			Where("document_id = ?", inv.ID).Count(&orphans).Error)
		assert.Equal(t, int64(1), orphans)
	})
}

func TestInvoiceRepository_FindByPublicToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	inv := newPersistedInvoice(t, repo, tenantID)
	require.NoError(t, inv.MarkSent())
	require.NoError(t, inv.EnablePublicAccess("tok-abc123", nil))
	require.NoError(t, repo.Save(ctx, inv))

	found, err := repo.FindByPublicToken(ctx, "tok-abc123")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, found.ID)

	_, err = repo.FindByPublicToken(ctx, "tok-unknown")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceRepository_FindOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	issueDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	overdueInv, err := billing.NewInvoice(tenantID, uuid.New(), uuid.New(), "INV-00001",
		issueDate, issueDate.AddDate(0, 0, 14), valueobject.USD)
	require.NoError(t, err)
	_, err = overdueInv.AddLine("Work", decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, overdueInv.MarkSent())
	require.NoError(t, repo.Save(ctx, overdueInv))

	draftInv, err := billing.NewInvoice(tenantID, uuid.New(), uuid.New(), "INV-00002",
		issueDate, issueDate.AddDate(0, 0, 14), valueobject.USD)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, draftInv))

	result, err := repo.FindOverdue(ctx, tenantID, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), shared.DefaultFilter())
	require.NoError(t, err)

	// Drafts are never overdue regardless of due date
	require.Len(t, result.Items, 1)
	assert.Equal(t, "INV-00001", result.Items[0].Number)
	assert.Equal(t, int64(1), result.Total)
}

func TestInvoiceRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	inv := newPersistedInvoice(t, repo, tenantID)

	first, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	second, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
	require.NoError(t, err)

	first.SetNotes("updated first", "")
	require.NoError(t, repo.SaveWithLock(ctx, first))

	second.SetNotes("updated second", "")
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestInvoiceRepository_DeleteForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	inv := newPersistedInvoice(t, repo, tenantID)

	require.NoError(t, repo.DeleteForTenant(ctx, tenantID, inv.ID))

	_, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var lines int64
	require.NoError(t, db.Model(&billing.LineItem{}).
		Where("document_id = ?", inv.ID).Count(&lines).Error)
	assert.Equal(t, int64(0), lines)
}

func TestTxRunner_RollsBackAcrossRepositories(t *testing.T) {
	db := setupTestDB(t)
	invoiceRepo := NewGormInvoiceRepository(db)
	paymentRepo := NewGormPaymentRepository(db)
	runner := NewGormTxRunner(db)
	ctx := context.Background()
	tenantID := uuid.New()

	inv := newPersistedInvoice(t, invoiceRepo, tenantID)
	require.NoError(t, inv.MarkSent())
	require.NoError(t, invoiceRepo.Save(ctx, inv))

	boom := errors.New("boom")
	err := runner.InTx(ctx, func(ctx context.Context) error {
		payment, err := billing.NewPayment(tenantID, "PAY-00001", inv.ID, inv.CustomerID,
			decimal.NewFromInt(500), valueobject.USD, billing.PaymentMethodBankTransfer,
			time.Now(), "")
		if err != nil {
			return err
		}
		if err := paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		if err := inv.ApplyPayment(decimal.NewFromInt(500)); err != nil {
			return err
		}
		if err := invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	reloaded, err := invoiceRepo.FindByIDForTenant(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.AmountPaid.IsZero())

	payments, err := paymentRepo.FindByInvoice(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}
