package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/expense"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByIDForTenant finds an expense by ID for a tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ExpenseRecord, error) {
	var e expense.ExpenseRecord
	if err := session(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindForTenant lists expenses for a tenant with filtering and pagination
func (r *GormExpenseRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[expense.ExpenseRecord], error) {
	base := session(ctx, r.db).Model(&expense.ExpenseRecord{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("description LIKE ? OR vendor LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "category":
			base = base.Where("category = ?", value)
		case "billable":
			base = base.Where("billable = ?", value)
		case "customer_id":
			base = base.Where("customer_id = ?", value)
		case "date_from":
			if t, ok := value.(time.Time); ok {
				base = base.Where("expense_date >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				base = base.Where("expense_date <= ?", t)
			}
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var records []expense.ExpenseRecord
	if err := applyPagination(base, filter).Find(&records).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(records, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindBillableUninvoiced lists billable expenses for a customer that have
// not yet been placed on an invoice
func (r *GormExpenseRepository) FindBillableUninvoiced(ctx context.Context, tenantID, customerID uuid.UUID) ([]expense.ExpenseRecord, error) {
	var records []expense.ExpenseRecord
	if err := session(ctx, r.db).
		Where("tenant_id = ? AND customer_id = ? AND billable = ? AND invoiced_on_id IS NULL",
			tenantID, customerID, true).
		Order("expense_date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SumByCategory sums expense amounts per category in a date range
func (r *GormExpenseRepository) SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[expense.Category]decimal.Decimal, error) {
	type row struct {
		Category expense.Category
		Total    decimal.Decimal
	}
	var rows []row
	if err := session(ctx, r.db).
		Model(&expense.ExpenseRecord{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND expense_date >= ? AND expense_date <= ?", tenantID, from, to).
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[expense.Category]decimal.Decimal, len(rows))
	for _, r := range rows {
		sums[r.Category] = r.Total
	}
	return sums, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, e *expense.ExpenseRecord) error {
	return session(ctx, r.db).Save(e).Error
}

// DeleteForTenant deletes an expense for a tenant
func (r *GormExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := session(ctx, r.db).Delete(&expense.ExpenseRecord{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ expense.ExpenseRepository = (*GormExpenseRepository)(nil)
