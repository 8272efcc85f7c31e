package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/timesheet"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTimeEntryRepository implements TimeEntryRepository using GORM
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewGormTimeEntryRepository creates a new GormTimeEntryRepository
func NewGormTimeEntryRepository(db *gorm.DB) *GormTimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// FindByIDForTenant finds a time entry by ID for a tenant
func (r *GormTimeEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*timesheet.TimeEntry, error) {
	var te timesheet.TimeEntry
	if err := session(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&te).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &te, nil
}

// FindForTenant lists time entries for a tenant with filtering and pagination
func (r *GormTimeEntryRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[timesheet.TimeEntry], error) {
	base := session(ctx, r.db).Model(&timesheet.TimeEntry{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		base = base.Where("description LIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "billable":
			base = base.Where("billable = ?", value)
		case "customer_id":
			base = base.Where("customer_id = ?", value)
		case "date_from":
			if t, ok := value.(time.Time); ok {
				base = base.Where("entry_date >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				base = base.Where("entry_date <= ?", t)
			}
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []timesheet.TimeEntry
	if err := applyPagination(base, filter).Find(&entries).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindBillableUninvoiced lists billable entries for a customer that have
// not yet been placed on an invoice
func (r *GormTimeEntryRepository) FindBillableUninvoiced(ctx context.Context, tenantID, customerID uuid.UUID) ([]timesheet.TimeEntry, error) {
	var entries []timesheet.TimeEntry
	if err := session(ctx, r.db).
		Where("tenant_id = ? AND customer_id = ? AND billable = ? AND invoiced_on_id IS NULL",
			tenantID, customerID, true).
		Order("entry_date ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SumHours sums tracked hours in a date range
func (r *GormTimeEntryRepository) SumHours(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := session(ctx, r.db).
		Model(&timesheet.TimeEntry{}).
		Select("COALESCE(SUM(hours), 0)").
		Where("tenant_id = ? AND entry_date >= ? AND entry_date <= ?", tenantID, from, to).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Save creates or updates a time entry
func (r *GormTimeEntryRepository) Save(ctx context.Context, te *timesheet.TimeEntry) error {
	return session(ctx, r.db).Save(te).Error
}

// DeleteForTenant deletes a time entry for a tenant
func (r *GormTimeEntryRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := session(ctx, r.db).Delete(&timesheet.TimeEntry{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormTimeEntryRepository implements TimeEntryRepository
var _ timesheet.TimeEntryRepository = (*GormTimeEntryRepository)(nil)
