package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRecurringTemplateRepository implements RecurringTemplateRepository using GORM
type GormRecurringTemplateRepository struct {
	db *gorm.DB
}

// NewGormRecurringTemplateRepository creates a new GormRecurringTemplateRepository
func NewGormRecurringTemplateRepository(db *gorm.DB) *GormRecurringTemplateRepository {
	return &GormRecurringTemplateRepository{db: db}
}

// FindByIDForTenant finds a template with its lines by ID for a tenant
func (r *GormRecurringTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.RecurringTemplate, error) {
	var tpl billing.RecurringTemplate
	if err := session(ctx, r.db).
		Preload("Items", orderLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// FindForTenant lists templates for a tenant with filtering and pagination
func (r *GormRecurringTemplateRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.RecurringTemplate], error) {
	base := session(ctx, r.db).Model(&billing.RecurringTemplate{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		base = base.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			base = base.Where("customer_id = ?", value)
		case "active":
			base = base.Where("active = ?", value)
		case "frequency":
			base = base.Where("frequency = ?", value)
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var templates []billing.RecurringTemplate
	if err := applyPagination(base.Preload("Items", orderLines), filter).Find(&templates).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(templates, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindDue lists active templates due for generation at the given time
func (r *GormRecurringTemplateRepository) FindDue(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]billing.RecurringTemplate, error) {
	var templates []billing.RecurringTemplate
	if err := session(ctx, r.db).
		Preload("Items", orderLines).
		Where("tenant_id = ? AND active = ? AND next_generation_date <= ?", tenantID, true, now).
		Order("next_generation_date ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Save creates or updates a template and its lines
func (r *GormRecurringTemplateRepository) Save(ctx context.Context, t *billing.RecurringTemplate) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(t).Error; err != nil {
			return err
		}
		return saveLines(tx, t.ID, t.Items)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormRecurringTemplateRepository) SaveWithLock(ctx context.Context, t *billing.RecurringTemplate) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		currentVersion := t.Version
		t.Version++
		t.UpdatedAt = time.Now()

		result := tx.Model(&billing.RecurringTemplate{}).
			Where("id = ? AND tenant_id = ? AND version = ?", t.ID, t.TenantID, currentVersion).
			Omit("Items").
			Select("*").
			Updates(t)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			t.Version = currentVersion
			return shared.ErrConcurrencyConflict
		}

		return saveLines(tx, t.ID, t.Items)
	})
}

// DeleteForTenant deletes a template for a tenant
func (r *GormRecurringTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.RecurringTemplate{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormRecurringTemplateRepository implements RecurringTemplateRepository
var _ billing.RecurringTemplateRepository = (*GormRecurringTemplateRepository)(nil)
