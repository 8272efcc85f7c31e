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

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByIDForTenant finds a quote with its lines by ID for a tenant
func (r *GormQuoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Quote, error) {
	var q billing.Quote
	if err := session(ctx, r.db).
		Preload("Items", orderLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// FindForTenant lists quotes for a tenant with filtering and pagination
func (r *GormQuoteRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Quote], error) {
	base := session(ctx, r.db).Model(&billing.Quote{}).Where("tenant_id = ?", tenantID)
	base = r.applyFilters(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var quotes []billing.Quote
	if err := applyPagination(base.Preload("Items", orderLines), filter).Find(&quotes).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(quotes, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Save creates or updates a quote and its lines
func (r *GormQuoteRepository) Save(ctx context.Context, q *billing.Quote) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(q).Error; err != nil {
			return err
		}
		return saveLines(tx, q.ID, q.Items)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, q *billing.Quote) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		currentVersion := q.Version
		q.Version++
		q.UpdatedAt = time.Now()

		result := tx.Model(&billing.Quote{}).
			Where("id = ? AND tenant_id = ? AND version = ?", q.ID, q.TenantID, currentVersion).
			Omit("Items").
			Select("*").
			Updates(q)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			q.Version = currentVersion
			return shared.ErrConcurrencyConflict
		}

		return saveLines(tx, q.ID, q.Items)
	})
}

// DeleteForTenant deletes a draft quote for a tenant
func (r *GormQuoteRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Quote{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilters applies search and filter options without pagination
func (r *GormQuoteRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "valid_until_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("valid_until < ?", t)
			}
		}
	}
	return query
}

// Ensure GormQuoteRepository implements QuoteRepository
var _ billing.QuoteRepository = (*GormQuoteRepository)(nil)
