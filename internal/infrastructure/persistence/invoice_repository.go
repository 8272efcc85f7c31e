package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice with its lines by ID for a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var inv billing.Invoice
	if err := session(ctx, r.db).
		Preload("Items", orderLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByNumber finds an invoice by number for a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Invoice, error) {
	var inv billing.Invoice
	if err := session(ctx, r.db).
		Preload("Items", orderLines).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByPublicToken finds an invoice by its public portal token
func (r *GormInvoiceRepository) FindByPublicToken(ctx context.Context, token string) (*billing.Invoice, error) {
	var inv billing.Invoice
	if err := session(ctx, r.db).
		Preload("Items", orderLines).
		Where("public_token = ?", token).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindForTenant lists invoices for a tenant with filtering and pagination
func (r *GormInvoiceRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	base := session(ctx, r.db).Model(&billing.Invoice{}).Where("tenant_id = ?", tenantID)
	base = r.applyFilters(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var invoices []billing.Invoice
	if err := applyPagination(base.Preload("Items", orderLines), filter).Find(&invoices).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindOverdue lists unpaid invoices whose due date passed before the given time
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, before time.Time, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	base := session(ctx, r.db).Model(&billing.Invoice{}).
		Where("tenant_id = ? AND due_date < ? AND status IN ?", tenantID, before,
			[]billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusPartial})

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var invoices []billing.Invoice
	if err := applyPagination(base.Preload("Items", orderLines), filter).Find(&invoices).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Save creates or updates an invoice and its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(inv).Error; err != nil {
			return err
		}
		return saveLines(tx, inv.ID, inv.Items)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		currentVersion := inv.Version
		inv.Version++
		inv.UpdatedAt = time.Now()

		result := tx.Model(&billing.Invoice{}).
			Where("id = ? AND tenant_id = ? AND version = ?", inv.ID, inv.TenantID, currentVersion).
			Omit("Items").
			Select("*").
			Updates(inv)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			inv.Version = currentVersion
			return shared.ErrConcurrencyConflict
		}

		return saveLines(tx, inv.ID, inv.Items)
	})
}

// DeleteForTenant deletes a draft invoice for a tenant
func (r *GormInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Invoice{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountByStatus counts invoices by stored status for a tenant
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status billing.InvoiceStatus) (int64, error) {
	var count int64
	if err := session(ctx, r.db).
		Model(&billing.Invoice{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilters applies search and filter options without pagination
func (r *GormInvoiceRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "company_id":
			query = query.Where("company_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "date_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date <= ?", t)
			}
		}
	}
	return query
}

// orderLines keeps preloaded line items in their document order
func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// saveLines replaces a document's lines with the given set
func saveLines(tx *gorm.DB, documentID uuid.UUID, lines []billing.LineItem) error {
	currentIDs := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		currentIDs[i] = line.ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("document_id = ? AND id NOT IN ?", documentID, currentIDs).
			Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("document_id = ?", documentID).
			Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
	}

	for i := range lines {
		lines[i].DocumentID = documentID
		if err := tx.Save(&lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyPagination applies pagination and ordering to the query
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	} else {
		query = query.Order("created_at DESC")
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
