package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByIDForTenant finds a company by ID for a tenant
func (r *GormCompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error) {
	var c company.Company
	if err := session(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindDefaultForTenant finds the tenant's default company
func (r *GormCompanyRepository) FindDefaultForTenant(ctx context.Context, tenantID uuid.UUID) (*company.Company, error) {
	var c company.Company
	if err := session(ctx, r.db).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindForTenant lists companies for a tenant
func (r *GormCompanyRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[company.Company], error) {
	base := session(ctx, r.db).Model(&company.Company{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		base = base.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var companies []company.Company
	if err := applyPagination(base, filter).Find(&companies).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(companies, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	return session(ctx, r.db).Save(c).Error
}

// SetDefault marks the given company as the tenant default and clears the
// flag on all siblings atomically
func (r *GormCompanyRepository) SetDefault(ctx context.Context, tenantID, id uuid.UUID) error {
	return session(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var target company.Company
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&company.Company{}).
			Where("tenant_id = ? AND id <> ?", tenantID, id).
			Update("is_default", false).Error; err != nil {
			return err
		}

		return tx.Model(&company.Company{}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			Update("is_default", true).Error
	})
}

// DeleteForTenant deletes a company for a tenant
func (r *GormCompanyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := session(ctx, r.db).Delete(&company.Company{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCompanyRepository implements CompanyRepository
var _ company.CompanyRepository = (*GormCompanyRepository)(nil)
