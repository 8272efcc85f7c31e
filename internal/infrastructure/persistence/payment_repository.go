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

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment by ID for a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	var p billing.Payment
	if err := session(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByInvoice lists payments recorded against an invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	if err := session(ctx, r.db).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("payment_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindForTenant lists payments for a tenant with filtering and pagination
func (r *GormPaymentRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Payment], error) {
	base := session(ctx, r.db).Model(&billing.Payment{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("number LIKE ? OR reference LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			base = base.Where("customer_id = ?", value)
		case "invoice_id":
			base = base.Where("invoice_id = ?", value)
		case "method":
			base = base.Where("method = ?", value)
		case "date_from":
			if t, ok := value.(time.Time); ok {
				base = base.Where("payment_date >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				base = base.Where("payment_date <= ?", t)
			}
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var payments []billing.Payment
	if err := applyPagination(base, filter).Find(&payments).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Create inserts a new payment record
func (r *GormPaymentRepository) Create(ctx context.Context, p *billing.Payment) error {
	return session(ctx, r.db).Create(p).Error
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
