package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/report"
)

// GormDashboardRepository implements report.DashboardRepository using GORM
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// CountInvoicesByStatus counts invoices per stored status for a tenant
func (r *GormDashboardRepository) CountInvoicesByStatus(ctx context.Context, tenantID uuid.UUID) ([]report.StatusCount, error) {
	var counts []report.StatusCount
	err := session(ctx, r.db).
		Model(&billing.Invoice{}).
		Select("status, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// GetReceivablesSummary sums open and overdue invoice balances
func (r *GormDashboardRepository) GetReceivablesSummary(ctx context.Context, tenantID uuid.UUID, now time.Time) (*report.ReceivablesSummary, error) {
	openStatuses := []billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusPartial}

	var outstanding struct {
		Total decimal.Decimal
		Count int64
	}
	err := session(ctx, r.db).
		Model(&billing.Invoice{}).
		Select("COALESCE(SUM(amount_due), 0) AS total, COUNT(*) AS count").
		Where("tenant_id = ? AND status IN ?", tenantID, openStatuses).
		Scan(&outstanding).Error
	if err != nil {
		return nil, err
	}

	var overdue struct {
		Total decimal.Decimal
		Count int64
	}
	err = session(ctx, r.db).
		Model(&billing.Invoice{}).
		Select("COALESCE(SUM(amount_due), 0) AS total, COUNT(*) AS count").
		Where("tenant_id = ? AND status IN ? AND due_date < ?", tenantID, openStatuses, now).
		Scan(&overdue).Error
	if err != nil {
		return nil, err
	}

	return &report.ReceivablesSummary{
		OutstandingTotal: outstanding.Total,
		OutstandingCount: outstanding.Count,
		OverdueTotal:     overdue.Total,
		OverdueCount:     overdue.Count,
	}, nil
}

// SumPaymentsBetween sums payment amounts received in [from, to)
func (r *GormDashboardRepository) SumPaymentsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := session(ctx, r.db).
		Model(&billing.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND payment_date >= ? AND payment_date < ?", tenantID, from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// GetMonthlyRevenue groups payments received in [from, to) by calendar
// month. Bucketing happens here since month extraction is not portable
// across postgres and sqlite.
func (r *GormDashboardRepository) GetMonthlyRevenue(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]report.MonthlyRevenue, error) {
	var rows []struct {
		PaymentDate time.Time
		Amount      decimal.Decimal
	}
	err := session(ctx, r.db).
		Model(&billing.Payment{}).
		Select("payment_date, amount").
		Where("tenant_id = ? AND payment_date >= ? AND payment_date < ?", tenantID, from, to).
		Order("payment_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var revenue []report.MonthlyRevenue
	for _, row := range rows {
		year, month := row.PaymentDate.Year(), int(row.PaymentDate.Month())
		if n := len(revenue); n > 0 && revenue[n-1].Year == year && revenue[n-1].Month == month {
			revenue[n-1].PaymentCount++
			revenue[n-1].Total = revenue[n-1].Total.Add(row.Amount)
			continue
		}
		revenue = append(revenue, report.MonthlyRevenue{
			Year:         year,
			Month:        month,
			PaymentCount: 1,
			Total:        row.Amount,
		})
	}
	return revenue, nil
}

// GetTopCustomers ranks customers by non-void invoiced total in [from, to)
func (r *GormDashboardRepository) GetTopCustomers(ctx context.Context, tenantID uuid.UUID, from, to time.Time, topN int) ([]report.CustomerRevenue, error) {
	var customers []report.CustomerRevenue
	err := session(ctx, r.db).
		Table("invoices").
		Select("invoices.customer_id, customers.name AS customer_name, COUNT(*) AS invoice_count, COALESCE(SUM(invoices.total), 0) AS total").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.tenant_id = ? AND invoices.status <> ? AND invoices.issue_date >= ? AND invoices.issue_date < ?",
			tenantID, billing.InvoiceStatusVoid, from, to).
		Group("invoices.customer_id, customers.name").
		Order("total DESC").
		Limit(topN).
		Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// Ensure GormDashboardRepository implements DashboardRepository
var _ report.DashboardRepository = (*GormDashboardRepository)(nil)
