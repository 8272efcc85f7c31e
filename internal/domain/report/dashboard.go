package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models for the dashboard. These are query projections computed
// in SQL, not aggregates.

// StatusCount holds the invoice count for one stored status
type StatusCount struct {
	Status string
	Count  int64
}

// ReceivablesSummary summarizes what customers still owe
type ReceivablesSummary struct {
	OutstandingTotal decimal.Decimal
	OutstandingCount int64
	OverdueTotal     decimal.Decimal
	OverdueCount     int64
}

// MonthlyRevenue holds collected payment totals for one calendar month
type MonthlyRevenue struct {
	Year         int
	Month        int
	PaymentCount int64
	Total        decimal.Decimal
}

// CustomerRevenue holds invoiced totals for one customer
type CustomerRevenue struct {
	CustomerID   uuid.UUID
	CustomerName string
	InvoiceCount int64
	Total        decimal.Decimal
}

// DashboardRepository defines the read-side queries behind the dashboard
type DashboardRepository interface {
	// CountInvoicesByStatus counts invoices per stored status for a tenant
	CountInvoicesByStatus(ctx context.Context, tenantID uuid.UUID) ([]StatusCount, error)

	// GetReceivablesSummary sums open and overdue invoice balances.
	// Overdue means sent or partial with a due date before now.
	GetReceivablesSummary(ctx context.Context, tenantID uuid.UUID, now time.Time) (*ReceivablesSummary, error)

	// SumPaymentsBetween sums payment amounts received in [from, to)
	SumPaymentsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	// GetMonthlyRevenue groups payments received in [from, to) by calendar month
	GetMonthlyRevenue(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]MonthlyRevenue, error)

	// GetTopCustomers ranks customers by non-void invoiced total in [from, to)
	GetTopCustomers(ctx context.Context, tenantID uuid.UUID, from, to time.Time, topN int) ([]CustomerRevenue, error)
}
