package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/expense"
	"github.com/invoicehub/backend/internal/domain/report"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/timesheet"
)

const (
	defaultRevenueMonths = 12
	defaultTopCustomers  = 5
	recentInvoiceCount   = 5
)

// DashboardService assembles the aggregate numbers behind the dashboard
type DashboardService struct {
	dashboards report.DashboardRepository
	invoices   billing.InvoiceRepository
	expenses   expense.ExpenseRepository
	entries    timesheet.TimeEntryRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	dashboards report.DashboardRepository,
	invoices billing.InvoiceRepository,
	expenses expense.ExpenseRepository,
	entries timesheet.TimeEntryRepository,
) *DashboardService {
	return &DashboardService{
		dashboards: dashboards,
		invoices:   invoices,
		expenses:   expenses,
		entries:    entries,
	}
}

// GetDashboard returns status counts, receivables, this month's money
// movement and the revenue trend for the given tenant
func (s *DashboardService) GetDashboard(ctx context.Context, tenantID uuid.UUID, filter DashboardFilter) (*DashboardResponse, error) {
	months := filter.Months
	if months <= 0 {
		months = defaultRevenueMonths
	}
	topN := filter.TopCustomers
	if topN <= 0 {
		topN = defaultTopCustomers
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	trendStart := monthStart.AddDate(0, -(months - 1), 0)

	counts, err := s.dashboards.CountInvoicesByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	statusCounts := make(map[string]int64, len(counts))
	for _, c := range counts {
		statusCounts[c.Status] = c.Count
	}

	receivables, err := s.dashboards.GetReceivablesSummary(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	paidThisMonth, err := s.dashboards.SumPaymentsBetween(ctx, tenantID, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}

	revenue, err := s.dashboards.GetMonthlyRevenue(ctx, tenantID, trendStart, nextMonth)
	if err != nil {
		return nil, err
	}

	topCustomers, err := s.dashboards.GetTopCustomers(ctx, tenantID, trendStart, nextMonth, topN)
	if err != nil {
		return nil, err
	}

	recent, err := s.recentInvoices(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	expenseTotals, err := s.expenses.SumByCategory(ctx, tenantID, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}

	hours, err := s.entries.SumHours(ctx, tenantID, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}

	resp := &DashboardResponse{
		StatusCounts:      statusCounts,
		OutstandingTotal:  receivables.OutstandingTotal,
		OutstandingCount:  receivables.OutstandingCount,
		OverdueTotal:      receivables.OverdueTotal,
		OverdueCount:      receivables.OverdueCount,
		PaidThisMonth:     paidThisMonth,
		ExpensesThisMonth: toCategoryTotals(expenseTotals),
		HoursThisMonth:    hours,
		RecentInvoices:    recent,
		MonthlyRevenue:    toMonthlyRevenue(revenue),
		TopCustomers:      toTopCustomers(topCustomers),
		GeneratedAt:       now,
	}
	return resp, nil
}

func (s *DashboardService) recentInvoices(ctx context.Context, tenantID uuid.UUID) ([]RecentInvoiceResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = recentInvoiceCount

	page, err := s.invoices.FindForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rows := make([]RecentInvoiceResponse, len(page.Items))
	for i, inv := range page.Items {
		rows[i] = RecentInvoiceResponse{
			ID:         inv.ID,
			Number:     inv.Number,
			CustomerID: inv.CustomerID,
			Status:     string(inv.DisplayStatus(now)),
			IssueDate:  inv.IssueDate,
			DueDate:    inv.DueDate,
			Total:      inv.Total,
			AmountDue:  inv.AmountDue,
		}
	}
	return rows, nil
}

func toMonthlyRevenue(revenue []report.MonthlyRevenue) []MonthlyRevenueResponse {
	rows := make([]MonthlyRevenueResponse, len(revenue))
	for i, r := range revenue {
		rows[i] = MonthlyRevenueResponse{
			Year:         r.Year,
			Month:        r.Month,
			PaymentCount: r.PaymentCount,
			Total:        r.Total,
		}
	}
	return rows
}

func toTopCustomers(customers []report.CustomerRevenue) []TopCustomerResponse {
	rows := make([]TopCustomerResponse, len(customers))
	for i, c := range customers {
		rows[i] = TopCustomerResponse{
			CustomerID:   c.CustomerID,
			CustomerName: c.CustomerName,
			InvoiceCount: c.InvoiceCount,
			Total:        c.Total,
		}
	}
	return rows
}

// toCategoryTotals flattens the category map into a stable ordering
func toCategoryTotals(totals map[expense.Category]decimal.Decimal) []ExpenseCategoryTotal {
	rows := make([]ExpenseCategoryTotal, 0, len(totals))
	for category, total := range totals {
		rows = append(rows, ExpenseCategoryTotal{Category: string(category), Total: total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows
}
