package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardFilter defines the request options for the dashboard
type DashboardFilter struct {
	Months       int `form:"months" binding:"omitempty,min=1,max=36"`
	TopCustomers int `form:"top_customers" binding:"omitempty,min=1,max=50"`
}

// RecentInvoiceResponse is the trimmed invoice row shown on the dashboard
type RecentInvoiceResponse struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Status     string          `json:"status"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    time.Time       `json:"due_date"`
	Total      decimal.Decimal `json:"total"`
	AmountDue  decimal.Decimal `json:"amount_due"`
}

// MonthlyRevenueResponse holds collected totals for one calendar month
type MonthlyRevenueResponse struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	PaymentCount int64           `json:"payment_count"`
	Total        decimal.Decimal `json:"total"`
}

// TopCustomerResponse holds invoiced totals for one customer
type TopCustomerResponse struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	InvoiceCount int64           `json:"invoice_count"`
	Total        decimal.Decimal `json:"total"`
}

// ExpenseCategoryTotal holds spending for one expense category
type ExpenseCategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// DashboardResponse is the aggregate view behind the dashboard screen
type DashboardResponse struct {
	StatusCounts      map[string]int64         `json:"status_counts"`
	OutstandingTotal  decimal.Decimal          `json:"outstanding_total"`
	OutstandingCount  int64                    `json:"outstanding_count"`
	OverdueTotal      decimal.Decimal          `json:"overdue_total"`
	OverdueCount      int64                    `json:"overdue_count"`
	PaidThisMonth     decimal.Decimal          `json:"paid_this_month"`
	ExpensesThisMonth []ExpenseCategoryTotal   `json:"expenses_this_month"`
	HoursThisMonth    decimal.Decimal          `json:"hours_this_month"`
	RecentInvoices    []RecentInvoiceResponse  `json:"recent_invoices"`
	MonthlyRevenue    []MonthlyRevenueResponse `json:"monthly_revenue"`
	TopCustomers      []TopCustomerResponse    `json:"top_customers"`
	GeneratedAt       time.Time                `json:"generated_at"`
}
