package printing

import (
	"time"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PartyData is one side of a document, the issuing company or the customer
type PartyData struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
	TaxID      string
}

// LineData is a single document line prepared for rendering
type LineData struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxPercent  decimal.Decimal
	Total       decimal.Decimal
}

// DocumentData carries everything the invoice and quote templates need
type DocumentData struct {
	Number   string
	Status   string
	Currency valueobject.Currency

	IssueDate  time.Time
	DueDate    time.Time
	ValidUntil *time.Time

	Company  PartyData
	Customer PartyData
	LogoURL  string

	Lines []LineData

	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal

	Notes string
	Terms string
}

// BuildInvoiceData assembles the render data for an invoice
func BuildInvoiceData(inv *billing.Invoice, comp *company.Company, cust *partner.Customer) *DocumentData {
	data := &DocumentData{
		Number:        inv.Number,
		Status:        inv.DisplayStatus(time.Now()).String(),
		Currency:      inv.Currency,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Company:       companyParty(comp),
		Customer:      customerParty(cust),
		LogoURL:       comp.LogoURL,
		Lines:         buildLines(inv.Items),
		Subtotal:      inv.Subtotal,
		DiscountTotal: inv.DiscountTotal,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
	}
	return data
}

// BuildQuoteData assembles the render data for a quote
func BuildQuoteData(q *billing.Quote, comp *company.Company, cust *partner.Customer) *DocumentData {
	return &DocumentData{
		Number:        q.Number,
		Status:        q.Status.String(),
		Currency:      q.Currency,
		IssueDate:     q.IssueDate,
		ValidUntil:    q.ValidUntil,
		Company:       companyParty(comp),
		Customer:      customerParty(cust),
		LogoURL:       comp.LogoURL,
		Lines:         buildLines(q.Items),
		Subtotal:      q.Subtotal,
		DiscountTotal: q.DiscountTotal,
		TaxTotal:      q.TaxTotal,
		Total:         q.Total,
		Notes:         q.Notes,
		Terms:         q.Terms,
	}
}

func companyParty(c *company.Company) PartyData {
	name := c.LegalName
	if name == "" {
		name = c.Name
	}
	return PartyData{
		Name:       name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
		TaxID:      c.TaxID,
	}
}

func customerParty(c *partner.Customer) PartyData {
	return PartyData{
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
		TaxID:      c.TaxID,
	}
}

func buildLines(items []billing.LineItem) []LineData {
	lines := make([]LineData, len(items))
	for i, item := range items {
		lines[i] = LineData{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxPercent:  item.TaxPercent,
			Total:       item.Total,
		}
	}
	return lines
}
