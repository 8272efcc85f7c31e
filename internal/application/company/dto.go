package company

import (
	"time"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/company"
)

// CreateCompanyRequest represents a request to create a company
type CreateCompanyRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	LegalName       string `json:"legal_name"`
	Email           string `json:"email" binding:"omitempty,email"`
	Phone           string `json:"phone"`
	Website         string `json:"website"`
	TaxID           string `json:"tax_id"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	PostalCode      string `json:"postal_code"`
	Country         string `json:"country"`
	Currency        string `json:"currency" binding:"omitempty,len=3"`
	PaymentTermDays *int   `json:"payment_term_days" binding:"omitempty,min=0"`
	InvoicePrefix   string `json:"invoice_prefix" binding:"omitempty,max=10"`
	QuotePrefix     string `json:"quote_prefix" binding:"omitempty,max=10"`
	DefaultNotes    string `json:"default_notes"`
	DefaultTerms    string `json:"default_terms"`
	IsDefault       bool   `json:"is_default"`
}

// UpdateCompanyRequest represents a request to update a company.
// Nil fields are left unchanged.
type UpdateCompanyRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=200"`
	LegalName       *string `json:"legal_name"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Phone           *string `json:"phone"`
	Website         *string `json:"website"`
	TaxID           *string `json:"tax_id"`
	Address         *string `json:"address"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	PostalCode      *string `json:"postal_code"`
	Country         *string `json:"country"`
	LogoURL         *string `json:"logo_url"`
	Currency        *string `json:"currency" binding:"omitempty,len=3"`
	PaymentTermDays *int    `json:"payment_term_days" binding:"omitempty,min=0"`
	InvoicePrefix   *string `json:"invoice_prefix" binding:"omitempty,max=10"`
	QuotePrefix     *string `json:"quote_prefix" binding:"omitempty,max=10"`
	DefaultNotes    *string `json:"default_notes"`
	DefaultTerms    *string `json:"default_terms"`
}

// CompanyListFilter represents filtering options for company listing
type CompanyListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	Name            string    `json:"name"`
	LegalName       string    `json:"legal_name,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Website         string    `json:"website,omitempty"`
	TaxID           string    `json:"tax_id,omitempty"`
	Address         string    `json:"address,omitempty"`
	City            string    `json:"city,omitempty"`
	State           string    `json:"state,omitempty"`
	PostalCode      string    `json:"postal_code,omitempty"`
	Country         string    `json:"country,omitempty"`
	LogoURL         string    `json:"logo_url,omitempty"`
	Currency        string    `json:"currency"`
	PaymentTermDays int       `json:"payment_term_days"`
	InvoicePrefix   string    `json:"invoice_prefix"`
	QuotePrefix     string    `json:"quote_prefix"`
	DefaultNotes    string    `json:"default_notes,omitempty"`
	DefaultTerms    string    `json:"default_terms,omitempty"`
	IsDefault       bool      `json:"is_default"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int       `json:"version"`
}

// ToCompanyResponse converts a domain company to a response DTO
func ToCompanyResponse(c *company.Company) CompanyResponse {
	return CompanyResponse{
		ID:              c.ID,
		TenantID:        c.TenantID,
		Name:            c.Name,
		LegalName:       c.LegalName,
		Email:           c.Email,
		Phone:           c.Phone,
		Website:         c.Website,
		TaxID:           c.TaxID,
		Address:         c.Address,
		City:            c.City,
		State:           c.State,
		PostalCode:      c.PostalCode,
		Country:         c.Country,
		LogoURL:         c.LogoURL,
		Currency:        string(c.Currency),
		PaymentTermDays: c.PaymentTermDays,
		InvoicePrefix:   c.InvoicePrefix,
		QuotePrefix:     c.QuotePrefix,
		DefaultNotes:    c.DefaultNotes,
		DefaultTerms:    c.DefaultTerms,
		IsDefault:       c.IsDefault,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

// ToCompanyResponses converts a slice of domain companies to response DTOs
func ToCompanyResponses(companies []company.Company) []CompanyResponse {
	responses := make([]CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = ToCompanyResponse(&companies[i])
	}
	return responses
}
