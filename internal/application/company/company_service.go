package company

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
)

// CompanyService manages the tenant's issuing companies and their
// document defaults
type CompanyService struct {
	companies company.CompanyRepository
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companies company.CompanyRepository) *CompanyService {
	return &CompanyService{
		companies: companies,
	}
}

// Create creates a new company. The first company of a tenant becomes
// the default automatically.
func (s *CompanyService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	comp, err := company.NewCompany(tenantID, req.Name, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}

	if err := comp.Update(req.Name, req.LegalName, req.Email, req.Phone, req.Website, req.TaxID); err != nil {
		return nil, err
	}
	comp.UpdateAddress(req.Address, req.City, req.State, req.PostalCode, req.Country)
	comp.SetDefaultNotes(req.DefaultNotes, req.DefaultTerms)

	invoicePrefix := comp.InvoicePrefix
	if req.InvoicePrefix != "" {
		invoicePrefix = req.InvoicePrefix
	}
	quotePrefix := comp.QuotePrefix
	if req.QuotePrefix != "" {
		quotePrefix = req.QuotePrefix
	}
	paymentTermDays := comp.PaymentTermDays
	if req.PaymentTermDays != nil {
		paymentTermDays = *req.PaymentTermDays
	}
	if err := comp.UpdateDefaults(comp.Currency, paymentTermDays, invoicePrefix, quotePrefix); err != nil {
		return nil, err
	}

	makeDefault := req.IsDefault
	if !makeDefault {
		if _, err := s.companies.FindDefaultForTenant(ctx, tenantID); err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			makeDefault = true
		}
	}

	if err := s.companies.Save(ctx, comp); err != nil {
		return nil, err
	}
	if makeDefault {
		if err := s.companies.SetDefault(ctx, tenantID, comp.ID); err != nil {
			return nil, err
		}
		comp.MarkDefault()
	}

	response := ToCompanyResponse(comp)
	return &response, nil
}

// GetByID retrieves a company by ID
func (s *CompanyService) GetByID(ctx context.Context, tenantID, companyID uuid.UUID) (*CompanyResponse, error) {
	comp, err := s.companies.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(comp)
	return &response, nil
}

// GetDefault retrieves the tenant's default company
func (s *CompanyService) GetDefault(ctx context.Context, tenantID uuid.UUID) (*CompanyResponse, error) {
	comp, err := s.companies.FindDefaultForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(comp)
	return &response, nil
}

// List retrieves the tenant's companies
func (s *CompanyService) List(ctx context.Context, tenantID uuid.UUID, filter CompanyListFilter) (*shared.Paginated[CompanyResponse], error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	page, err := s.companies.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToCompanyResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Update updates a company's profile, address and document defaults
func (s *CompanyService) Update(ctx context.Context, tenantID, companyID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	comp, err := s.companies.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}

	name := comp.Name
	if req.Name != nil {
		name = *req.Name
	}
	legalName := comp.LegalName
	if req.LegalName != nil {
		legalName = *req.LegalName
	}
	email := comp.Email
	if req.Email != nil {
		email = *req.Email
	}
	phone := comp.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	website := comp.Website
	if req.Website != nil {
		website = *req.Website
	}
	taxID := comp.TaxID
	if req.TaxID != nil {
		taxID = *req.TaxID
	}
	if err := comp.Update(name, legalName, email, phone, website, taxID); err != nil {
		return nil, err
	}

	if req.Address != nil || req.City != nil || req.State != nil || req.PostalCode != nil || req.Country != nil {
		address, city, state := comp.Address, comp.City, comp.State
		postalCode, country := comp.PostalCode, comp.Country
		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if req.State != nil {
			state = *req.State
		}
		if req.PostalCode != nil {
			postalCode = *req.PostalCode
		}
		if req.Country != nil {
			country = *req.Country
		}
		comp.UpdateAddress(address, city, state, postalCode, country)
	}
	if req.LogoURL != nil {
		comp.SetLogoURL(*req.LogoURL)
	}

	if req.Currency != nil || req.PaymentTermDays != nil || req.InvoicePrefix != nil || req.QuotePrefix != nil {
		currency := comp.Currency
		if req.Currency != nil {
			currency = valueobject.Currency(*req.Currency)
		}
		paymentTermDays := comp.PaymentTermDays
		if req.PaymentTermDays != nil {
			paymentTermDays = *req.PaymentTermDays
		}
		invoicePrefix := comp.InvoicePrefix
		if req.InvoicePrefix != nil {
			invoicePrefix = *req.InvoicePrefix
		}
		quotePrefix := comp.QuotePrefix
		if req.QuotePrefix != nil {
			quotePrefix = *req.QuotePrefix
		}
		if err := comp.UpdateDefaults(currency, paymentTermDays, invoicePrefix, quotePrefix); err != nil {
			return nil, err
		}
	}
	if req.DefaultNotes != nil || req.DefaultTerms != nil {
		notes := comp.DefaultNotes
		if req.DefaultNotes != nil {
			notes = *req.DefaultNotes
		}
		terms := comp.DefaultTerms
		if req.DefaultTerms != nil {
			terms = *req.DefaultTerms
		}
		comp.SetDefaultNotes(notes, terms)
	}

	if err := s.companies.Save(ctx, comp); err != nil {
		return nil, err
	}

	response := ToCompanyResponse(comp)
	return &response, nil
}

// SetDefault marks a company as the tenant default
func (s *CompanyService) SetDefault(ctx context.Context, tenantID, companyID uuid.UUID) (*CompanyResponse, error) {
	comp, err := s.companies.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}

	if err := s.companies.SetDefault(ctx, tenantID, companyID); err != nil {
		return nil, err
	}
	comp.MarkDefault()

	response := ToCompanyResponse(comp)
	return &response, nil
}

// Delete removes a company. The default company cannot be deleted
// while siblings remain unassigned.
func (s *CompanyService) Delete(ctx context.Context, tenantID, companyID uuid.UUID) error {
	comp, err := s.companies.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return err
	}
	if comp.IsDefault {
		return shared.NewDomainError("DEFAULT_COMPANY", "Set another company as default before deleting this one")
	}

	return s.companies.DeleteForTenant(ctx, tenantID, companyID)
}
