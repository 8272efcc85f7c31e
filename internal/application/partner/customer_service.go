package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customers partner.CustomerRepository
	eventBus  shared.EventBus
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers partner.CustomerRepository) *CustomerService {
	return &CustomerService{
		customers: customers,
	}
}

// SetEventBus sets the bus domain events are published on after commit
func (s *CustomerService) SetEventBus(bus shared.EventBus) {
	s.eventBus = bus
}

// Create creates a new customer. Email addresses are unique per tenant
// when present.
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	if req.Email != "" {
		if err := s.ensureEmailFree(ctx, tenantID, req.Email); err != nil {
			return nil, err
		}
	}

	customerType := partner.CustomerTypeIndividual
	if req.Type != "" {
		customerType = partner.CustomerType(req.Type)
	}

	cust, err := partner.NewCustomer(tenantID, req.Name, req.Email, customerType)
	if err != nil {
		return nil, err
	}

	cust.ContactName = req.ContactName
	cust.Phone = req.Phone
	cust.UpdateAddress(req.Address, req.City, req.State, req.PostalCode, req.Country)
	cust.SetTaxID(req.TaxID)
	cust.SetNotes(req.Notes)

	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, cust)

	response := ToCustomerResponse(cust)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(cust)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.Type != nil {
		domainFilter.Filters["type"] = *filter.Type
	}

	page, err := s.customers.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToCustomerResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Update updates a customer's contact and billing details
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	name := cust.Name
	if req.Name != nil {
		name = *req.Name
	}
	email := cust.Email
	if req.Email != nil {
		email = *req.Email
		if email != "" && !strings.EqualFold(email, cust.Email) {
			if err := s.ensureEmailFree(ctx, tenantID, email); err != nil {
				return nil, err
			}
		}
	}
	contactName := cust.ContactName
	if req.ContactName != nil {
		contactName = *req.ContactName
	}
	phone := cust.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	if err := cust.Update(name, email, contactName, phone); err != nil {
		return nil, err
	}

	if req.Address != nil || req.City != nil || req.State != nil || req.PostalCode != nil || req.Country != nil {
		address, city, state := cust.Address, cust.City, cust.State
		postalCode, country := cust.PostalCode, cust.Country
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
		cust.UpdateAddress(address, city, state, postalCode, country)
	}
	if req.TaxID != nil {
		cust.SetTaxID(*req.TaxID)
	}
	if req.Notes != nil {
		cust.SetNotes(*req.Notes)
	}

	if err := s.customers.SaveWithLock(ctx, cust); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(cust)
	return &response, nil
}

// Archive archives a customer. Rejected while the customer carries an
// outstanding balance.
func (s *CustomerService) Archive(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if err := cust.Archive(); err != nil {
		return nil, err
	}
	if err := s.customers.SaveWithLock(ctx, cust); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(cust)
	return &response, nil
}

// Activate restores an archived customer
func (s *CustomerService) Activate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	cust.Activate()
	if err := s.customers.SaveWithLock(ctx, cust); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(cust)
	return &response, nil
}

// Delete removes a customer. Customers with an outstanding balance
// must be settled first; archiving is the usual path for customers
// with history.
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	cust, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if cust.Balance.IsPositive() {
		return shared.NewDomainError("OUTSTANDING_BALANCE", "Cannot delete a customer with an outstanding balance")
	}

	return s.customers.DeleteForTenant(ctx, tenantID, customerID)
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, tenantID uuid.UUID, email string) error {
	existing, err := s.customers.FindByEmail(ctx, tenantID, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing != nil {
		return shared.NewDomainError("ALREADY_EXISTS", "Customer with this email already exists")
	}
	return nil
}

func (s *CustomerService) publishEvents(ctx context.Context, cust *partner.Customer) {
	if s.eventBus == nil {
		return
	}
	events := cust.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
	cust.ClearDomainEvents()
}
