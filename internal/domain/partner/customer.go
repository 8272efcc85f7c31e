package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusArchived CustomerStatus = "archived"
)

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeIndividual   CustomerType = "individual"
	CustomerTypeOrganization CustomerType = "organization"
)

// Customer represents a billable customer in the partner context.
// It is the aggregate root for customer-related operations. The
// Balance field is the running net outstanding receivable: raised when
// invoices are issued against the customer, lowered when payments are
// recorded. It is maintained incrementally inside the same transaction
// as the financial write that moves it.
type Customer struct {
	shared.TenantAggregateRoot
	Name        string         `gorm:"type:varchar(200);not null"`
	Type        CustomerType   `gorm:"type:varchar(20);not null;default:'individual'"`
	Status      CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName string         `gorm:"type:varchar(100)"`
	Email       string         `gorm:"type:varchar(200);index"`
	Phone       string         `gorm:"type:varchar(50)"`
	Address     string         `gorm:"type:text"`
	City        string         `gorm:"type:varchar(100)"`
	State       string         `gorm:"type:varchar(100)"`
	PostalCode  string         `gorm:"type:varchar(20)"`
	Country     string         `gorm:"type:varchar(100)"`
	TaxID       string         `gorm:"type:varchar(50)"`

	// Net outstanding receivable across the customer's open invoices.
	Balance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, name, email string, customerType CustomerType) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if err := validateCustomerEmail(email); err != nil {
		return nil, err
	}
	if customerType != CustomerTypeIndividual && customerType != CustomerTypeOrganization {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_TYPE", "Customer type must be individual or organization")
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Email:               strings.ToLower(email),
		Type:                customerType,
		Status:              CustomerStatusActive,
		Balance:             decimal.Zero,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name, email, contactName, phone string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validateCustomerEmail(email); err != nil {
		return err
	}

	c.Name = name
	c.Email = strings.ToLower(email)
	c.ContactName = contactName
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// UpdateAddress updates the customer's billing address
func (c *Customer) UpdateAddress(address, city, state, postalCode, country string) {
	c.Address = address
	c.City = city
	c.State = state
	c.PostalCode = postalCode
	c.Country = country
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetTaxID sets the customer's tax identification number
func (c *Customer) SetTaxID(taxID string) {
	c.TaxID = taxID
	c.UpdatedAt = time.Now()
}

// SetNotes sets free-form notes about the customer
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
}

// IncreaseBalance raises the outstanding receivable, e.g. when an
// invoice is issued or a quote is converted
func (c *Customer) IncreaseBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Balance adjustment cannot be negative")
	}

	c.Balance = c.Balance.Add(amount)
	c.UpdatedAt = time.Now()

	return nil
}

// DecreaseBalance lowers the outstanding receivable, e.g. when a
// payment is recorded
func (c *Customer) DecreaseBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Balance adjustment cannot be negative")
	}

	c.Balance = c.Balance.Sub(amount)
	c.UpdatedAt = time.Now()

	return nil
}

// Archive marks the customer as archived. Archived customers keep
// their history but cannot receive new documents.
func (c *Customer) Archive() error {
	if c.Status == CustomerStatusArchived {
		return nil
	}
	if c.Balance.IsPositive() {
		return shared.NewDomainError("OUTSTANDING_BALANCE", "Cannot archive a customer with an outstanding balance")
	}

	c.Status = CustomerStatusArchived
	c.UpdatedAt = time.Now()

	return nil
}

// Activate restores an archived customer
func (c *Customer) Activate() {
	if c.Status == CustomerStatusActive {
		return
	}
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
}

// IsActive returns true if the customer can receive new documents
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateCustomerEmail(email string) error {
	if email == "" {
		return nil
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return nil
}
