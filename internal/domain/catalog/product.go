package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductType distinguishes physical goods from billable services
type ProductType string

const (
	ProductTypeService ProductType = "service"
	ProductTypeGood    ProductType = "good"
)

// IsValid checks if the product type is supported
func (t ProductType) IsValid() bool {
	return t == ProductTypeService || t == ProductTypeGood
}

// Product represents a sellable catalog item. Products pre-fill line
// items on invoices and quotes; the line keeps its own copy of price
// and tax so later catalog edits never rewrite issued documents.
type Product struct {
	shared.TenantAggregateRoot
	SKU         string          `gorm:"type:varchar(50);index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Type        ProductType     `gorm:"type:varchar(10);not null;default:'service'"`
	Unit        string          `gorm:"type:varchar(20);not null;default:'unit'"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active      bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

var hundred = decimal.NewFromInt(100)

// NewProduct creates a new active catalog product
func NewProduct(tenantID uuid.UUID, name string, productType ProductType, unitPrice, taxPercent decimal.Decimal) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if !productType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Product type must be service or good")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxPercent.IsNegative() || taxPercent.GreaterThan(hundred) {
		return nil, shared.NewDomainError("INVALID_TAX_PERCENT", "Tax percent must be between 0 and 100")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Type:                productType,
		Unit:                "unit",
		UnitPrice:           unitPrice,
		TaxPercent:          taxPercent,
		Active:              true,
	}, nil
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description, sku, unit string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	p.Name = name
	p.Description = description
	p.SKU = strings.ToUpper(sku)
	if unit != "" {
		p.Unit = unit
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// UpdatePricing updates the default price and tax for new lines
func (p *Product) UpdatePricing(unitPrice, taxPercent decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxPercent.IsNegative() || taxPercent.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_TAX_PERCENT", "Tax percent must be between 0 and 100")
	}

	p.UnitPrice = unitPrice
	p.TaxPercent = taxPercent
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Deactivate hides the product from new documents. Idempotent.
func (p *Product) Deactivate() {
	if !p.Active {
		return
	}
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Activate restores a deactivated product
func (p *Product) Activate() {
	if p.Active {
		return
	}
	p.Active = true
	p.UpdatedAt = time.Now()
}
