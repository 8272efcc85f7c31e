package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoicehub/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" binding:"omitempty,max=50"`
	Type        string          `json:"type" binding:"omitempty,oneof=service good"`
	Unit        string          `json:"unit" binding:"omitempty,max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
}

// UpdateProductRequest represents a request to update a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	SKU         *string          `json:"sku" binding:"omitempty,max=50"`
	Unit        *string          `json:"unit" binding:"omitempty,max=20"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TaxPercent  *decimal.Decimal `json:"tax_percent"`
}

// ProductListFilter represents filtering options for product listing
type ProductListFilter struct {
	Search   string  `form:"search"`
	Type     *string `form:"type" binding:"omitempty,oneof=service good"`
	Active   *bool   `form:"active"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	SKU         string          `json:"sku,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Type:        string(p.Type),
		Unit:        p.Unit,
		UnitPrice:   p.UnitPrice,
		TaxPercent:  p.TaxPercent,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProductResponses converts a slice of domain products to response DTOs
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
