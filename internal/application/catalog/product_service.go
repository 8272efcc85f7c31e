package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/catalog"
	"github.com/invoicehub/backend/internal/domain/shared"
)

// ProductService handles catalog product operations
type ProductService struct {
	products catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository) *ProductService {
	return &ProductService{
		products: products,
	}
}

// Create creates a new catalog product. SKUs are unique per tenant
// when present.
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if req.SKU != "" {
		if err := s.ensureSKUFree(ctx, tenantID, req.SKU); err != nil {
			return nil, err
		}
	}

	productType := catalog.ProductTypeService
	if req.Type != "" {
		productType = catalog.ProductType(req.Type)
	}

	product, err := catalog.NewProduct(tenantID, req.Name, productType, req.UnitPrice, req.TaxPercent)
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.Name, req.Description, req.SKU, req.Unit); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
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
	if filter.Type != nil {
		domainFilter.Filters["type"] = *filter.Type
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	page, err := s.products.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToProductResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Update updates a product's details and default pricing. Issued
// documents keep their own line copies and are not affected.
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := product.Description
	if req.Description != nil {
		description = *req.Description
	}
	sku := product.SKU
	if req.SKU != nil {
		sku = *req.SKU
		if sku != "" && !strings.EqualFold(sku, product.SKU) {
			if err := s.ensureSKUFree(ctx, tenantID, sku); err != nil {
				return nil, err
			}
		}
	}
	unit := product.Unit
	if req.Unit != nil {
		unit = *req.Unit
	}
	if err := product.Update(name, description, sku, unit); err != nil {
		return nil, err
	}

	if req.UnitPrice != nil || req.TaxPercent != nil {
		unitPrice := product.UnitPrice
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		taxPercent := product.TaxPercent
		if req.TaxPercent != nil {
			taxPercent = *req.TaxPercent
		}
		if err := product.UpdatePricing(unitPrice, taxPercent); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Deactivate hides a product from new documents
func (s *ProductService) Deactivate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.setActive(ctx, tenantID, productID, false)
}

// Activate restores a deactivated product
func (s *ProductService) Activate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.setActive(ctx, tenantID, productID, true)
}

// Delete removes a product from the catalog. Lines referencing it keep
// their copied price and description.
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	return s.products.DeleteForTenant(ctx, tenantID, productID)
}

func (s *ProductService) setActive(ctx context.Context, tenantID, productID uuid.UUID, active bool) (*ProductResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if active {
		product.Activate()
	} else {
		product.Deactivate()
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) ensureSKUFree(ctx context.Context, tenantID uuid.UUID, sku string) error {
	existing, err := s.products.FindBySKU(ctx, tenantID, strings.ToUpper(sku))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing != nil {
		return shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}
	return nil
}
