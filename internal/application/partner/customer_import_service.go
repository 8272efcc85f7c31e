package partner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/invoicehub/backend/internal/domain/partner"
	"github.com/invoicehub/backend/internal/domain/shared"
	csvimport "github.com/invoicehub/backend/internal/infrastructure/import"
)

const (
	importMaxErrors = 100
	importMaxRows   = 5000
)

// importColumns are the recognized CSV header columns. Only name is
// required; the rest map onto the optional customer fields.
var importColumns = []string{
	"name", "type", "email", "contact_name", "phone",
	"address", "city", "state", "postal_code", "country", "tax_id", "notes",
}

// CustomerImportResult summarizes a CSV import run.
type CustomerImportResult struct {
	TotalRows   int                  `json:"total_rows"`
	Imported    int                  `json:"imported"`
	Failed      int                  `json:"failed"`
	DryRun      bool                 `json:"dry_run"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	TotalErrors int                  `json:"total_errors"`
	Truncated   bool                 `json:"truncated"`
}

// CustomerImportService creates customers in bulk from an uploaded CSV
// file. Rows are validated before anything is written; a dry run
// validates the whole file without creating records.
type CustomerImportService struct {
	customers partner.CustomerRepository
	service   *CustomerService
}

// NewCustomerImportService creates a new CustomerImportService
func NewCustomerImportService(customers partner.CustomerRepository, service *CustomerService) *CustomerImportService {
	return &CustomerImportService{
		customers: customers,
		service:   service,
	}
}

// Import parses and validates the CSV stream and creates a customer per
// valid row. Invalid rows are reported and skipped; valid rows are still
// imported. With dryRun set, no customers are created.
func (s *CustomerImportService) Import(ctx context.Context, tenantID uuid.UUID, r io.Reader, dryRun bool) (*CustomerImportResult, error) {
	parser, err := csvimport.NewCSVParser(r)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unable to read CSV file: %v", err))
	}

	if err := parser.ParseHeader(); err != nil {
		if errors.Is(err, csvimport.ErrEmptyFile) || errors.Is(err, csvimport.ErrMissingHeader) {
			return nil, shared.NewDomainError("INVALID_INPUT", "CSV file is empty or missing a header row")
		}
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid CSV header: %v", err))
	}
	if missing := parser.ValidateHeaders([]string{"name"}); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "CSV file must have a 'name' column")
	}

	validator := csvimport.NewFieldValidator(s.fieldRules(), importMaxErrors)
	collection := validator.Errors()
	uniqueness := csvimport.NewUniquenessValidator(s.emailLookup(ctx, tenantID), importMaxErrors)

	result := &CustomerImportResult{DryRun: dryRun}

	for {
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			collection.Add(csvimport.NewRowError(parser.CurrentRow(), "", csvimport.ErrCodeImportMalformedRow, err.Error()))
			result.TotalRows++
			result.Failed++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		result.TotalRows++
		if result.TotalRows > importMaxRows {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("CSV file exceeds the %d row limit", importMaxRows))
		}

		ok := validator.ValidateRow(row)
		if !uniqueness.ValidateUnique(row.LineNumber, "email", "customers", strings.ToLower(row.Get("email"))) {
			ok = false
		}
		if !ok {
			result.Failed++
			continue
		}

		if dryRun {
			result.Imported++
			continue
		}

		if _, err := s.service.Create(ctx, tenantID, createRequestFromRow(row)); err != nil {
			collection.AddValidationError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error())
			result.Failed++
			continue
		}
		result.Imported++
	}

	result.Errors = append(collection.Errors(), uniqueness.Errors().Errors()...)
	result.TotalErrors = collection.TotalCount() + uniqueness.Errors().TotalCount()
	result.Truncated = collection.IsTruncated() || uniqueness.Errors().IsTruncated()
	return result, nil
}

func (s *CustomerImportService) fieldRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("name").Required().MaxLength(200).Build(),
		csvimport.Field("type").Custom(validateCustomerType).Build(),
		csvimport.Field("email").Email().MaxLength(200).Unique().Build(),
		csvimport.Field("contact_name").MaxLength(100).Build(),
		csvimport.Field("phone").MaxLength(50).Build(),
		csvimport.Field("city").MaxLength(100).Build(),
		csvimport.Field("state").MaxLength(100).Build(),
		csvimport.Field("postal_code").MaxLength(20).Build(),
		csvimport.Field("country").MaxLength(100).Build(),
		csvimport.Field("tax_id").MaxLength(50).Build(),
	}
}

// emailLookup reports whether a customer with the given email already
// exists for the tenant.
func (s *CustomerImportService) emailLookup(ctx context.Context, tenantID uuid.UUID) func(entityType, field, value string) (bool, error) {
	return func(entityType, field, value string) (bool, error) {
		existing, err := s.customers.FindByEmail(ctx, tenantID, value)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return existing != nil, nil
	}
}

func validateCustomerType(value string) error {
	switch partner.CustomerType(value) {
	case partner.CustomerTypeIndividual, partner.CustomerTypeOrganization:
		return nil
	}
	return fmt.Errorf("must be 'individual' or 'organization'")
}

func createRequestFromRow(row *csvimport.Row) CreateCustomerRequest {
	return CreateCustomerRequest{
		Name:        row.Get("name"),
		Type:        row.Get("type"),
		Email:       strings.ToLower(row.Get("email")),
		ContactName: row.Get("contact_name"),
		Phone:       row.Get("phone"),
		Address:     row.Get("address"),
		City:        row.Get("city"),
		State:       row.Get("state"),
		PostalCode:  row.Get("postal_code"),
		Country:     row.Get("country"),
		TaxID:       row.Get("tax_id"),
		Notes:       row.Get("notes"),
	}
}
