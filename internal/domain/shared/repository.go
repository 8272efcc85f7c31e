package shared

import (
	"context"

	"github.com/google/uuid"
)

// Series identifies a document numbering series within a tenant.
// Every series gets its own atomically-incremented counter.
type Series string

const (
	SeriesInvoice Series = "invoice"
	SeriesQuote   Series = "quote"
	SeriesPayment Series = "payment"
	SeriesExpense Series = "expense"
)

// DefaultPrefix returns the number prefix used when the company has not
// configured one for the series.
func (s Series) DefaultPrefix() string {
	switch s {
	case SeriesInvoice:
		return "INV"
	case SeriesQuote:
		return "QUO"
	case SeriesPayment:
		return "PAY"
	case SeriesExpense:
		return "EXP"
	}
	return "DOC"
}

// NumberSequencer produces the next sequential document number for a
// tenant+series, formatted as "{prefix}-{counter}" with the counter
// zero-padded to five digits. Implementations must increment atomically
// so that concurrent callers never observe the same number; when called
// inside a transaction (see TxRunner) the increment joins it.
type NumberSequencer interface {
	NextNumber(ctx context.Context, tenantID uuid.UUID, series Series, prefix string) (string, error)
}

// TxRunner executes fn inside a single database transaction. Repository
// calls made with the context passed to fn participate in that
// transaction; any error rolls the whole unit back. Every mutation that
// touches more than one record goes through this.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
