package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/billing"
	"github.com/invoicehub/backend/internal/domain/shared"
)

// PortalService resolves public portal links. Lookups are
// unauthenticated; the token itself is the capability, and expired or
// unknown tokens are indistinguishable from absent ones.
type PortalService struct {
	invoices billing.InvoiceRepository
	logger   *zap.Logger
}

// NewPortalService creates a new PortalService
func NewPortalService(invoices billing.InvoiceRepository, logger *zap.Logger) *PortalService {
	return &PortalService{
		invoices: invoices,
		logger:   logger,
	}
}

// CreateLink enables public portal access on an invoice and returns
// the generated token
func (s *PortalService) CreateLink(ctx context.Context, tenantID, invoiceID uuid.UUID, req CreatePublicLinkRequest) (*PublicLinkResponse, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	token := newPortalToken()
	if err := inv.EnablePublicAccess(token, req.ExpiresAt); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}

	return &PublicLinkResponse{
		Token:     token,
		ExpiresAt: inv.PublicLinkExpiresAt,
	}, nil
}

// GetByToken resolves an invoice by its portal token and stamps the
// first view. Expired links resolve as not found.
func (s *PortalService) GetByToken(ctx context.Context, token string) (*PortalInvoiceResponse, error) {
	inv, err := s.invoices.FindByPublicToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !inv.PublicLinkValid(now) {
		return nil, shared.ErrNotFound
	}

	if inv.ViewedAt == nil {
		inv.RecordView(now)
		// The view stamp must not break the customer's read.
		if err := s.invoices.Save(ctx, inv); err != nil {
			s.logger.Warn("portal view stamp failed",
				zap.String("invoice_number", inv.Number),
				zap.Error(err),
			)
		}
	}

	response := ToPortalInvoiceResponse(inv)
	return &response, nil
}

// newPortalToken produces an unguessable token for portal links
func newPortalToken() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}
