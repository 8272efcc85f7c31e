package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/company"
	"github.com/invoicehub/backend/internal/domain/identity"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/shared/valueobject"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
)

// AuthService handles signup, sign-in and token refresh
type AuthService struct {
	users     identity.UserRepository
	tenants   identity.TenantRepository
	companies company.CompanyRepository
	jwt       *auth.JWTService
	tx        shared.TxRunner
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users identity.UserRepository,
	tenants identity.TenantRepository,
	companies company.CompanyRepository,
	jwt *auth.JWTService,
	tx shared.TxRunner,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tenants:   tenants,
		companies: companies,
		jwt:       jwt,
		tx:        tx,
		logger:    logger,
	}
}

// Signup registers a new tenant, its owner account and a default
// issuing company in one transaction, then signs the owner in
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	taken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}
	slugTaken, err := s.tenants.ExistsBySlug(ctx, req.TenantSlug)
	if err != nil {
		return nil, err
	}
	if slugTaken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Workspace slug is already taken")
	}

	tenant, err := identity.NewTenant(req.TenantSlug, req.TenantName)
	if err != nil {
		return nil, err
	}
	owner, err := identity.NewUser(tenant.ID, req.Email, req.Password, req.DisplayName, identity.UserRoleOwner)
	if err != nil {
		return nil, err
	}

	companyName := req.CompanyName
	if companyName == "" {
		companyName = req.TenantName
	}
	comp, err := company.NewCompany(tenant.ID, companyName, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.tenants.Save(ctx, tenant); err != nil {
			return err
		}
		if err := s.users.Save(ctx, owner); err != nil {
			return err
		}
		if err := s.companies.Save(ctx, comp); err != nil {
			return err
		}
		return s.companies.SetDefault(ctx, tenant.ID, comp.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant signed up",
		zap.String("tenant_slug", tenant.Slug),
		zap.String("owner_email", owner.Email),
	)

	return s.issueTokens(tenant, owner)
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		// Same error for unknown email and wrong password.
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.CheckPassword(req.Password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	tenant, err := s.tenants.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, shared.NewDomainError("TENANT_SUSPENDED", "Workspace has been suspended")
	}

	user.RecordLogin(time.Now())
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Warn("login stamp failed",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}

	return s.issueTokens(tenant, user)
}

// Refresh exchanges a valid refresh token for a fresh pair. Email and
// role come from the current user record, so role changes take effect
// on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	user, err := s.users.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	tenant, err := s.tenants.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, shared.NewDomainError("TENANT_SUSPENDED", "Workspace has been suspended")
	}

	tokens, err := s.jwt.RefreshTokenPair(req.RefreshToken, user.Email, string(user.Role))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	return &AuthResponse{
		User:   ToUserResponse(user),
		Tenant: ToTenantResponse(tenant),
		Tokens: tokens,
	}, nil
}

// ChangePassword changes the password of a signed-in user
func (s *AuthService) ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.users.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// Me returns the signed-in user and workspace
func (s *AuthService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*AuthResponse, error) {
	user, err := s.users.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:   ToUserResponse(user),
		Tenant: ToTenantResponse(tenant),
	}, nil
}

func (s *AuthService) issueTokens(tenant *identity.Tenant, user *identity.User) (*AuthResponse, error) {
	tokens, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: tenant.ID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:   ToUserResponse(user),
		Tenant: ToTenantResponse(tenant),
		Tokens: tokens,
	}, nil
}
