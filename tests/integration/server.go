package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/invoicehub/backend/internal/application/identity"
	partnerapp "github.com/invoicehub/backend/internal/application/partner"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/infrastructure/config"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
	"github.com/invoicehub/backend/internal/interfaces/http/handler"
	"github.com/invoicehub/backend/internal/interfaces/http/middleware"
	"github.com/invoicehub/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// APIServer runs the auth and customer slices of the HTTP API against
// a containerized database, mirroring the production wiring.
type APIServer struct {
	DB     *TestDB
	Engine *gin.Engine
}

// NewAPIServer builds the API on top of a fresh test database
func NewAPIServer(t *testing.T) *APIServer {
	t.Helper()

	tdb := NewTestDB(t)
	log := zap.NewNop()

	userRepo := persistence.NewGormUserRepository(tdb.DB)
	tenantRepo := persistence.NewGormTenantRepository(tdb.DB)
	companyRepo := persistence.NewGormCompanyRepository(tdb.DB)
	customerRepo := persistence.NewGormCustomerRepository(tdb.DB)
	txRunner := persistence.NewGormTxRunner(tdb.DB)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-test-secret-key-0123456789",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 720 * time.Hour,
		Issuer:                 "invoicehub-test",
	})

	authService := identityapp.NewAuthService(userRepo, tenantRepo, companyRepo, jwtService, txRunner, log)
	customerService := partnerapp.NewCustomerService(customerRepo)
	customerImportService := partnerapp.NewCustomerImportService(customerRepo, customerService)

	engine := gin.New()
	engine.Use(middleware.RequestID())

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewAuthHandler(authService)).
		Register(handler.NewCustomerHandler(customerService, customerImportService))
	r.Setup()

	return &APIServer{
		DB:     tdb,
		Engine: engine,
	}
}

// Do performs a JSON request against the API. An empty token leaves
// the Authorization header unset.
func (s *APIServer) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// Signup registers a tenant and returns the access token
func (s *APIServer) Signup(t *testing.T, slug, email, password string) string {
	t.Helper()

	w := s.Do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"tenant_name":  "Tenant " + slug,
		"tenant_slug":  slug,
		"email":        email,
		"password":     password,
		"company_name": "Company " + slug,
	})
	require.Equal(t, http.StatusCreated, w.Code, "signup failed: %s", w.Body.String())

	var resp struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Tokens.AccessToken)
	return resp.Data.Tokens.AccessToken
}
