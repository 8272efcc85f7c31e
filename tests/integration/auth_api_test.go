package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthSignupLoginFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := NewAPIServer(t)

	t.Run("signup creates tenant and returns tokens", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"tenant_name":  "Acme Consulting",
			"tenant_slug":  "acme",
			"email":        "owner@acme.test",
			"password":     "correct-horse-battery",
			"company_name": "Acme Consulting LLC",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				User struct {
					Email string `json:"email"`
					Role  string `json:"role"`
				} `json:"user"`
				Tenant struct {
					Slug string `json:"slug"`
				} `json:"tenant"`
				Tokens struct {
					AccessToken  string `json:"access_token"`
					RefreshToken string `json:"refresh_token"`
					TokenType    string `json:"token_type"`
				} `json:"tokens"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "owner@acme.test", resp.Data.User.Email)
		assert.Equal(t, "owner", resp.Data.User.Role)
		assert.Equal(t, "acme", resp.Data.Tenant.Slug)
		assert.Equal(t, "Bearer", resp.Data.Tokens.TokenType)
		assert.NotEmpty(t, resp.Data.Tokens.AccessToken)
		assert.NotEmpty(t, resp.Data.Tokens.RefreshToken)
	})

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"tenant_name": "Acme Again",
			"tenant_slug": "acme",
			"email":       "other@acme.test",
			"password":    "correct-horse-battery",
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("login with valid credentials", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "owner@acme.test",
			"password": "correct-horse-battery",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("login with wrong password", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "owner@acme.test",
			"password": "wrong-password-entirely",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me requires a token", func(t *testing.T) {
		w := srv.Do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me returns the authenticated user", func(t *testing.T) {
		login := srv.Do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "owner@acme.test",
			"password": "correct-horse-battery",
		})
		require.Equal(t, http.StatusOK, login.Code)

		var loginResp struct {
			Data struct {
				Tokens struct {
					AccessToken  string `json:"access_token"`
					RefreshToken string `json:"refresh_token"`
				} `json:"tokens"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(login.Body.Bytes(), &loginResp))

		w := srv.Do(t, http.MethodGet, "/api/v1/auth/me", loginResp.Data.Tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var meResp struct {
			Data struct {
				Email string `json:"email"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meResp))
		assert.Equal(t, "owner@acme.test", meResp.Data.Email)

		t.Run("refresh token rotates the pair", func(t *testing.T) {
			w := srv.Do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
				"refresh_token": loginResp.Data.Tokens.RefreshToken,
			})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})

		t.Run("refresh token cannot be used as access token", func(t *testing.T) {
			w := srv.Do(t, http.MethodGet, "/api/v1/auth/me", loginResp.Data.Tokens.RefreshToken, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	})

	t.Run("change password invalidates the old one", func(t *testing.T) {
		token := srv.Signup(t, "beta", "owner@beta.test", "original-password-1")

		w := srv.Do(t, http.MethodPost, "/api/v1/auth/change-password", token, map[string]string{
			"current_password": "original-password-1",
			"new_password":     "rotated-password-2",
		})
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		old := srv.Do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "owner@beta.test",
			"password": "original-password-1",
		})
		assert.Equal(t, http.StatusUnauthorized, old.Code)

		fresh := srv.Do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "owner@beta.test",
			"password": "rotated-password-2",
		})
		assert.Equal(t, http.StatusOK, fresh.Code, fresh.Body.String())
	})
}
