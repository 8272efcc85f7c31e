package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tenants must never see each other's records, whether addressed by ID
// or through list endpoints.
func TestTenantIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := NewAPIServer(t)

	tokenA := srv.Signup(t, "tenant-a", "owner@a.test", "password-tenant-a")
	tokenB := srv.Signup(t, "tenant-b", "owner@b.test", "password-tenant-b")

	// Tenant A creates a customer.
	w := srv.Do(t, http.MethodPost, "/api/v1/customers", tokenA, map[string]string{
		"name":  "Customer of A",
		"email": "contact@customer-a.test",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	customerID := created.Data.ID
	require.NotEmpty(t, customerID)

	t.Run("owner can fetch by ID", func(t *testing.T) {
		w := srv.Do(t, http.MethodGet, "/api/v1/customers/"+customerID, tokenA, nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("other tenant gets 404 for the same ID", func(t *testing.T) {
		w := srv.Do(t, http.MethodGet, "/api/v1/customers/"+customerID, tokenB, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	t.Run("other tenant cannot update it", func(t *testing.T) {
		w := srv.Do(t, http.MethodPut, "/api/v1/customers/"+customerID, tokenB, map[string]string{
			"name": "Hijacked",
		})
		assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	t.Run("other tenant cannot delete it", func(t *testing.T) {
		w := srv.Do(t, http.MethodDelete, "/api/v1/customers/"+customerID, tokenB, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	t.Run("lists do not leak across tenants", func(t *testing.T) {
		w := srv.Do(t, http.MethodGet, "/api/v1/customers", tokenB, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var list struct {
			Data []struct {
				Name string `json:"name"`
			} `json:"data"`
			Meta struct {
				Total int64 `json:"total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Empty(t, list.Data)
		assert.Zero(t, list.Meta.Total)

		// Tenant A still sees its own customer.
		w = srv.Do(t, http.MethodGet, "/api/v1/customers", tokenA, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list.Data, 1)
		assert.Equal(t, "Customer of A", list.Data[0].Name)
	})

	t.Run("requests without a token are rejected", func(t *testing.T) {
		w := srv.Do(t, http.MethodGet, "/api/v1/customers", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
