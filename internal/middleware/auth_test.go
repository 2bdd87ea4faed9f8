package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authedServer(apiKey, apiKeyHash string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return APIKeyAuth(apiKey, apiKeyHash, "X-API-Key")(ok)
}

func TestAPIKeyAuth(t *testing.T) {
	t.Run("health endpoints skip auth", func(t *testing.T) {
		h := authedServer("secret", "")
		for _, path := range []string{"/health", "/api/health"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})

	t.Run("missing key is rejected", func(t *testing.T) {
		h := authedServer("secret", "")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/devices", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "API key is required")
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		h := authedServer("secret", "")
		req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
		req.Header.Set("X-API-Key", "guess")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("correct key passes", func(t *testing.T) {
		h := authedServer("secret", "")
		req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
		req.Header.Set("X-API-Key", "secret")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bcrypt hash takes precedence over plaintext", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
		require.NoError(t, err)
		h := authedServer("ignored-plaintext", string(hash))

		req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
		req.Header.Set("X-API-Key", "secret")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req.Header.Set("X-API-Key", "ignored-plaintext")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-api paths pass through", func(t *testing.T) {
		h := authedServer("secret", "")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
