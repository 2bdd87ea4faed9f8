package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyAuth creates middleware for API key authentication. When a
// bcrypt hash is configured it is checked instead of the plaintext key,
// so the key never has to live in the config file.
func APIKeyAuth(apiKey, apiKeyHash, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for health endpoints
			path := r.URL.Path
			if path == "/health" || path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}

			// Only authenticate API routes
			if !strings.HasPrefix(path, "/api") {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(headerName)
			if providedKey == "" {
				writeAuthError(w, "API key is required.")
				return
			}

			if !keyMatches(apiKey, apiKeyHash, providedKey) {
				writeAuthError(w, "Invalid API key.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func keyMatches(apiKey, apiKeyHash, provided string) bool {
	if apiKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(provided)) == nil
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(apiKey), []byte(provided)) == 1
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
