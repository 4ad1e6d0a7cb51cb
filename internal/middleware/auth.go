package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-API-Key"

type keyIDKey struct{}

// WithKeyID stores the ID of the authenticated key in the context.
func WithKeyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyIDKey{}, id)
}

// KeyIDFromContext returns the ID of the key that authenticated the request,
// or "" when the request was not authenticated.
func KeyIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyIDKey{}).(string)
	return id
}

// HashAPIKey returns the hex SHA-256 of key, the form keys are configured in.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// APIKeyAuth rejects requests whose X-API-Key does not hash to one of hashes.
// The first 8 hex characters of the matching hash become the request's key ID.
// An empty hash list disables the check.
func APIKeyAuth(hashes []string) func(http.Handler) http.Handler {
	allowed := make([][]byte, len(hashes))
	for i, h := range hashes {
		allowed[i] = []byte(h)
	}

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get(APIKeyHeader); key != "" {
				got := []byte(HashAPIKey(key))
				for _, want := range allowed {
					if subtle.ConstantTimeCompare(got, want) == 1 {
						ctx := WithKeyID(r.Context(), string(want[:8]))
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code":       http.StatusUnauthorized,
				"message":    "unauthorized: provide a valid API key in the " + APIKeyHeader + " header",
				"request_id": RequestIDFromContext(r.Context()),
			})
		})
	}
}
