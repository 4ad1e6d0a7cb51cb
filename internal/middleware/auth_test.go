package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAPIKey(t *testing.T) {
	// sha256("secret")
	assert.Equal(t, "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b", HashAPIKey("secret"))
}

func TestAPIKeyAuth(t *testing.T) {
	hash := HashAPIKey("secret")
	var gotID string
	h := APIKeyAuth([]string{HashAPIKey("other"), hash})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = KeyIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"valid key", "secret", http.StatusOK},
		{"wrong key", "guess", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotID = ""
			req := httptest.NewRequest(http.MethodPost, "/v1/validate", nil)
			if tc.key != "" {
				req.Header.Set(APIKeyHeader, tc.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)

			if tc.status == http.StatusOK {
				assert.Equal(t, hash[:8], gotID)
				return
			}
			assert.Empty(t, gotID)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.InDelta(t, 401, body["code"], 0)
			assert.Contains(t, body["message"], APIKeyHeader)
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	h := APIKeyAuth(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, KeyIDFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/standards", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
