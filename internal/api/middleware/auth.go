package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/model"
)

type contextKey string

// APIKeyKey holds the authenticated *model.APIKey.
const APIKeyKey contextKey = "api_key"

// APIKeyIDKey holds the authenticated key ID for the audit logger.
const APIKeyIDKey contextKey = "api_key_id"

// Authenticator resolves a raw API key. *core.APIKeyService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, rawKey string) (*model.APIKey, error)
}

// Auth returns a middleware that accepts the key from the X-API-Key header
// or an Authorization Bearer token.
func Auth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-API-Key")
			if raw == "" {
				raw = extractAPIKey(r)
			}
			if raw == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			key, err := auth.Authenticate(r.Context(), raw)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyKey, key)
			ctx = context.WithValue(ctx, APIKeyIDKey, key.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAPIKey returns the key the request was authenticated with, or nil.
func GetAPIKey(ctx context.Context) *model.APIKey {
	key, _ := ctx.Value(APIKeyKey).(*model.APIKey)
	return key
}

// WithAPIKey returns ctx carrying key as the authenticated key.
func WithAPIKey(ctx context.Context, key *model.APIKey) context.Context {
	ctx = context.WithValue(ctx, APIKeyKey, key)
	return context.WithValue(ctx, APIKeyIDKey, key.ID)
}

func extractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
