package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/store"
)

func unauthorized(w http.ResponseWriter, msg string) {
	errorJSON(w, http.StatusUnauthorized, msg)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// BearerToken extracts the token from an Authorization header, or "" when the
// header is missing or not a Bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}

// RequireAuth validates the bearer token and populates AuthContext. Revoked
// tokens are rejected even before their expiry.
func RequireAuth(issuer *auth.TokenIssuer, tokens *store.TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, "authorization required")
				return
			}

			claims, err := issuer.Parse(token, auth.TokenAccess)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			revoked, err := tokens.IsRevoked(claims.ID)
			if err != nil {
				errorJSON(w, http.StatusInternalServerError, "internal error")
				return
			}
			if revoked {
				unauthorized(w, "token has been revoked")
				return
			}

			ac := auth.AuthContext{
				UserID:  claims.UserID,
				Role:    claims.Role,
				TokenID: claims.ID,
			}
			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			errorJSON(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
