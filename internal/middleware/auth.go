package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/collabboard/board-api/pkg/auth"
	"github.com/collabboard/board-api/pkg/respond"
)

type ctxKey int

const userIDKey ctxKey = iota

// RequireAuth resolves the bearer token into a user id and stores it in the
// request context. The websocket route cannot set headers from the browser,
// so a ?token= query parameter is accepted as a fallback.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				tokenStr = r.URL.Query().Get("token")
			}
			if tokenStr == "" {
				respond.Error(w, r, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			userID, err := tokens.Parse(tokenStr)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
