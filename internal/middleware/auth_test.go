package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabboard/board-api/pkg/auth"
)

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	validToken, err := tokens.Generate("user-1")
	require.NoError(t, err)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := RequireAuth(tokens)(next)

	tests := []struct {
		name       string
		header     string
		query      string
		wantCode   int
		wantUserID string
	}{
		{name: "bearer token", header: "Bearer " + validToken, wantCode: http.StatusOK, wantUserID: "user-1"},
		{name: "case-insensitive scheme", header: "bearer " + validToken, wantCode: http.StatusOK, wantUserID: "user-1"},
		{name: "query token for websocket clients", query: validToken, wantCode: http.StatusOK, wantUserID: "user-1"},
		{name: "missing header", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""

			target := "/api/tasks"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantUserID, gotUserID)
		})
	}
}

func TestUserID_Unset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserID(req.Context()))
}
