// Copyright (c) 2026 BIMS Project. All rights reserved.

package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryo/bims/internal/platform/ctxutil"
	"github.com/baryo/bims/internal/platform/middleware"
	"github.com/baryo/bims/internal/platform/sec"
)

// stubVerifier accepts exactly one token string and returns fixed claims.
type stubVerifier struct {
	validToken string
	claims     *sec.AuthClaims
}

func (s *stubVerifier) VerifyAccessToken(tokenStr string) (*sec.AuthClaims, error) {
	if tokenStr == s.validToken {
		return s.claims, nil
	}
	return nil, errors.New("verification failed")
}

func okHandler(captured **sec.AuthClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = ctxutil.GetAuthUser(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate verifies anonymous passthrough, token verification,
and claim injection.
*/
func TestAuthenticate(t *testing.T) {
	verifier := &stubVerifier{
		validToken: "good-token",
		claims:     &sec.AuthClaims{UserID: "user-1", Email: "sk@barangay.ph", Role: "admin"},
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantClaims bool
	}{
		{"anonymous_passthrough", "", http.StatusOK, false},
		{"valid_bearer_token", "Bearer good-token", http.StatusOK, true},
		{"invalid_token", "Bearer bad-token", http.StatusUnauthorized, false},
		{"malformed_header", "good-token", http.StatusUnauthorized, false},
		{"wrong_scheme", "Basic good-token", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *sec.AuthClaims
			handler := middleware.Authenticate(verifier)(okHandler(&captured))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantClaims {
				require.NotNil(t, captured)
				assert.Equal(t, "user-1", captured.UserID)
			} else {
				assert.Nil(t, captured)
			}
		})
	}
}

/*
TestAuthenticate_ErrorMessage verifies the exact client-facing 401 message.
*/
func TestAuthenticate_ErrorMessage(t *testing.T) {
	verifier := &stubVerifier{validToken: "good-token"}
	handler := middleware.Authenticate(verifier)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid or expired token", body["message"])
}

/*
TestRequireAuth verifies anonymous requests are rejected with 401.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(okHandler(nil))

	// Anonymous request
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Access token required", body["message"])

	// Authenticated request
	claims := &sec.AuthClaims{UserID: "user-1", Role: "user"}
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", nil)
	req = req.WithContext(ctxutil.WithAuthUser(req.Context(), claims))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

/*
TestRequirePermission verifies the capability checks per role.
*/
func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		permission sec.Permission
		wantStatus int
	}{
		{"admin_can_read_users", "admin", sec.PermUsersRead, http.StatusOK},
		{"user_cannot_read_users", "user", sec.PermUsersRead, http.StatusForbidden},
		{"admin_cannot_assign_roles", "admin", sec.PermRolesAssign, http.StatusForbidden},
		{"super_admin_assigns_roles", "super_admin", sec.PermRolesAssign, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequirePermission(tt.permission)(okHandler(nil))

			claims := &sec.AuthClaims{UserID: "user-1", Role: tt.role}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req = req.WithContext(ctxutil.WithAuthUser(req.Context(), claims))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

/*
TestRequirePermission_Anonymous verifies the implied authentication check.
*/
func TestRequirePermission_Anonymous(t *testing.T) {
	handler := middleware.RequirePermission(sec.PermUsersRead)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
