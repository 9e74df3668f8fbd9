// Copyright (c) 2026 BIMS Project. All rights reserved.

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryo/bims/internal/platform/middleware"
)

// newAuthRouter wires the handler behind the real Authenticate middleware,
// mirroring the production mounting under /auth.
func newAuthRouter(h *serviceHarness) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(h.tokens))
	router.Mount("/auth", NewHandler(h.service).Routes())
	return router
}

func doJSON(t *testing.T, router chi.Router, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func parseEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

/*
TestHandler_Register verifies the 201 envelope and that the stored hash
never leaks through the JSON encoder.
*/
func TestHandler_Register(t *testing.T) {
	h := newServiceHarness(t)
	router := newAuthRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":      "sk@barangay.ph",
		"username":   "sk-chair",
		"password":   "Passw0rd!",
		"first_name": "Maria",
		"last_name":  "Santos",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	envelope := parseEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "User registered successfully", envelope["message"])

	data := envelope["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "sk@barangay.ph", user["email"])
	assert.Equal(t, "user", user["role"])

	// Registration returns a working token pair alongside the profile.
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])

	// The serialized user must not expose any credential material.
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "Passw0rd!")
}

/*
TestHandler_Register_Validation verifies the flattened errors array.
*/
func TestHandler_Register_Validation(t *testing.T) {
	h := newServiceHarness(t)
	router := newAuthRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":      "not-an-email",
		"username":   "ab",
		"password":   "short",
		"first_name": "Maria",
		"last_name":  "Santos",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := parseEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "Validation failed", envelope["message"])

	errs := envelope["errors"].([]any)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs, "email: Must be a valid email address")
	assert.Contains(t, errs, "username: Minimum 3 characters")
	assert.Contains(t, errs, "password: Minimum 8 characters")
}

/*
TestHandler_LoginAndRefresh exercises the full token exchange over HTTP.
*/
func TestHandler_LoginAndRefresh(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t)
	router := newAuthRouter(h)

	// Login
	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "clerk@barangay.ph",
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := parseEnvelope(t, rec)
	assert.Equal(t, "Login successful", envelope["message"])

	data := envelope["data"].(map[string]any)
	accessToken := data["accessToken"].(string)
	refreshToken := data["refreshToken"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	require.Contains(t, data, "user")

	// Refresh with the body-carried token
	rec = doJSON(t, router, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refreshToken": refreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	envelope = parseEnvelope(t, rec)
	assert.Equal(t, "Token refreshed successfully", envelope["message"])
	rotated := envelope["data"].(map[string]any)["refreshToken"].(string)
	assert.NotEqual(t, refreshToken, rotated)

	// Replaying the consumed token yields 401
	rec = doJSON(t, router, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refreshToken": refreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid refresh token", parseEnvelope(t, rec)["message"])
}

/*
TestHandler_Login_InvalidCredentials verifies the uniform 401 envelope.
*/
func TestHandler_Login_InvalidCredentials(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t)
	router := newAuthRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "clerk@barangay.ph",
		"password": "definitely-wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	envelope := parseEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "Invalid credentials", envelope["message"])
	assert.NotContains(t, envelope, "data")
}

/*
TestHandler_Logout verifies idempotent 200 responses regardless of token state.
*/
func TestHandler_Logout(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t)
	result := h.login(t)
	router := newAuthRouter(h)

	payload := map[string]string{"refreshToken": result.Tokens.RefreshToken}

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", "", payload)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", parseEnvelope(t, rec)["message"])

	// Second logout with the same (now dead) token still succeeds.
	rec = doJSON(t, router, http.MethodPost, "/auth/logout", "", payload)
	assert.Equal(t, http.StatusOK, rec.Code)

	// As does a logout with no token at all.
	rec = doJSON(t, router, http.MethodPost, "/auth/logout", "", map[string]string{})
	assert.Equal(t, http.StatusOK, rec.Code)
}

/*
TestHandler_ChangePassword verifies authentication gating and the
incorrect-current-password response.
*/
func TestHandler_ChangePassword(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t)
	result := h.login(t)
	router := newAuthRouter(h)

	payload := map[string]string{
		"current_password": "Passw0rd!",
		"new_password":     "NewPassw0rd!",
	}

	// Anonymous request is blocked before the body is read.
	rec := doJSON(t, router, http.MethodPost, "/auth/change-password", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", parseEnvelope(t, rec)["message"])

	// Wrong current password is a 400 validation failure.
	rec = doJSON(t, router, http.MethodPost, "/auth/change-password", result.Tokens.AccessToken, map[string]string{
		"current_password": "wrong",
		"new_password":     "NewPassw0rd!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Current password is incorrect", parseEnvelope(t, rec)["message"])

	// Authenticated with the right current password succeeds.
	rec = doJSON(t, router, http.MethodPost, "/auth/change-password", result.Tokens.AccessToken, payload)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password changed successfully", parseEnvelope(t, rec)["message"])
}

/*
TestHandler_Profile verifies the authenticated profile endpoint.
*/
func TestHandler_Profile(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t)
	result := h.login(t)
	router := newAuthRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+result.Tokens.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	envelope := parseEnvelope(t, rec)
	user := envelope["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "brgy-clerk", user["username"])
}

/*
TestHandler_InvalidJSON verifies malformed bodies yield the uniform 400.
*/
func TestHandler_InvalidJSON(t *testing.T) {
	h := newServiceHarness(t)
	router := newAuthRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON payload", parseEnvelope(t, rec)["message"])
}
