// Copyright (c) 2026 BIMS Project. All rights reserved.

// Package request provides helpers for extracting and decoding inbound
// HTTP request data (JSON bodies, URL parameters, auth claims).
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baryo/bims/internal/platform/apperr"
	"github.com/baryo/bims/internal/platform/ctxutil"
	"github.com/baryo/bims/internal/platform/sec"
	"github.com/baryo/bims/internal/platform/validate"
)

// maxBodyBytes caps request bodies at 1 MiB. Payloads in this API are small
// JSON documents, so anything larger is either a mistake or abuse.
const maxBodyBytes = 1 << 20

// # Body Decoding

// DecodeJSON reads and decodes the request body into dst.
//
// It enforces the body size cap, rejects unknown fields, and rejects
// trailing garbage after the JSON document. All failures are reported as
// [validate.ErrInvalidJSON] so clients see a uniform 400.
func DecodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return validate.ErrInvalidJSON
	}

	// A second decode must hit EOF, otherwise the body held two documents.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}

	return nil
}

// # URL Parameters

// Param returns the named chi URL parameter.
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// ID extracts and validates the "id" URL parameter as a UUID.
func ID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")

	v := &validate.Validator{}
	if err := v.Required("id", id).UUID("id", id).Err(); err != nil {
		return "", err
	}

	return id, nil
}

// # Identity

// Claims returns the authenticated user's claims, or nil for anonymous requests.
func Claims(r *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(r.Context())
}

// RequiredClaims returns the authenticated user's claims, or a 401 error
// if the request is anonymous.
func RequiredClaims(r *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(r.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Access token required")
	}
	return claims, nil
}

// RequiredUserID returns the authenticated user's ID, or a 401 error.
func RequiredUserID(r *http.Request) (string, error) {
	claims, err := RequiredClaims(r)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
