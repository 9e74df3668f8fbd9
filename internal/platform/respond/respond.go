// Copyright (c) 2026 BIMS Project. All rights reserved.

/*
Package respond implements the unified JSON response envelope for the BIMS API.

Every response, success or failure, follows the same top-level shape:

	{
	  "success": true|false,
	  "message": "...",
	  "data":    { ... },   // optional
	  "meta":    { ... },   // optional, list endpoints only
	  "errors":  ["..."]    // optional, failures only
	}

The helpers here are the only way handlers write responses, which keeps the
contract stable across every endpoint.
*/
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/baryo/bims/internal/platform/apperr"
	"github.com/baryo/bims/internal/platform/ctxutil"
	"github.com/baryo/bims/pkg/pagination"
)

// Envelope is the top-level JSON shape of every API response.
type Envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    any              `json:"data,omitempty"`
	Meta    *pagination.Meta `json:"meta,omitempty"`
	Errors  []string         `json:"errors,omitempty"`
}

// # Success Responses

// OK writes a 200 response with the given message and optional payload.
func OK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 response for newly created resources.
func Created(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Paginated writes a 200 response for list endpoints, carrying page metadata
// alongside the data slice.
func Paginated(w http.ResponseWriter, message string, data any, meta pagination.Meta) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    &meta,
	})
}

// # Error Responses

// Error maps err onto the envelope and writes it.
//
// Known [apperr.AppError] values keep their status and client-safe message.
// Field-level details are flattened into the errors array as
// "<field>: <message>" strings. Anything else becomes a generic 500 so
// internal details never leak to clients.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.As(err)
	if ae == nil {
		ae = apperr.Internal(err)
	}

	if ae.HTTPStatus >= http.StatusInternalServerError {
		ctxutil.GetLogger(r.Context()).ErrorContext(r.Context(), "request_failed",
			"code", ae.Code,
			"status", ae.HTTPStatus,
			"path", r.URL.Path,
			"error", err,
		)
	}

	env := Envelope{
		Success: false,
		Message: ae.Message,
	}
	for _, d := range ae.Details {
		env.Errors = append(env.Errors, fmt.Sprintf("%s: %s", d.Field, d.Message))
	}

	writeJSON(w, ae.HTTPStatus, env)
}

// writeJSON serializes the envelope. Encoding failures at this point mean the
// header is already written, so the error is only logged.
func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		// Cannot recover; the status line is already on the wire.
		return
	}
}
