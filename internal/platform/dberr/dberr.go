// Copyright (c) 2026 BIMS Project. All rights reserved.

// Package dberr translates low-level PostgreSQL driver errors into the
// [apperr] taxonomy so stores never leak pgx types into services.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baryo/bims/internal/platform/apperr"
)

// pgUniqueViolation is the SQLSTATE code for unique-constraint violations.
const pgUniqueViolation = "23505"

// Map converts a pgx error into an [apperr.AppError].
//
// Mapping rules:
//   - pgx.ErrNoRows            -> 404 NOT_FOUND (using resource as the name)
//   - unique_violation (23505) -> 409 CONFLICT
//   - anything else            -> 500 INTERNAL_ERROR (cause preserved)
func Map(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.Conflict(resource + " already exists")
	}

	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Stores use this when a duplicate needs a custom client-facing message.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
