// Copyright (c) 2026 BIMS Project. All rights reserved.

/*
Package account handles staff directory administration and profile management.

It provides functionalities for users to maintain their own identity data and
for administrators to browse the directory, control account activation, and
assign roles.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Authorization: Route-level capability checks; the service trusts its caller.
  - Security: Deactivation immediately revokes every refresh session.
*/
package account

import (
	"context"

	"github.com/baryo/bims/internal/users/auth"
	"github.com/baryo/bims/pkg/pagination"
)

// # Query Types

// ListFilter narrows a directory listing.
type ListFilter struct {
	// Query matches against username, email, and name parts (case-insensitive).
	Query string
	// Roles restricts results to the given role names. Empty means all roles.
	Roles []string
}

// # Repository Contracts

// AccountRepository defines the persistence contract for directory administration.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		List returns a page of the staff directory plus the unfiltered-page total.

		Parameters:
		  - context: context.Context
		  - filter: ListFilter
		  - params: pagination.Params

		Returns:
		  - []auth.User: The requested page
		  - int: Total matching rows across all pages
		  - error: Retrieval failures
	*/
	List(context context.Context, filter ListFilter, params pagination.Params) ([]auth.User, int, error)

	/*
		SetActive flips the account activation flag.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - active: bool

		Returns:
		  - error: Execution failures
	*/
	SetActive(context context.Context, userID string, active bool) error

	/*
		SetRole replaces the account's role.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: string

		Returns:
		  - error: Execution failures
	*/
	SetRole(context context.Context, userID string, role string) error
}

// SessionRevoker is the slice of the auth session store this package needs
// to force sign-outs after administrative actions.
type SessionRevoker interface {
	/*
		RevokeAll terminates every session for a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Revocation failures
	*/
	RevokeAll(context context.Context, userID string) error
}
