// Copyright (c) 2026 BIMS Project. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/baryo/bims/internal/platform/apperr"
	"github.com/baryo/bims/internal/platform/sec"
	"github.com/baryo/bims/internal/users/auth"
	"github.com/baryo/bims/pkg/pagination"
)

// # Service Layer

// Service orchestrates business logic for the staff directory.
//
// It ensures that profile updates, activation toggles, and role assignments
// follow established business constraints.
type Service struct {
	accountRepository AccountRepository
	sessionRevoker    SessionRevoker
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	accountRepo AccountRepository,
	sessionRevoker SessionRevoker,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRevoker:    sessionRevoker,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	return service.accountRepository.FindByID(context, userID)
}

// UpdateProfileInput defines the mutable subset of user profile fields.
//
// Nil pointers mean "leave unchanged"; empty strings are legitimate values
// only for the middle name.
type UpdateProfileInput struct {
	FirstName  *string
	MiddleName *string
	LastName   *string
}

/*
UpdateProfile applies a partial set of changes to a user's name fields.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}

	if input.MiddleName != nil {
		user.MiddleName = *input.MiddleName
	}

	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	// Persist changes
	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

// # Directory Administration

/*
ListUsers returns a filtered, paginated page of the staff directory.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - params: pagination.Params

Returns:
  - []auth.User: The requested page
  - pagination.Meta: Page metadata for the response envelope
  - error: Retrieval failures
*/
func (service *Service) ListUsers(context context.Context, filter ListFilter, params pagination.Params) ([]auth.User, pagination.Meta, error) {
	users, total, err := service.accountRepository.List(context, filter, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_list_failed: %w", err)
	}

	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
GetUser retrieves any account by ID on behalf of an administrator.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated account
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetUser(context context.Context, userID string) (*auth.User, error) {
	return service.accountRepository.FindByID(context, userID)
}

/*
SetActive toggles an account's activation state.

Description: Deactivation locks the account out and immediately revokes every
refresh session it holds, forcing a global sign-out. An administrator cannot
deactivate their own account, which guarantees at least one live operator.

Parameters:
  - context: context.Context
  - actorID: string (The administrator performing the change)
  - targetID: string
  - active: bool

Returns:
  - error: ValidationError, NotFound, or storage failures
*/
func (service *Service) SetActive(context context.Context, actorID, targetID string, active bool) error {
	if !active && actorID == targetID {
		return apperr.ValidationError("You cannot deactivate your own account")
	}

	// Resolve first so an unknown target yields NOT_FOUND, not a silent no-op.
	if _, err := service.accountRepository.FindByID(context, targetID); err != nil {
		return err
	}

	if err := service.accountRepository.SetActive(context, targetID, active); err != nil {
		return fmt.Errorf("account_service_set_active_failed: %w", err)
	}

	if !active {
		// Force global revocation of sessions for the deactivated account
		_ = service.sessionRevoker.RevokeAll(context, targetID)
	}

	service.logger.WarnContext(context, "user_activation_changed",
		slog.String("actor_id", actorID),
		slog.String("user_id", targetID),
		slog.Bool("active", active),
	)

	return nil
}

/*
SetRole replaces an account's role.

Description: The role name is validated against the known role set. A
super_admin cannot demote their own account, which guarantees at least one
remaining role administrator.

Parameters:
  - context: context.Context
  - actorID: string
  - targetID: string
  - role: string

Returns:
  - error: ValidationError, NotFound, or storage failures
*/
func (service *Service) SetRole(context context.Context, actorID, targetID, role string) error {
	if !sec.ValidRole(role) {
		return apperr.ValidationError("Unknown role")
	}

	if actorID == targetID {
		return apperr.ValidationError("You cannot change your own role")
	}

	if _, err := service.accountRepository.FindByID(context, targetID); err != nil {
		return err
	}

	if err := service.accountRepository.SetRole(context, targetID, role); err != nil {
		return fmt.Errorf("account_service_set_role_failed: %w", err)
	}

	service.logger.WarnContext(context, "user_role_changed",
		slog.String("actor_id", actorID),
		slog.String("user_id", targetID),
		slog.String("role", role),
	)

	return nil
}
