// Copyright (c) 2026 BIMS Project. All rights reserved.

/*
Core identity and access management for barangay staff accounts.

It handles everything from registration and secure password hashing to the
refresh-token session lifecycle (rotation, revocation, cleanup).

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and Redis (volatile tokens).
  - Security: Bcrypt password hashing and HS256-signed JWTs with distinct secrets.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baryo/bims/internal/platform/apperr"
	"github.com/baryo/bims/internal/platform/sec"
	"github.com/baryo/bims/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and verifying security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, email, role string) (string, error)

	// GenerateRefreshToken creates a signed refresh JWT whose jti claim is
	// the session row ID.
	GenerateRefreshToken(userID, sessionID string) (string, error)

	// VerifyRefreshToken checks signature and expiry of a refresh token string.
	VerifyRefreshToken(tokenString string) (*sec.RefreshClaims, error)

	// RefreshTTL returns the configured refresh token lifetime. The session
	// row expiry is derived from the same value so the signed expiry and the
	// stored expiry can never drift apart.
	RefreshTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed before merging.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	resetTokens       VolatileTokenRepository
	verifyTokens      VolatileTokenRepository
	tokenProvider     TokenProvider
	passwordHasher    sec.PasswordHasher
	logger            *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	resetTokens VolatileTokenRepository,
	verifyTokens VolatileTokenRepository,
	tokenProv TokenProvider,
	hasher sec.PasswordHasher,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		resetTokens:       resetTokens,
		verifyTokens:      verifyTokens,
		tokenProvider:     tokenProv,
		passwordHasher:    hasher,
		logger:            logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new staff account.
type RegisterInput struct {
	Email      string
	Username   string
	Password   string
	FirstName  string
	MiddleName string
	LastName   string
	UserAgent  string
	IPAddress  string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrolls a new staff member with the default role and signs them
in immediately, issuing a token pair exactly as Login does. Uniqueness
conflicts are reported email-first so a request violating both constraints
gets a deterministic message.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *LoginResult: Created entity plus its first token pair
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*LoginResult, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := service.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.Must(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		MiddleName:   input.MiddleName,
		LastName:     input.LastName,
		Role:         sec.RoleUser,
		IsActive:     true,
		IsVerified:   false,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Generate and store a verification token in Redis as an async-ready side effect
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		_ = service.verifyTokens.Set(context, token, user.ID, VerificationTokenTTL)
		// TODO: Trigger email delivery with the verification link once the
		// barangay SMTP relay is provisioned.
	}

	// Registration doubles as the first sign-in.
	tokens, err := service.issueSession(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{Tokens: *tokens, User: user}, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginResult represents a successfully established user session.
type LoginResult struct {
	Tokens TokenPair
	User   *User
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Verifies identity with a constant-time password comparison,
rejects deactivated accounts, stamps the last login time, and opens a new
refresh session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Transport-ready session credentials
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {

	// Look up by email. Generic message to prevent account enumeration:
	// an unknown email and a wrong password must be indistinguishable.
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// Verify password hash using bcrypt's constant-time comparison.
	if !service.passwordHasher.Compare(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// Deactivated accounts keep their data but cannot authenticate. Same
	// status class as bad credentials; only the message differs.
	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is deactivated")
	}

	// Open a fresh refresh session and mint the token pair.
	tokens, err := service.issueSession(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	// Stamp the last successful login. Best-effort: a failed stamp must not
	// fail an otherwise valid login.
	now := time.Now()
	if err := service.userRepository.RecordLogin(context, user.ID, now); err != nil {
		service.logger.WarnContext(context, "record_login_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	} else {
		user.LastLoginAt = &now
	}

	return &LoginResult{Tokens: *tokens, User: user}, nil
}

/*
Logout permanently revokes the session behind the given refresh token.

Description: Idempotent by design. The token is not verified as a JWT first;
an unknown, expired, or already-revoked token still yields success so that
clients can always clear their local state.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	tokenHash := sec.HashToken(refreshToken)

	if err := service.sessionRepository.RevokeByTokenHash(context, tokenHash); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
Refresh implements the refresh token rotation mechanism.

Description: Verifies the refresh JWT signature, then atomically consumes the
matching session row. Consumption revokes the old session in the same
statement that reads it, so a replayed or concurrently reused token loses the
race and is rejected. A valid JWT whose session row is revoked or expired is
rejected as well; the database row is the source of truth.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginResult: Rotated session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginResult, error) {

	// Signature and expiry check before touching the database.
	claims, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// Atomically revoke-and-fetch the live session for this token.
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.Consume(context, tokenHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// The jti claim must match the consumed row. A mismatch means the token
	// was minted for a different session and is treated as forged.
	if session.ID != claims.ID || session.UserID != claims.Subject {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// Fetch the user associated with this session.
	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// An account deactivated mid-session cannot rotate its way back in.
	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is deactivated")
	}

	tokens, err := service.issueSession(context, user, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Tokens: *tokens, User: user}, nil
}

/*
issueSession opens a new refresh session for the user and mints a token pair.

Description: The session row ID is generated first so it can be embedded as
the refresh JWT's jti claim. Both the JWT expiry and the row expiry derive
from the provider's single RefreshTTL value.
*/
func (service *Service) issueSession(context context.Context, user *User, userAgent, ipAddress string) (*TokenPair, error) {

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	sessionID := uuidv7.Must()
	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	session := &Session{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: time.Now().Add(service.tokenProvider.RefreshTTL()),
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// # Profile & Credentials

/*
Profile returns the account belonging to the authenticated user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - err: apperr.NotFound or storage failures
*/
func (service *Service) Profile(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password before rotating the hash, then
revokes EVERY refresh session so all devices must log in again with the new
password.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - err: NotFound, ValidationError, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !service.passwordHasher.Compare(currentPassword, user.PasswordHash) {
		return apperr.ValidationError("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := service.passwordHasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security Side Effect: Revoke all sessions to force re-login everywhere
	_ = service.sessionRepository.RevokeAll(context, userID)

	service.logger.InfoContext(context, "password_changed", slog.String("user_id", userID))

	return nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Reset token
  - err: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	// Save to Redis
	if err := service.resetTokens.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and revokes all active sessions for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Retrieve the userID associated with the reset token from Redis
	userID, err := service.resetTokens.Get(context, token)
	if err != nil {
		return err
	}

	// Hash the new password securely
	hashedPassword, err := service.passwordHasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	// Update the user's password in persistent storage
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: Revoke EVERY active session for this user
	_ = service.sessionRepository.RevokeAll(context, userID)

	// Delete the used token from Redis
	_ = service.resetTokens.Delete(context, token)

	return nil
}

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {

	// Retrieve the user ID associated with the verification token from Redis
	userID, err := service.verifyTokens.Get(context, token)
	if err != nil {
		return err
	}

	// Update the user's status to verified in persistent storage
	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis
	_ = service.verifyTokens.Delete(context, token)

	return nil
}
