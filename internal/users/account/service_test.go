// Copyright (c) 2026 BIMS Project. All rights reserved.

package account

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryo/bims/internal/platform/apperr"
	"github.com/baryo/bims/internal/platform/sec"
	"github.com/baryo/bims/internal/users/auth"
	"github.com/baryo/bims/pkg/pagination"
)

// # In-Memory Fakes

type memoryDirectory struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: make(map[string]*auth.User)}
}

func (d *memoryDirectory) put(user *auth.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *user
	d.users[user.ID] = &clone
}

func (d *memoryDirectory) FindByID(_ context.Context, id string) (*auth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if user, ok := d.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (d *memoryDirectory) Update(_ context.Context, user *auth.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.users[user.ID]; ok {
		existing.FirstName = user.FirstName
		existing.MiddleName = user.MiddleName
		existing.LastName = user.LastName
	}
	return nil
}

func (d *memoryDirectory) List(_ context.Context, filter ListFilter, params pagination.Params) ([]auth.User, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	matches := []auth.User{}
	for _, user := range d.users {
		if filter.Query != "" {
			needle := strings.ToLower(filter.Query)
			haystack := strings.ToLower(user.Username + " " + user.Email + " " + user.FirstName + " " + user.LastName)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		if len(filter.Roles) > 0 {
			found := false
			for _, role := range filter.Roles {
				if string(user.Role) == role {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		matches = append(matches, *user)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	return matches[start:end], total, nil
}

func (d *memoryDirectory) SetActive(_ context.Context, userID string, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if user, ok := d.users[userID]; ok {
		user.IsActive = active
	}
	return nil
}

func (d *memoryDirectory) SetRole(_ context.Context, userID string, role string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if user, ok := d.users[userID]; ok {
		user.Role = sec.UserRole(role)
	}
	return nil
}

// recordingRevoker records which user IDs had their sessions nuked.
type recordingRevoker struct {
	mu      sync.Mutex
	revoked []string
}

func (r *recordingRevoker) RevokeAll(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked = append(r.revoked, userID)
	return nil
}

// # Test Harness

func newAccountHarness(t *testing.T) (*Service, *memoryDirectory, *recordingRevoker) {
	t.Helper()

	directory := newMemoryDirectory()
	revoker := &recordingRevoker{}
	service := NewService(directory, revoker, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, directory, revoker
}

func seedUser(directory *memoryDirectory, id, username, role string, createdAt time.Time) *auth.User {
	user := &auth.User{
		ID:        id,
		Email:     username + "@barangay.ph",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Role:      sec.UserRole(role),
		IsActive:  true,
		CreatedAt: createdAt,
	}
	directory.put(user)
	return user
}

// # Profile

/*
TestService_UpdateProfile verifies partial updates leave omitted fields alone.
*/
func TestService_UpdateProfile(t *testing.T) {
	service, directory, _ := newAccountHarness(t)
	seedUser(directory, "u1", "clerk", "user", time.Now())

	newFirst := "Juana"
	emptyMiddle := ""

	updated, err := service.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		FirstName:  &newFirst,
		MiddleName: &emptyMiddle,
	})
	require.NoError(t, err)

	assert.Equal(t, "Juana", updated.FirstName)
	assert.Equal(t, "", updated.MiddleName)
	assert.Equal(t, "User", updated.LastName) // untouched

	_, err = service.UpdateProfile(context.Background(), "ghost", UpdateProfileInput{})
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

// # Directory Listing

/*
TestService_ListUsers verifies filtering and page metadata.
*/
func TestService_ListUsers(t *testing.T) {
	service, directory, _ := newAccountHarness(t)

	base := time.Now()
	seedUser(directory, "u1", "kap-tony", "super_admin", base.Add(-3*time.Hour))
	seedUser(directory, "u2", "sec-ana", "admin", base.Add(-2*time.Hour))
	seedUser(directory, "u3", "clerk-ben", "user", base.Add(-1*time.Hour))

	t.Run("unfiltered", func(t *testing.T) {
		users, meta, err := service.ListUsers(context.Background(), ListFilter{}, pagination.Params{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, 3, meta.Total)
		assert.Equal(t, 2, meta.TotalPages)
		// Newest first
		assert.Equal(t, "clerk-ben", users[0].Username)
	})

	t.Run("role_filter", func(t *testing.T) {
		users, meta, err := service.ListUsers(context.Background(), ListFilter{
			Roles: []string{"admin", "super_admin"},
		}, pagination.Params{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, 2, meta.Total)
	})

	t.Run("text_query", func(t *testing.T) {
		users, _, err := service.ListUsers(context.Background(), ListFilter{Query: "ana"}, pagination.Params{Page: 1, Limit: 20})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "sec-ana", users[0].Username)
	})
}

// # Activation

/*
TestService_SetActive verifies the deactivation side effects and guards.
*/
func TestService_SetActive(t *testing.T) {
	service, directory, revoker := newAccountHarness(t)
	seedUser(directory, "admin-1", "kap-tony", "admin", time.Now())
	seedUser(directory, "u2", "clerk-ben", "user", time.Now())

	t.Run("deactivate_revokes_sessions", func(t *testing.T) {
		require.NoError(t, service.SetActive(context.Background(), "admin-1", "u2", false))

		target, err := directory.FindByID(context.Background(), "u2")
		require.NoError(t, err)
		assert.False(t, target.IsActive)
		assert.Contains(t, revoker.revoked, "u2")
	})

	t.Run("reactivate_does_not_revoke", func(t *testing.T) {
		before := len(revoker.revoked)
		require.NoError(t, service.SetActive(context.Background(), "admin-1", "u2", true))

		target, err := directory.FindByID(context.Background(), "u2")
		require.NoError(t, err)
		assert.True(t, target.IsActive)
		assert.Len(t, revoker.revoked, before)
	})

	t.Run("self_deactivation_blocked", func(t *testing.T) {
		err := service.SetActive(context.Background(), "admin-1", "admin-1", false)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("unknown_target", func(t *testing.T) {
		err := service.SetActive(context.Background(), "admin-1", "ghost", false)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

// # Role Assignment

/*
TestService_SetRole verifies validation, self-assignment guard, and persistence.
*/
func TestService_SetRole(t *testing.T) {
	service, directory, _ := newAccountHarness(t)
	seedUser(directory, "root-1", "kap-tony", "super_admin", time.Now())
	seedUser(directory, "u2", "clerk-ben", "user", time.Now())

	t.Run("success", func(t *testing.T) {
		require.NoError(t, service.SetRole(context.Background(), "root-1", "u2", "admin"))

		target, err := directory.FindByID(context.Background(), "u2")
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAdmin, target.Role)
	})

	t.Run("unknown_role", func(t *testing.T) {
		err := service.SetRole(context.Background(), "root-1", "u2", "moderator")
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("self_assignment_blocked", func(t *testing.T) {
		err := service.SetRole(context.Background(), "root-1", "root-1", "user")
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("unknown_target", func(t *testing.T) {
		err := service.SetRole(context.Background(), "root-1", "ghost", "admin")
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}
