// Copyright (c) 2026 BIMS Project. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baryo/bims/internal/platform/middleware"
	requestutil "github.com/baryo/bims/internal/platform/request"
	"github.com/baryo/bims/internal/platform/respond"
	"github.com/baryo/bims/internal/platform/sec"
	"github.com/baryo/bims/internal/platform/validate"
	"github.com/baryo/bims/internal/users/auth"
	"github.com/baryo/bims/pkg/pagination"
	"github.com/baryo/bims/pkg/query"
)

// # Definitions & Constructors

// Handler implements the staff directory HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with directory routes.
//
// # Endpoints
//   - PATCH /me              : Updates the caller's own profile.
//   - GET   /                : Lists the directory (users:read).
//   - GET   /{id}            : Fetches one account (users:read).
//   - POST  /{id}/activate   : Reactivates an account (users:manage).
//   - POST  /{id}/deactivate : Locks an account out (users:manage).
//   - PATCH /{id}/role       : Assigns a role (roles:assign).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Patch("/me", handler.updateProfile)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermUsersRead))
		r.Get("/", handler.listUsers)
		r.Get("/{id}", handler.getUser)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermUsersManage))
		r.Post("/{id}/activate", handler.activate)
		r.Post("/{id}/deactivate", handler.deactivate)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermRolesAssign))
		r.Patch("/{id}/role", handler.setRole)
	})

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	FirstName  *string `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

/*
UpdateProfile applies partial name changes to the caller's own account.

PATCH /api/v1/users/me

Request:
  - Body: updateProfileRequest (FirstName, MiddleName, LastName; all optional)

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidJSON: Validation failure
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	if input.FirstName != nil {
		v.Required(auth.FieldFirstName, *input.FirstName).
			MaxLen(auth.FieldFirstName, *input.FirstName, auth.NameMaxLength)
	}
	if input.MiddleName != nil {
		v.MaxLen(auth.FieldMiddleName, *input.MiddleName, auth.NameMaxLength)
	}
	if input.LastName != nil {
		v.Required(auth.FieldLastName, *input.LastName).
			MaxLen(auth.FieldLastName, *input.LastName, auth.NameMaxLength)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), claims.UserID, UpdateProfileInput{
		FirstName:  input.FirstName,
		MiddleName: input.MiddleName,
		LastName:   input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Profile updated successfully", map[string]any{
		auth.FieldUser: user,
	})
}

/*
ListUsers returns a filtered, paginated page of the staff directory.

GET /api/v1/users?page=1&limit=20&q=ana&roles=admin,user

Response:
  - 200: []User with pagination meta
  - 403: ErrForbidden: Missing users:read capability
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := ListFilter{
		Query: request.URL.Query().Get("q"),
		Roles: query.StringSlice(request.URL.Query().Get("roles")),
	}

	users, meta, err := handler.accountService.ListUsers(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, "Users retrieved successfully", users, meta)
}

/*
GetUser fetches a single account by ID.

GET /api/v1/users/{id}

Response:
  - 200: User
  - 400: ErrInvalidJSON: Malformed ID
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetUser(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "User retrieved successfully", map[string]any{
		auth.FieldUser: user,
	})
}

/*
Activate re-enables a previously deactivated account.

POST /api/v1/users/{id}/activate

Response:
  - 200: Success
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	handler.setActive(writer, request, true, "User activated successfully")
}

/*
Deactivate locks an account out and revokes its sessions.

POST /api/v1/users/{id}/deactivate

Response:
  - 200: Success
  - 400: ErrInvalidJSON: Attempted self-deactivation
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	handler.setActive(writer, request, false, "User deactivated successfully")
}

// setActive is the shared implementation behind activate and deactivate.
func (handler *Handler) setActive(writer http.ResponseWriter, request *http.Request, active bool, message string) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.SetActive(request.Context(), claims.UserID, id, active); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, message, nil)
}

/*
SetRole assigns a new role to an account.

PATCH /api/v1/users/{id}/role

Request:
  - Body: setRoleRequest (Role)

Response:
  - 200: Success
  - 400: ErrInvalidJSON: Unknown role or self-assignment
  - 403: ErrForbidden: Missing roles:assign capability
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) setRole(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input setRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required("role", input.Role).
		OneOf("role", input.Role, string(sec.RoleSuperAdmin), string(sec.RoleAdmin), string(sec.RoleUser))

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.SetRole(request.Context(), claims.UserID, id, input.Role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Role assigned successfully", nil)
}
