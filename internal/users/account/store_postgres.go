// Copyright (c) 2026 BIMS Project. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baryo/bims/internal/platform/apperr"
	"github.com/baryo/bims/internal/users/auth"
	"github.com/baryo/bims/pkg/pagination"
)

// # Account Repository

// PostgresAccountRepository implements AccountRepository using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `
	id, email, username, passwordhash, firstname, middlename, lastname,
	role, isactive, isverified, lastloginat, createdat, updatedat`

// scanAccount hydrates an [auth.User] from a row following [accountColumns].
func scanAccount(row pgx.Row) (*auth.User, error) {
	user := &auth.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.MiddleName,
		&user.LastName,
		&user.Role,
		&user.IsActive,
		&user.IsVerified,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Update persists changes to a user's mutable name fields.

Description: Synchronizes the in-memory user state with the database,
refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: Update failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, user *auth.User) error {
	const query = `
		UPDATE users.account
		SET firstname = $2, middlename = $3, lastname = $4, updatedat = $5
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}

	return nil
}

/*
List returns a filtered, paginated slice of the staff directory.

Description: The WHERE clause is assembled dynamically from the filter.
A free-text query matches username, email, and name parts via ILIKE; the
roles filter uses = ANY against a text array parameter.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - params: pagination.Params

Returns:
  - []auth.User: The requested page, newest first
  - int: Total matching rows
  - error: Retrieval failures
*/
func (repository *PostgresAccountRepository) List(context context.Context, filter ListFilter, params pagination.Params) ([]auth.User, int, error) {
	conditions := []string{"deletedat IS NULL"}
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf(
			"(username ILIKE %[1]s OR email ILIKE %[1]s OR firstname ILIKE %[1]s OR lastname ILIKE %[1]s)",
			placeholder,
		))
	}

	if len(filter.Roles) > 0 {
		args = append(args, filter.Roles)
		conditions = append(conditions, fmt.Sprintf("role = ANY($%d)", len(args)))
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	// Count first so the page metadata reflects the same filter.
	countQuery := "SELECT COUNT(*) FROM users.account " + whereClause

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}

	args = append(args, params.Limit, params.Offset())
	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM users.account
		%s
		ORDER BY createdat DESC
		LIMIT $%d OFFSET $%d`,
		accountColumns, whereClause, len(args)-1, len(args),
	)

	rows, err := repository.pool.Query(context, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := []auth.User{}
	for rows.Next() {
		user, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_rows_failed: %w", err)
	}

	return users, total, nil
}

/*
SetActive flips the account activation flag.

Parameters:
  - context: context.Context
  - userID: string
  - active: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) SetActive(context context.Context, userID string, active bool) error {
	const query = `
		UPDATE users.account
		SET isactive = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, active, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_set_active_failed: %w", err)
	}

	return nil
}

/*
SetRole replaces the account's role.

Parameters:
  - context: context.Context
  - userID: string
  - role: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) SetRole(context context.Context, userID string, role string) error {
	const query = `
		UPDATE users.account
		SET role = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_set_role_failed: %w", err)
	}

	return nil
}
