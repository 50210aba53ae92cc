// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

// PostgreSQL implementation of the identity repositories.
//
// # Architecture
//
// Repositories in this package are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) on top of the
// [pgxpool.Pool] connection manager. Every statement runs through
// [txn.Q], so a write issued inside a coordinated transaction joins that
// transaction automatically instead of grabbing a fresh pool connection.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/database/schema"
	"github.com/huyndq/comicbox/internal/platform/dberr"
	"github.com/huyndq/comicbox/internal/platform/txn"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userSelect joins the public account row with its private credential row;
// every read path appends its own WHERE clause.
var userSelect = fmt.Sprintf(`
	SELECT a.%s, a.%s, c.%s, c.%s, a.%s,
	       COALESCE(a.%s, ''), COALESCE(a.%s, ''), a.%s,
	       c.%s, a.%s, a.%s, a.%s
	FROM %s a
	JOIN %s c ON c.%s = a.%s`,
	schema.UserAccount.ID, schema.UserAccount.Username, schema.UserCredential.Email,
	schema.UserCredential.Password, schema.UserAccount.DisplayName,
	schema.UserAccount.AvatarURL, schema.UserAccount.Bio, schema.UserAccount.Role,
	schema.UserCredential.IsVerified, schema.UserAccount.IsActive,
	schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	schema.UserAccount.Table,
	schema.UserCredential.Table, schema.UserCredential.UserID, schema.UserAccount.ID,
)

// scanUser hydrates a single User from a joined account/credential row.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Bio,
		&user.Role,
		&user.IsVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
FindByID retrieves an identity by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := userSelect + fmt.Sprintf(` WHERE a.%s = $1 AND a.%s IS NULL`,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt)

	user, err := scanUser(txn.Q(context, repository.pool).QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves an identity by its unique email address.

Description: Performs a lookup on the credential table, filtering out
soft-deleted accounts.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := userSelect + fmt.Sprintf(` WHERE c.%s = $1 AND a.%s IS NULL`,
		schema.UserCredential.Email, schema.UserAccount.DeletedAt)

	user, err := scanUser(txn.Q(context, repository.pool).QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this email")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsername retrieves an identity by its unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := userSelect + fmt.Sprintf(` WHERE a.%s = $1 AND a.%s IS NULL`,
		schema.UserAccount.Username, schema.UserAccount.DeletedAt)

	user, err := scanUser(txn.Q(context, repository.pool).QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this username")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
CreateAccount persists the public account row.

Description: The unique index on username backstops concurrent registrations;
the losing writer receives [ErrUserAlreadyExists].

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: ErrUserAlreadyExists or database errors
*/
func (repository *PostgresUserRepository) CreateAccount(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Role,
		schema.UserAccount.IsActive, schema.UserAccount.DisplayName,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := txn.Q(context, repository.pool).Exec(context, query,
		user.ID,
		user.Username,
		user.Role,
		user.IsActive,
		user.DisplayName,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("postgres_user_repo_create_account_failed: %w", err)
	}

	return nil
}

/*
CreateCredential persists the private login row bound to the account.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: ErrEmailAlreadyUsed or database errors
*/
func (repository *PostgresUserRepository) CreateCredential(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.UserCredential.Table,
		schema.UserCredential.UserID, schema.UserCredential.Email, schema.UserCredential.Password,
		schema.UserCredential.IsVerified, schema.UserCredential.CreatedAt, schema.UserCredential.UpdatedAt,
	)

	now := time.Now()

	_, err := txn.Q(context, repository.pool).Exec(context, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		now,
		now,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("postgres_user_repo_create_credential_failed: %w", err)
	}

	return nil
}

/*
InitFollowStat provisions the zeroed counter row for a new account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) InitFollowStat(context context.Context, userID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, 0, 0, $2)`,
		schema.UserFollowStat.Table, schema.UserFollowStat.UserID,
		schema.UserFollowStat.FollowerCount, schema.UserFollowStat.FollowingCount,
		schema.UserFollowStat.UpdatedAt,
	)

	_, err := txn.Q(context, repository.pool).Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_init_followstat_failed: %w", err)
	}

	return nil
}

/*
TouchLastLogin records the latest successful authentication time.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) TouchLastLogin(context context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $2
		WHERE %s = $1`,
		schema.UserCredential.Table, schema.UserCredential.LastLoginAt,
		schema.UserCredential.UpdatedAt, schema.UserCredential.UserID,
	)

	_, err := txn.Q(context, repository.pool).Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_touch_last_login_failed: %w", err)
	}

	return nil
}
