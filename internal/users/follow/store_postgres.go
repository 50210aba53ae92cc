// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package follow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huyndq/comicbox/internal/platform/database/schema"
	"github.com/huyndq/comicbox/internal/platform/dberr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the follow Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
AccountExists reports whether the account exists and is not deleted.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - bool: Presence flag
  - error: Retrieval failures
*/
func (repository *PostgresRepository) AccountExists(context context.Context, userID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL
		)`,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	var exists bool
	err := txn.Q(context, repository.pool).QueryRow(context, query, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres_follow_repo_account_exists_failed: %w", err)
	}

	return exists, nil
}

/*
EdgeExists reports whether the directed edge is present.

Parameters:
  - context: context.Context
  - followerID: string
  - followeeID: string

Returns:
  - bool: Presence flag
  - error: Retrieval failures
*/
func (repository *PostgresRepository) EdgeExists(context context.Context, followerID, followeeID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE %s = $1 AND %s = $2
		)`,
		schema.UserFollowing.Table, schema.UserFollowing.FollowerID, schema.UserFollowing.FolloweeID,
	)

	var exists bool
	err := txn.Q(context, repository.pool).QueryRow(context, query, followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres_follow_repo_edge_exists_failed: %w", err)
	}

	return exists, nil
}

/*
CreateEdge inserts the directed edge.

Description: The composite primary key (followerid, followeeid) rejects
duplicates; a losing concurrent writer receives ErrAlreadyFollowing.

Parameters:
  - context: context.Context
  - followerID: string
  - followeeID: string

Returns:
  - error: ErrAlreadyFollowing or persistence failures
*/
func (repository *PostgresRepository) CreateEdge(context context.Context, followerID, followeeID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)`,
		schema.UserFollowing.Table,
		schema.UserFollowing.FollowerID, schema.UserFollowing.FolloweeID, schema.UserFollowing.CreatedAt,
	)

	_, err := txn.Q(context, repository.pool).Exec(context, query, followerID, followeeID, time.Now())
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrAlreadyFollowing
		}
		return fmt.Errorf("postgres_follow_repo_create_edge_failed: %w", err)
	}

	return nil
}

/*
DeleteEdge removes the directed edge.

Parameters:
  - context: context.Context
  - followerID: string
  - followeeID: string

Returns:
  - bool: Whether an edge was actually removed
  - error: Persistence failures
*/
func (repository *PostgresRepository) DeleteEdge(context context.Context, followerID, followeeID string) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 AND %s = $2`,
		schema.UserFollowing.Table, schema.UserFollowing.FollowerID, schema.UserFollowing.FolloweeID,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("postgres_follow_repo_delete_edge_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
AdjustCounters shifts both sides of the relationship by delta.

Description: Two targeted updates inside the caller's transaction. If either
counter row is missing the provisioning invariant is broken and the whole
transaction must abort with ErrFollowingSetMissing.

Parameters:
  - context: context.Context
  - followerID: string
  - followeeID: string
  - delta: int

Returns:
  - error: ErrFollowingSetMissing or persistence failures
*/
func (repository *PostgresRepository) AdjustCounters(context context.Context, followerID, followeeID string, delta int) error {
	followingQuery := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = $3
		WHERE %s = $1`,
		schema.UserFollowStat.Table,
		schema.UserFollowStat.FollowingCount, schema.UserFollowStat.FollowingCount,
		schema.UserFollowStat.UpdatedAt, schema.UserFollowStat.UserID,
	)

	followerQuery := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = $3
		WHERE %s = $1`,
		schema.UserFollowStat.Table,
		schema.UserFollowStat.FollowerCount, schema.UserFollowStat.FollowerCount,
		schema.UserFollowStat.UpdatedAt, schema.UserFollowStat.UserID,
	)

	now := time.Now()
	querier := txn.Q(context, repository.pool)

	tag, err := querier.Exec(context, followingQuery, followerID, delta, now)
	if err != nil {
		return fmt.Errorf("postgres_follow_repo_adjust_following_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFollowingSetMissing
	}

	tag, err = querier.Exec(context, followerQuery, followeeID, delta, now)
	if err != nil {
		return fmt.Errorf("postgres_follow_repo_adjust_follower_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFollowingSetMissing
	}

	return nil
}

/*
GetStat returns the counter row for one account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *FollowStat: Hydrated counters
  - error: ErrFollowingSetMissing or retrieval failures
*/
func (repository *PostgresRepository) GetStat(context context.Context, userID string) (*FollowStat, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.UserFollowStat.UserID, schema.UserFollowStat.FollowerCount,
		schema.UserFollowStat.FollowingCount, schema.UserFollowStat.UpdatedAt,
		schema.UserFollowStat.Table, schema.UserFollowStat.UserID,
	)

	stat := &FollowStat{}
	err := txn.Q(context, repository.pool).QueryRow(context, query, userID).Scan(
		&stat.UserID,
		&stat.FollowerCount,
		&stat.FollowingCount,
		&stat.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFollowingSetMissing
		}
		return nil, fmt.Errorf("postgres_follow_repo_get_stat_failed: %w", err)
	}

	return stat, nil
}

/*
ListFollowing returns the accounts the user follows, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []FollowedUser: One page of followed accounts
  - int64: Total edge count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListFollowing(context context.Context, userID string, params pagination.Params) ([]FollowedUser, int64, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.UserFollowing.Table, schema.UserFollowing.FollowerID,
	)

	listQuery := fmt.Sprintf(`
		SELECT a.%s, a.%s, a.%s, COALESCE(a.%s, ''), f.%s
		FROM %s f
		JOIN %s a ON a.%s = f.%s
		WHERE f.%s = $1 AND a.%s IS NULL
		ORDER BY f.%s DESC
		LIMIT $2 OFFSET $3`,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.DisplayName,
		schema.UserAccount.AvatarURL, schema.UserFollowing.CreatedAt,
		schema.UserFollowing.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.UserFollowing.FolloweeID,
		schema.UserFollowing.FollowerID, schema.UserAccount.DeletedAt,
		schema.UserFollowing.CreatedAt,
	)

	querier := txn.Q(context, repository.pool)

	var total int64
	if err := querier.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_follow_repo_count_failed: %w", err)
	}

	rows, err := querier.Query(context, listQuery, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_follow_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]FollowedUser, 0, params.Limit)
	for rows.Next() {
		var user FollowedUser
		if err := rows.Scan(&user.ID, &user.Username, &user.DisplayName, &user.AvatarURL, &user.FollowedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres_follow_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_follow_repo_rows_failed: %w", err)
	}

	return users, total, nil
}
