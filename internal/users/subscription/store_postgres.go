// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huyndq/comicbox/internal/platform/database/schema"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the subscription Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
ComicExists reports whether the comic exists and is not deleted.

Parameters:
  - context: context.Context
  - comicID: string

Returns:
  - bool: Presence flag
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ComicExists(context context.Context, comicID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL
		)`,
		schema.CoreComic.Table, schema.CoreComic.ID, schema.CoreComic.DeletedAt,
	)

	var exists bool
	err := txn.Q(context, repository.pool).QueryRow(context, query, comicID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres_subscription_repo_comic_exists_failed: %w", err)
	}

	return exists, nil
}

/*
Insert adds the subscription row if it is not already present.

Description: ON CONFLICT DO NOTHING makes concurrent duplicate subscribes
race-free; the reported row count tells the service whether the counter
should move.

Parameters:
  - context: context.Context
  - userID: string
  - comicID: string

Returns:
  - bool: Whether a new row was actually inserted
  - error: Persistence failures
*/
func (repository *PostgresRepository) Insert(context context.Context, userID, comicID string) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING`,
		schema.UserSubscription.Table,
		schema.UserSubscription.UserID, schema.UserSubscription.ComicID, schema.UserSubscription.CreatedAt,
		schema.UserSubscription.UserID, schema.UserSubscription.ComicID,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, userID, comicID, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_subscription_repo_insert_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
Delete removes the subscription row if present.

Parameters:
  - context: context.Context
  - userID: string
  - comicID: string

Returns:
  - bool: Whether a row was actually removed
  - error: Persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, userID, comicID string) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 AND %s = $2`,
		schema.UserSubscription.Table, schema.UserSubscription.UserID, schema.UserSubscription.ComicID,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, userID, comicID)
	if err != nil {
		return false, fmt.Errorf("postgres_subscription_repo_delete_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
AdjustSubscriberCount shifts the comic's subscriber counter by delta.

Parameters:
  - context: context.Context
  - comicID: string
  - delta: int

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) AdjustSubscriberCount(context context.Context, comicID string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = $3
		WHERE %s = $1`,
		schema.CoreComicStat.Table,
		schema.CoreComicStat.SubscriberCount, schema.CoreComicStat.SubscriberCount,
		schema.CoreComicStat.UpdatedAt, schema.CoreComicStat.ComicID,
	)

	_, err := txn.Q(context, repository.pool).Exec(context, query, comicID, delta, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_subscription_repo_adjust_count_failed: %w", err)
	}

	return nil
}

/*
ListByUser returns the comics the user subscribes to, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []SubscribedComic: One page of subscriptions
  - int64: Total subscription count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByUser(context context.Context, userID string, params pagination.Params) ([]SubscribedComic, int64, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.UserSubscription.Table, schema.UserSubscription.UserID,
	)

	listQuery := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, s.%s
		FROM %s s
		JOIN %s c ON c.%s = s.%s
		WHERE s.%s = $1 AND c.%s IS NULL
		ORDER BY s.%s DESC
		LIMIT $2 OFFSET $3`,
		schema.CoreComic.ID, schema.CoreComic.Title, schema.CoreComic.Slug,
		schema.UserSubscription.CreatedAt,
		schema.UserSubscription.Table,
		schema.CoreComic.Table, schema.CoreComic.ID, schema.UserSubscription.ComicID,
		schema.UserSubscription.UserID, schema.CoreComic.DeletedAt,
		schema.UserSubscription.CreatedAt,
	)

	querier := txn.Q(context, repository.pool)

	var total int64
	if err := querier.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_subscription_repo_count_failed: %w", err)
	}

	rows, err := querier.Query(context, listQuery, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_subscription_repo_list_failed: %w", err)
	}
	defer rows.Close()

	comics := make([]SubscribedComic, 0, params.Limit)
	for rows.Next() {
		var comic SubscribedComic
		if err := rows.Scan(&comic.ComicID, &comic.Title, &comic.Slug, &comic.SubscribedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres_subscription_repo_scan_failed: %w", err)
		}
		comics = append(comics, comic)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_subscription_repo_rows_failed: %w", err)
	}

	return comics, total, nil
}
