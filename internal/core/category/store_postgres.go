// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package category

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
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the category Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create inserts the category with a zero comic counter.

Description: The unique indexes on name and slug reject duplicates; a losing
concurrent writer receives ErrCategoryExists.

Parameters:
  - context: context.Context
  - category: *Category

Returns:
  - error: ErrCategoryExists or persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, 0, $4, $4)`,
		schema.CoreCategory.Table,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.Slug,
		schema.CoreCategory.ComicCount, schema.CoreCategory.CreatedAt, schema.CoreCategory.UpdatedAt,
	)

	now := time.Now()

	_, err := txn.Q(context, repository.pool).Exec(context, query,
		category.ID, category.Name, category.Slug, now,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrCategoryExists
		}
		return fmt.Errorf("postgres_category_repo_create_failed: %w", err)
	}

	category.CreatedAt = now
	category.UpdatedAt = now

	return nil
}

// FindByID returns one category by UUID.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Category, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.Slug,
		schema.CoreCategory.ComicCount, schema.CoreCategory.CreatedAt, schema.CoreCategory.UpdatedAt,
		schema.CoreCategory.Table, schema.CoreCategory.ID,
	)

	category := &Category{}
	err := txn.Q(context, repository.pool).QueryRow(context, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.ComicCount,
		&category.CreatedAt,
		&category.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("postgres_category_repo_find_failed: %w", err)
	}

	return category, nil
}

// List returns the full catalogue ordered by name.
func (repository *PostgresRepository) List(context context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s ASC`,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.Slug,
		schema.CoreCategory.ComicCount, schema.CoreCategory.CreatedAt, schema.CoreCategory.UpdatedAt,
		schema.CoreCategory.Table, schema.CoreCategory.Name,
	)

	rows, err := txn.Q(context, repository.pool).Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_category_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		category := &Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Slug,
			&category.ComicCount,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_category_repo_scan_failed: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_category_repo_rows_failed: %w", err)
	}

	return categories, nil
}

/*
AdjustComicCount shifts the category's comic counter by delta.

Description: Runs inside the calling comic mutation's transaction. An unknown
category surfaces as ErrCategoryNotFound and aborts the whole mutation.

Parameters:
  - context: context.Context
  - categoryID: string
  - delta: int

Returns:
  - error: ErrCategoryNotFound or persistence failures
*/
func (repository *PostgresRepository) AdjustComicCount(context context.Context, categoryID string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = $3
		WHERE %s = $1`,
		schema.CoreCategory.Table,
		schema.CoreCategory.ComicCount, schema.CoreCategory.ComicCount,
		schema.CoreCategory.UpdatedAt, schema.CoreCategory.ID,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, categoryID, delta, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_category_repo_adjust_count_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
