// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package comic

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

// NewRepository creates a new PostgreSQL implementation of the comic Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// comicSelect joins the comic row with its statistics. The stat join is inner
// on purpose: a live comic without a statistics row is a broken invariant and
// must surface, not be papered over.
var comicSelect = fmt.Sprintf(`
	SELECT c.%s, c.%s, c.%s, c.%s, c.%s,
	       COALESCE(c.%s, ''), c.%s, c.%s,
	       c.%s, c.%s,
	       s.%s, s.%s, s.%s
	FROM %s c
	LEFT JOIN %s s ON s.%s = c.%s`,
	schema.CoreComic.ID, schema.CoreComic.AuthorID, schema.CoreComic.ProjectID,
	schema.CoreComic.Title, schema.CoreComic.Slug,
	schema.CoreComic.Description, schema.CoreComic.Status, schema.CoreComic.CoverID,
	schema.CoreComic.CreatedAt, schema.CoreComic.UpdatedAt,
	schema.CoreComicStat.SubscriberCount, schema.CoreComicStat.ViewCount, schema.CoreComicStat.ChapterCount,
	schema.CoreComic.Table,
	schema.CoreComicStat.Table, schema.CoreComicStat.ComicID, schema.CoreComic.ID,
)

// scanComic hydrates one comic (with statistics) from a row.
func scanComic(row pgx.Row) (*Comic, error) {
	comic := &Comic{}
	stat := &ComicStat{}

	var subscriberCount, viewCount, chapterCount *int64

	err := row.Scan(
		&comic.ID,
		&comic.AuthorID,
		&comic.ProjectID,
		&comic.Title,
		&comic.Slug,
		&comic.Description,
		&comic.Status,
		&comic.CoverID,
		&comic.CreatedAt,
		&comic.UpdatedAt,
		&subscriberCount,
		&viewCount,
		&chapterCount,
	)
	if err != nil {
		return nil, err
	}

	// NULL stat columns mean the statistics row is missing entirely.
	if subscriberCount == nil || viewCount == nil || chapterCount == nil {
		return nil, ErrStatMissing
	}

	stat.SubscriberCount = *subscriberCount
	stat.ViewCount = *viewCount
	stat.ChapterCount = *chapterCount
	comic.Stat = stat

	return comic, nil
}

/*
Insert adds the comic row.

Description: The unique index on slug rejects duplicates; a losing concurrent
writer receives ErrSlugTaken.
*/
func (repository *PostgresRepository) Insert(context context.Context, comic *Comic) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
			(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $9)`,
		schema.CoreComic.Table,
		schema.CoreComic.ID, schema.CoreComic.AuthorID, schema.CoreComic.ProjectID,
		schema.CoreComic.Title, schema.CoreComic.Slug, schema.CoreComic.Description,
		schema.CoreComic.Status, schema.CoreComic.CoverID,
		schema.CoreComic.CreatedAt, schema.CoreComic.UpdatedAt,
	)

	now := time.Now()

	_, err := txn.Q(context, repository.pool).Exec(context, query,
		comic.ID, comic.AuthorID, comic.ProjectID,
		comic.Title, comic.Slug, comic.Description,
		comic.Status, comic.CoverID, now,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("postgres_comic_repo_insert_failed: %w", err)
	}

	comic.CreatedAt = now
	comic.UpdatedAt = now

	return nil
}

// InitStat provisions the comic's zeroed statistics row.
func (repository *PostgresRepository) InitStat(context context.Context, comicID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, 0, 0, 0, $2)`,
		schema.CoreComicStat.Table, schema.CoreComicStat.ComicID,
		schema.CoreComicStat.SubscriberCount, schema.CoreComicStat.ViewCount,
		schema.CoreComicStat.ChapterCount, schema.CoreComicStat.UpdatedAt,
	)

	_, err := txn.Q(context, repository.pool).Exec(context, query, comicID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_comic_repo_init_stat_failed: %w", err)
	}

	return nil
}

// LinkCategory adds one row to the comic/category junction.
func (repository *PostgresRepository) LinkCategory(context context.Context, comicID, categoryID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)`,
		schema.CoreComicCategory.Table,
		schema.CoreComicCategory.ComicID, schema.CoreComicCategory.CategoryID,
		schema.CoreComicCategory.CreatedAt,
	)

	_, err := txn.Q(context, repository.pool).Exec(context, query, comicID, categoryID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_comic_repo_link_category_failed: %w", err)
	}

	return nil
}

// FindByID returns one live comic with its statistics and category links.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comic, error) {
	query := comicSelect + fmt.Sprintf(`
	WHERE c.%s = $1 AND c.%s IS NULL`,
		schema.CoreComic.ID, schema.CoreComic.DeletedAt)

	querier := txn.Q(context, repository.pool)

	comic, err := scanComic(querier.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrComicNotFound
		}
		if errors.Is(err, ErrStatMissing) {
			return nil, ErrStatMissing
		}
		return nil, fmt.Errorf("postgres_comic_repo_find_failed: %w", err)
	}

	categoryIDs, err := repository.ListCategoryIDs(context, id)
	if err != nil {
		return nil, err
	}
	comic.CategoryIDs = categoryIDs

	return comic, nil
}

// ListCategoryIDs returns the category links of one comic.
func (repository *PostgresRepository) ListCategoryIDs(context context.Context, comicID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		schema.CoreComicCategory.CategoryID, schema.CoreComicCategory.Table,
		schema.CoreComicCategory.ComicID,
	)

	rows, err := txn.Q(context, repository.pool).Query(context, query, comicID)
	if err != nil {
		return nil, fmt.Errorf("postgres_comic_repo_list_categories_failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres_comic_repo_scan_category_failed: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_comic_repo_category_rows_failed: %w", err)
	}

	return ids, nil
}

// Update rewrites the mutable attributes of the comic row.
func (repository *PostgresRepository) Update(context context.Context, comic *Comic) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NULLIF($3, ''), %s = $4, %s = $5, %s = $6
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreComic.Table,
		schema.CoreComic.Title, schema.CoreComic.Description, schema.CoreComic.Status,
		schema.CoreComic.CoverID, schema.CoreComic.UpdatedAt,
		schema.CoreComic.ID, schema.CoreComic.DeletedAt,
	)

	now := time.Now()

	tag, err := txn.Q(context, repository.pool).Exec(context, query,
		comic.ID, comic.Title, comic.Description, comic.Status, comic.CoverID, now,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("postgres_comic_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrComicNotFound
	}

	comic.UpdatedAt = now

	return nil
}

// SoftDelete marks the comic row as deleted.
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $2
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreComic.Table,
		schema.CoreComic.DeletedAt, schema.CoreComic.UpdatedAt,
		schema.CoreComic.ID, schema.CoreComic.DeletedAt,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_comic_repo_soft_delete_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// List returns one page of live comics, newest first.
func (repository *PostgresRepository) List(context context.Context, params pagination.Params) ([]*Comic, int64, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE %s IS NULL`,
		schema.CoreComic.Table, schema.CoreComic.DeletedAt,
	)

	listQuery := comicSelect + fmt.Sprintf(`
	WHERE c.%s IS NULL
	ORDER BY c.%s DESC
	LIMIT $1 OFFSET $2`,
		schema.CoreComic.DeletedAt, schema.CoreComic.CreatedAt)

	querier := txn.Q(context, repository.pool)

	var total int64
	if err := querier.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_comic_repo_count_failed: %w", err)
	}

	rows, err := querier.Query(context, listQuery, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_comic_repo_list_failed: %w", err)
	}
	defer rows.Close()

	comics := make([]*Comic, 0, params.Limit)
	for rows.Next() {
		comic, err := scanComic(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_comic_repo_scan_failed: %w", err)
		}
		comics = append(comics, comic)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_comic_repo_rows_failed: %w", err)
	}

	return comics, total, nil
}
