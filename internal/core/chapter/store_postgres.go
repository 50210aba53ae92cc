// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package chapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huyndq/comicbox/internal/core/comic"
	"github.com/huyndq/comicbox/internal/platform/database/schema"
	"github.com/huyndq/comicbox/internal/platform/dberr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the chapter Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ComicAuthor returns the author of a live comic.
func (repository *PostgresRepository) ComicAuthor(context context.Context, comicID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreComic.AuthorID, schema.CoreComic.Table,
		schema.CoreComic.ID, schema.CoreComic.DeletedAt,
	)

	var authorID string
	err := txn.Q(context, repository.pool).QueryRow(context, query, comicID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", comic.ErrComicNotFound
		}
		return "", fmt.Errorf("postgres_chapter_repo_comic_author_failed: %w", err)
	}

	return authorID, nil
}

/*
Insert adds the chapter row.

Description: The unique index on (comicid, number) rejects duplicate numbers
within one list; a losing concurrent writer receives ErrChapterNumberTaken.
*/
func (repository *PostgresRepository) Insert(context context.Context, chapter *Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $6)`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.ComicID, schema.CoreChapter.Number,
		schema.CoreChapter.Title, schema.CoreChapter.PublishedAt,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
	)

	now := time.Now()

	_, err := txn.Q(context, repository.pool).Exec(context, query,
		chapter.ID, chapter.ComicID, chapter.Number,
		chapter.Title, chapter.PublishedAt, now,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrChapterNumberTaken
		}
		return fmt.Errorf("postgres_chapter_repo_insert_failed: %w", err)
	}

	chapter.CreatedAt = now
	chapter.UpdatedAt = now

	return nil
}

// FindByID returns one live chapter by UUID.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, COALESCE(%s, ''), %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreChapter.ID, schema.CoreChapter.ComicID, schema.CoreChapter.Number,
		schema.CoreChapter.Title, schema.CoreChapter.PublishedAt,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.Table, schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
	)

	chapter := &Chapter{}
	err := txn.Q(context, repository.pool).QueryRow(context, query, id).Scan(
		&chapter.ID,
		&chapter.ComicID,
		&chapter.Number,
		&chapter.Title,
		&chapter.PublishedAt,
		&chapter.CreatedAt,
		&chapter.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("postgres_chapter_repo_find_failed: %w", err)
	}

	return chapter, nil
}

// SoftDelete marks the chapter row as deleted.
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $2
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreChapter.Table,
		schema.CoreChapter.DeletedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_chapter_repo_soft_delete_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
AdjustChapterCount shifts the comic's chapter counter by delta.

Description: Runs inside the calling mutation's transaction. A missing
statistics row is a broken provisioning invariant and aborts the mutation.
*/
func (repository *PostgresRepository) AdjustChapterCount(context context.Context, comicID string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = $3
		WHERE %s = $1`,
		schema.CoreComicStat.Table,
		schema.CoreComicStat.ChapterCount, schema.CoreComicStat.ChapterCount,
		schema.CoreComicStat.UpdatedAt, schema.CoreComicStat.ComicID,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, comicID, delta, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_chapter_repo_adjust_count_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return comic.ErrStatMissing
	}

	return nil
}

// ListByComic returns the comic's chapter list ordered by number.
func (repository *PostgresRepository) ListByComic(context context.Context, comicID string, params pagination.Params) ([]Chapter, int64, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreChapter.Table, schema.CoreChapter.ComicID, schema.CoreChapter.DeletedAt,
	)

	listQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, COALESCE(%s, ''), %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s ASC
		LIMIT $2 OFFSET $3`,
		schema.CoreChapter.ID, schema.CoreChapter.ComicID, schema.CoreChapter.Number,
		schema.CoreChapter.Title, schema.CoreChapter.PublishedAt,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.Table,
		schema.CoreChapter.ComicID, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.Number,
	)

	querier := txn.Q(context, repository.pool)

	var total int64
	if err := querier.QueryRow(context, countQuery, comicID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_chapter_repo_count_failed: %w", err)
	}

	rows, err := querier.Query(context, listQuery, comicID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_chapter_repo_list_failed: %w", err)
	}
	defer rows.Close()

	chapters := make([]Chapter, 0, params.Limit)
	for rows.Next() {
		var chapter Chapter
		err := rows.Scan(
			&chapter.ID,
			&chapter.ComicID,
			&chapter.Number,
			&chapter.Title,
			&chapter.PublishedAt,
			&chapter.CreatedAt,
			&chapter.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_chapter_repo_scan_failed: %w", err)
		}
		chapters = append(chapters, chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_chapter_repo_rows_failed: %w", err)
	}

	return chapters, total, nil
}
