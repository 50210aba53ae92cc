// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huyndq/comicbox/internal/platform/database/schema"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the project Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert adds the project row.
func (repository *PostgresRepository) Insert(context context.Context, project *Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $6)`,
		schema.UserProject.Table,
		schema.UserProject.ID, schema.UserProject.OwnerID, schema.UserProject.Name,
		schema.UserProject.Description, schema.UserProject.CoverID,
		schema.UserProject.CreatedAt, schema.UserProject.UpdatedAt,
	)

	now := time.Now()

	_, err := txn.Q(context, repository.pool).Exec(context, query,
		project.ID, project.OwnerID, project.Name, project.Description, project.CoverID, now,
	)
	if err != nil {
		return fmt.Errorf("postgres_project_repo_insert_failed: %w", err)
	}

	project.CreatedAt = now
	project.UpdatedAt = now

	return nil
}

// FindByID returns one live project by UUID.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Project, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, COALESCE(%s, ''), %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserProject.ID, schema.UserProject.OwnerID, schema.UserProject.Name,
		schema.UserProject.Description, schema.UserProject.CoverID,
		schema.UserProject.CreatedAt, schema.UserProject.UpdatedAt,
		schema.UserProject.Table, schema.UserProject.ID, schema.UserProject.DeletedAt,
	)

	project := &Project{}
	err := txn.Q(context, repository.pool).QueryRow(context, query, id).Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.Description,
		&project.CoverID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("postgres_project_repo_find_failed: %w", err)
	}

	return project, nil
}

// Update rewrites the mutable attributes of the project row.
func (repository *PostgresRepository) Update(context context.Context, project *Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NULLIF($3, ''), %s = $4, %s = $5
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserProject.Table,
		schema.UserProject.Name, schema.UserProject.Description, schema.UserProject.CoverID,
		schema.UserProject.UpdatedAt, schema.UserProject.ID, schema.UserProject.DeletedAt,
	)

	now := time.Now()

	tag, err := txn.Q(context, repository.pool).Exec(context, query,
		project.ID, project.Name, project.Description, project.CoverID, now,
	)
	if err != nil {
		return fmt.Errorf("postgres_project_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	project.UpdatedAt = now

	return nil
}

// SoftDelete marks the project row as deleted.
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $2
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserProject.Table,
		schema.UserProject.DeletedAt, schema.UserProject.UpdatedAt,
		schema.UserProject.ID, schema.UserProject.DeletedAt,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_project_repo_soft_delete_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByOwner returns the owner's live projects, newest first.
func (repository *PostgresRepository) ListByOwner(context context.Context, ownerID string, params pagination.Params) ([]Project, int64, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserProject.Table, schema.UserProject.OwnerID, schema.UserProject.DeletedAt,
	)

	listQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, COALESCE(%s, ''), %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3`,
		schema.UserProject.ID, schema.UserProject.OwnerID, schema.UserProject.Name,
		schema.UserProject.Description, schema.UserProject.CoverID,
		schema.UserProject.CreatedAt, schema.UserProject.UpdatedAt,
		schema.UserProject.Table,
		schema.UserProject.OwnerID, schema.UserProject.DeletedAt,
		schema.UserProject.CreatedAt,
	)

	querier := txn.Q(context, repository.pool)

	var total int64
	if err := querier.QueryRow(context, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_project_repo_count_failed: %w", err)
	}

	rows, err := querier.Query(context, listQuery, ownerID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_project_repo_list_failed: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0, params.Limit)
	for rows.Next() {
		var project Project
		err := rows.Scan(
			&project.ID,
			&project.OwnerID,
			&project.Name,
			&project.Description,
			&project.CoverID,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_project_repo_scan_failed: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_project_repo_rows_failed: %w", err)
	}

	return projects, total, nil
}
