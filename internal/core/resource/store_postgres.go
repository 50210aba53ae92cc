// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huyndq/comicbox/internal/platform/database/schema"
	"github.com/huyndq/comicbox/internal/platform/txn"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the resource Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert adds the resource metadata row.
func (repository *PostgresRepository) Insert(context context.Context, resource *Resource) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
			(%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		schema.CoreResource.Table,
		schema.CoreResource.ID, schema.CoreResource.OwnerID, schema.CoreResource.Kind,
		schema.CoreResource.ObjectKey, schema.CoreResource.ContentType, schema.CoreResource.SizeBytes,
		schema.CoreResource.Visibility, schema.CoreResource.CreatedAt, schema.CoreResource.UpdatedAt,
	)

	now := time.Now()

	_, err := txn.Q(context, repository.pool).Exec(context, query,
		resource.ID, resource.OwnerID, resource.Kind, resource.ObjectKey,
		resource.ContentType, resource.SizeBytes, resource.Visibility, now,
	)
	if err != nil {
		return fmt.Errorf("postgres_resource_repo_insert_failed: %w", err)
	}

	resource.CreatedAt = now
	resource.UpdatedAt = now

	return nil
}

// FindByID returns one live resource by UUID.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Resource, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreResource.ID, schema.CoreResource.OwnerID, schema.CoreResource.Kind,
		schema.CoreResource.ObjectKey, schema.CoreResource.ContentType, schema.CoreResource.SizeBytes,
		schema.CoreResource.Visibility, schema.CoreResource.CreatedAt, schema.CoreResource.UpdatedAt,
		schema.CoreResource.Table, schema.CoreResource.ID, schema.CoreResource.DeletedAt,
	)

	resource := &Resource{}
	err := txn.Q(context, repository.pool).QueryRow(context, query, id).Scan(
		&resource.ID,
		&resource.OwnerID,
		&resource.Kind,
		&resource.ObjectKey,
		&resource.ContentType,
		&resource.SizeBytes,
		&resource.Visibility,
		&resource.CreatedAt,
		&resource.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("postgres_resource_repo_find_failed: %w", err)
	}

	return resource, nil
}

// UpdatePayloadMeta rewrites the payload attributes after an overwrite.
func (repository *PostgresRepository) UpdatePayloadMeta(context context.Context, id, contentType string, sizeBytes int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreResource.Table,
		schema.CoreResource.ContentType, schema.CoreResource.SizeBytes, schema.CoreResource.UpdatedAt,
		schema.CoreResource.ID, schema.CoreResource.DeletedAt,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, id, contentType, sizeBytes, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_resource_repo_update_meta_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResourceNotFound
	}

	return nil
}

// SoftDelete marks the resource row as deleted.
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $2
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreResource.Table,
		schema.CoreResource.DeletedAt, schema.CoreResource.UpdatedAt,
		schema.CoreResource.ID, schema.CoreResource.DeletedAt,
	)

	tag, err := txn.Q(context, repository.pool).Exec(context, query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_resource_repo_soft_delete_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
