// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates the category catalogue.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new category [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
	}
}

/*
CreateCategory registers a new catalogue entry with a zero comic counter.

Parameters:
  - context: context.Context
  - name: string
  - slug: string

Returns:
  - *Category: The created entry
  - error: Validation errors, ErrCategoryExists or persistence failures
*/
func (service *Service) CreateCategory(context context.Context, name, slug string) (*Category, error) {

	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, 100)
	validator.Required(FieldSlug, slug).Slug(FieldSlug, slug).MaxLen(FieldSlug, slug, 100)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	category := &Category{
		ID:   uuidv7.New(),
		Name: name,
		Slug: slug,
	}

	if err := service.repository.Create(context, category); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("category_service_create_failed: %w", err)
	}

	service.logger.Info("category_created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// GetCategory fetches a single catalogue entry by UUID.
func (service *Service) GetCategory(context context.Context, id string) (*Category, error) {
	return service.repository.FindByID(context, id)
}

// ListCategories returns the full catalogue, ordered by name.
func (service *Service) ListCategories(context context.Context) ([]*Category, error) {
	return service.repository.List(context)
}
