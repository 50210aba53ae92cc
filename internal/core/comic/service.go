// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package comic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huyndq/comicbox/internal/core/category"
	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/pagination"
	"github.com/huyndq/comicbox/pkg/slice"
	"github.com/huyndq/comicbox/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates the business logic for the comic catalogue.
type Service struct {
	comicRepository    Repository
	categoryRepository category.Repository
	coordinator        *txn.Coordinator
	logger             *slog.Logger
}

// NewService constructs a new comic [Service] with its dependencies.
func NewService(comicRepository Repository, categoryRepository category.Repository, coordinator *txn.Coordinator, logger *slog.Logger) *Service {
	return &Service{
		comicRepository:    comicRepository,
		categoryRepository: categoryRepository,
		coordinator:        coordinator,
		logger:             logger,
	}
}

// CreateInput carries the attributes of a new publication.
type CreateInput struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	ProjectID   *string  `json:"project_id"`
	CoverID     *string  `json:"cover_id"`
	CategoryIDs []string `json:"category_ids"`
}

// UpdateInput carries the mutable attributes of a publication. Nil fields are
// left unchanged.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *Status `json:"status"`
	CoverID     *string `json:"cover_id"`
}

/*
CreateComic initialises a new publication record.

Description: One transaction provisions the comic row, its zeroed statistics
row and one junction row per category, and moves each linked category's comic
counter by exactly one. Any failure, including an unknown category, rolls the
whole set back: no committed state ever has a comic without statistics or a
counter that disagrees with the junction rows.

Parameters:
  - ctx: context.Context
  - authorID: string
  - input: CreateInput

Returns:
  - *Comic: The created publication
  - error: Validation errors, ErrSlugTaken, category.ErrCategoryNotFound or
    persistence failures
*/
func (service *Service) CreateComic(ctx context.Context, authorID string, input CreateInput) (*Comic, error) {

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 500)
	validator.Required(FieldSlug, input.Slug).Slug(FieldSlug, input.Slug).MaxLen(FieldSlug, input.Slug, 200)
	validator.MaxLen(FieldDescription, input.Description, 5000)

	// Lifecycle state validation; new publications default to DRAFT.
	if input.Status == "" {
		input.Status = StatusDraft
	}
	validator.OneOf(FieldStatus, string(input.Status),
		string(StatusDraft),
		string(StatusOngoing),
		string(StatusDropped),
		string(StatusFinished),
		string(StatusUnknown),
	)

	for index, categoryID := range input.CategoryIDs {
		validator.UUID(FieldCategoryIDs, categoryID)
		// A repeated category would double-count the junction insert.
		validator.Custom(FieldCategoryIDs,
			slice.Contains(input.CategoryIDs[:index], categoryID),
			"Must not contain duplicate categories")
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	comic := &Comic{
		ID:          uuidv7.New(),
		AuthorID:    authorID,
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		Status:      input.Status,
		CoverID:     input.CoverID,
		CategoryIDs: input.CategoryIDs,
	}

	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		if err := service.comicRepository.Insert(txContext, comic); err != nil {
			return err
		}

		if err := service.comicRepository.InitStat(txContext, comic.ID); err != nil {
			return err
		}

		// One junction row and one counter move per category.
		for _, categoryID := range input.CategoryIDs {
			if err := service.comicRepository.LinkCategory(txContext, comic.ID, categoryID); err != nil {
				return err
			}
			if err := service.categoryRepository.AdjustComicCount(txContext, categoryID, +1); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("comic_service_create_failed: %w", err)
	}

	service.logger.Info("comic_created",
		slog.String("comic_id", comic.ID),
		slog.String("author_id", authorID),
		slog.Int("categories", len(input.CategoryIDs)),
	)

	comic.Stat = &ComicStat{}

	return comic, nil
}

// GetComic fetches a single publication record by UUID.
func (service *Service) GetComic(ctx context.Context, id string) (*Comic, error) {
	return service.comicRepository.FindByID(ctx, id)
}

// ListComics returns one page of the live catalogue, newest first.
func (service *Service) ListComics(ctx context.Context, params pagination.Params) ([]*Comic, pagination.Meta, error) {
	comics, total, err := service.comicRepository.List(ctx, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("comic_service_list_failed: %w", err)
	}

	return comics, pagination.NewMeta(params.Page, params.Limit, int(total)), nil
}

/*
UpdateComicDetails rewrites the mutable attributes of a publication.

Description: Only the author can mutate their comic. Category links are
immutable after creation; moving a comic between categories is a delete and
re-create at this surface.

Parameters:
  - ctx: context.Context
  - callerID: string
  - comicID: string
  - input: UpdateInput

Returns:
  - *Comic: The updated publication
  - error: ErrComicNotFound, ErrNotComicAuthor, validation errors or
    persistence failures
*/
func (service *Service) UpdateComicDetails(ctx context.Context, callerID, comicID string, input UpdateInput) (*Comic, error) {
	var updated *Comic

	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		comic, err := service.comicRepository.FindByID(txContext, comicID)
		if err != nil {
			return err
		}

		if comic.AuthorID != callerID {
			return ErrNotComicAuthor
		}

		validator := &validate.Validator{}
		if input.Title != nil {
			validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, 500)
			comic.Title = *input.Title
		}
		if input.Description != nil {
			validator.MaxLen(FieldDescription, *input.Description, 5000)
			comic.Description = *input.Description
		}
		if input.Status != nil {
			validator.OneOf(FieldStatus, string(*input.Status),
				string(StatusDraft),
				string(StatusOngoing),
				string(StatusDropped),
				string(StatusFinished),
				string(StatusUnknown),
			)
			comic.Status = *input.Status
		}
		if input.CoverID != nil {
			comic.CoverID = input.CoverID
		}
		if err := validator.Err(); err != nil {
			return err
		}

		if err := service.comicRepository.Update(txContext, comic); err != nil {
			return err
		}

		updated = comic
		return nil
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("comic_service_update_failed: %w", err)
	}

	return updated, nil
}

/*
DeleteComic soft-deletes a publication.

Description: The row is marked, not removed, so chapters and subscriptions
stay resolvable. Each linked category's comic counter is decremented in the
same transaction, keeping the catalogue counts aligned with the live set.

Parameters:
  - ctx: context.Context
  - callerID: string
  - comicID: string

Returns:
  - error: ErrComicNotFound, ErrNotComicAuthor or persistence failures
*/
func (service *Service) DeleteComic(ctx context.Context, callerID, comicID string) error {
	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		comic, err := service.comicRepository.FindByID(txContext, comicID)
		if err != nil {
			return err
		}

		if comic.AuthorID != callerID {
			return ErrNotComicAuthor
		}

		marked, err := service.comicRepository.SoftDelete(txContext, comicID)
		if err != nil {
			return err
		}
		if !marked {
			return ErrComicNotFound
		}

		categoryIDs, err := service.comicRepository.ListCategoryIDs(txContext, comicID)
		if err != nil {
			return err
		}

		for _, categoryID := range categoryIDs {
			if err := service.categoryRepository.AdjustComicCount(txContext, categoryID, -1); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("comic_service_delete_failed: %w", err)
	}

	service.logger.Info("comic_deleted",
		slog.String("comic_id", comicID),
		slog.String("author_id", callerID),
	)

	return nil
}
