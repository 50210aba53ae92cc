// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package chapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huyndq/comicbox/internal/core/comic"
	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/internal/platform/validate"
	"github.com/huyndq/comicbox/pkg/pagination"
	"github.com/huyndq/comicbox/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates the chapter list of each comic.
type Service struct {
	repository  Repository
	coordinator *txn.Coordinator
	logger      *slog.Logger
}

// NewService constructs a new chapter [Service] with its dependencies.
func NewService(repository Repository, coordinator *txn.Coordinator, logger *slog.Logger) *Service {
	return &Service{
		repository:  repository,
		coordinator: coordinator,
		logger:      logger,
	}
}

// RegisterInput carries the attributes of a new chapter.
type RegisterInput struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	PublishedAt *time.Time `json:"published_at"`
}

/*
RegisterChapter appends a chapter to the comic's list.

Description: Only the comic's author can publish chapters. The chapter row
and the comic's chapter counter move in one transaction; the unique index on
(comicid, number) resolves concurrent registration of the same number, so the
loser gets ErrChapterNumberTaken and no counter drift.

Parameters:
  - ctx: context.Context
  - callerID: string
  - comicID: string
  - input: RegisterInput

Returns:
  - *Chapter: The registered chapter
  - error: Validation errors, comic.ErrComicNotFound, comic.ErrNotComicAuthor,
    ErrChapterNumberTaken or persistence failures
*/
func (service *Service) RegisterChapter(ctx context.Context, callerID, comicID string, input RegisterInput) (*Chapter, error) {

	validator := &validate.Validator{}
	validator.Range(FieldNumber, input.Number, 1, 100000)
	validator.MaxLen(FieldTitle, input.Title, 500)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapter := &Chapter{
		ID:          uuidv7.New(),
		ComicID:     comicID,
		Number:      input.Number,
		Title:       input.Title,
		PublishedAt: input.PublishedAt,
	}

	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		author, err := service.repository.ComicAuthor(txContext, comicID)
		if err != nil {
			return err
		}
		if author != callerID {
			return comic.ErrNotComicAuthor
		}

		if err := service.repository.Insert(txContext, chapter); err != nil {
			return err
		}

		return service.repository.AdjustChapterCount(txContext, comicID, +1)
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("chapter_service_register_failed: %w", err)
	}

	service.logger.Info("chapter_registered",
		slog.String("comic_id", comicID),
		slog.Int("number", chapter.Number),
	)

	return chapter, nil
}

// GetChapter fetches a single chapter by UUID.
func (service *Service) GetChapter(ctx context.Context, id string) (*Chapter, error) {
	return service.repository.FindByID(ctx, id)
}

// ListChapters returns one page of the comic's chapter list, ordered by number.
func (service *Service) ListChapters(ctx context.Context, comicID string, params pagination.Params) ([]Chapter, pagination.Meta, error) {
	chapters, total, err := service.repository.ListByComic(ctx, comicID, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("chapter_service_list_failed: %w", err)
	}

	return chapters, pagination.NewMeta(params.Page, params.Limit, int(total)), nil
}

/*
DeleteChapter removes a chapter from the list.

Description: Soft delete plus counter decrement in one transaction. Author
only.

Parameters:
  - ctx: context.Context
  - callerID: string
  - chapterID: string

Returns:
  - error: ErrChapterNotFound, comic.ErrNotComicAuthor or persistence failures
*/
func (service *Service) DeleteChapter(ctx context.Context, callerID, chapterID string) error {
	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		chapter, err := service.repository.FindByID(txContext, chapterID)
		if err != nil {
			return err
		}

		author, err := service.repository.ComicAuthor(txContext, chapter.ComicID)
		if err != nil {
			return err
		}
		if author != callerID {
			return comic.ErrNotComicAuthor
		}

		removed, err := service.repository.SoftDelete(txContext, chapterID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrChapterNotFound
		}

		return service.repository.AdjustChapterCount(txContext, chapter.ComicID, -1)
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("chapter_service_delete_failed: %w", err)
	}

	return nil
}
