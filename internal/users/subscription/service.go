// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// # Service Layer

// Service orchestrates subscription mutations.
type Service struct {
	repository  Repository
	coordinator *txn.Coordinator
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, coordinator *txn.Coordinator, logger *slog.Logger) *Service {
	return &Service{
		repository:  repository,
		coordinator: coordinator,
		logger:      logger,
	}
}

/*
Subscribe adds the user's subscription to a comic.

Description: Idempotent. Subscribing to a comic the user already follows is a
silent success, and the subscriber counter moves only when a row was actually
inserted, keeping counter and rows aligned under concurrent retries.

Parameters:
  - ctx: context.Context
  - userID: string
  - comicID: string

Returns:
  - error: NotFound (unknown comic) or storage failures
*/
func (service *Service) Subscribe(ctx context.Context, userID, comicID string) error {
	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		exists, err := service.repository.ComicExists(txContext, comicID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("Comic")
		}

		inserted, err := service.repository.Insert(txContext, userID, comicID)
		if err != nil {
			return err
		}

		// Already subscribed: nothing to count.
		if !inserted {
			return nil
		}

		return service.repository.AdjustSubscriberCount(txContext, comicID, +1)
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("subscription_service_subscribe_failed: %w", err)
	}

	service.logger.Info("comic_subscribed",
		slog.String("user_id", userID),
		slog.String("comic_id", comicID),
	)

	return nil
}

/*
Unsubscribe removes the user's subscription from a comic.

Description: Idempotent. Unsubscribing when no subscription exists is a
silent success and leaves the counter untouched.

Parameters:
  - ctx: context.Context
  - userID: string
  - comicID: string

Returns:
  - error: Storage failures
*/
func (service *Service) Unsubscribe(ctx context.Context, userID, comicID string) error {
	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		removed, err := service.repository.Delete(txContext, userID, comicID)
		if err != nil {
			return err
		}

		// Nothing was subscribed: nothing to count.
		if !removed {
			return nil
		}

		return service.repository.AdjustSubscriberCount(txContext, comicID, -1)
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("subscription_service_unsubscribe_failed: %w", err)
	}

	service.logger.Info("comic_unsubscribed",
		slog.String("user_id", userID),
		slog.String("comic_id", comicID),
	)

	return nil
}

/*
ListSubscriptions returns one page of the user's subscribed comics.

Parameters:
  - ctx: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []SubscribedComic: Ordered newest first
  - pagination.Meta: Paging metadata
  - error: Retrieval failures
*/
func (service *Service) ListSubscriptions(ctx context.Context, userID string, params pagination.Params) ([]SubscribedComic, pagination.Meta, error) {
	comics, total, err := service.repository.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("subscription_service_list_failed: %w", err)
	}

	return comics, pagination.NewMeta(params.Page, params.Limit, int(total)), nil
}
