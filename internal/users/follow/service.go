// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package follow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// # Service Layer

// Service orchestrates follow graph mutations.
//
// Every mutation runs under the transaction coordinator so the edge and both
// counters move together or not at all.
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
Follow creates the directed edge followerID -> followeeID.

Description: Rejects self-follows and duplicate edges, verifies both accounts
exist, then inserts the edge and shifts both counters in one transaction.
A concurrent duplicate is caught by the composite primary key and surfaces
as ErrAlreadyFollowing.

Parameters:
  - ctx: context.Context
  - followerID: string
  - followeeID: string

Returns:
  - error: ErrSelfFollow, ErrAlreadyFollowing, NotFound, or storage failures
*/
func (service *Service) Follow(ctx context.Context, followerID, followeeID string) error {

	// Business: an account cannot follow itself.
	if followerID == followeeID {
		return ErrSelfFollow
	}

	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		// Both endpoints must be live accounts before the graph moves; a
		// soft-deleted follower keeps its followstat row, so the counter
		// update alone would not catch it.
		for _, accountID := range []string{followerID, followeeID} {
			exists, err := service.repository.AccountExists(txContext, accountID)
			if err != nil {
				return err
			}
			if !exists {
				return apperr.NotFound("User")
			}
		}

		// The composite primary key still guards the race window between
		// this check and the insert.
		following, err := service.repository.EdgeExists(txContext, followerID, followeeID)
		if err != nil {
			return err
		}
		if following {
			return ErrAlreadyFollowing
		}

		if err := service.repository.CreateEdge(txContext, followerID, followeeID); err != nil {
			return err
		}

		return service.repository.AdjustCounters(txContext, followerID, followeeID, +1)
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("follow_service_follow_failed: %w", err)
	}

	service.logger.Info("user_followed",
		slog.String("follower_id", followerID),
		slog.String("followee_id", followeeID),
	)

	return nil
}

/*
Unfollow removes the directed edge followerID -> followeeID.

Description: Verifies both accounts exist, then removes the edge. Deleting an
absent edge is a conflict, not a silent success, so the counters can never
drift below the true edge count.

Parameters:
  - ctx: context.Context
  - followerID: string
  - followeeID: string

Returns:
  - error: ErrNotFollowing, NotFound, or storage failures
*/
func (service *Service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	err := service.coordinator.RunInTx(ctx, func(txContext context.Context) error {

		for _, accountID := range []string{followerID, followeeID} {
			exists, err := service.repository.AccountExists(txContext, accountID)
			if err != nil {
				return err
			}
			if !exists {
				return apperr.NotFound("User")
			}
		}

		removed, err := service.repository.DeleteEdge(txContext, followerID, followeeID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotFollowing
		}

		return service.repository.AdjustCounters(txContext, followerID, followeeID, -1)
	})

	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("follow_service_unfollow_failed: %w", err)
	}

	service.logger.Info("user_unfollowed",
		slog.String("follower_id", followerID),
		slog.String("followee_id", followeeID),
	)

	return nil
}

/*
GetStat returns the follower/following counters for one account.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *FollowStat: Hydrated counters
  - error: ErrFollowingSetMissing or retrieval failures
*/
func (service *Service) GetStat(ctx context.Context, userID string) (*FollowStat, error) {
	stat, err := service.repository.GetStat(ctx, userID)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("follow_service_get_stat_failed: %w", err)
	}
	return stat, nil
}

/*
ListFollowing returns one page of the accounts the user follows.

Parameters:
  - ctx: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []FollowedUser: Ordered newest first
  - pagination.Meta: Paging metadata
  - error: Retrieval failures
*/
func (service *Service) ListFollowing(ctx context.Context, userID string, params pagination.Params) ([]FollowedUser, pagination.Meta, error) {
	users, total, err := service.repository.ListFollowing(ctx, userID, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("follow_service_list_following_failed: %w", err)
	}

	return users, pagination.NewMeta(params.Page, params.Limit, int(total)), nil
}
