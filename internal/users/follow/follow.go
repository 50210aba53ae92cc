// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package follow implements the directed follow graph between users.

A follow is a single directed edge (follower -> followee) plus two
denormalized counters: the follower's followingcount and the followee's
followercount. The edge and both counters are always mutated inside one
transaction, so the invariant "counter == number of edges" holds at every
commit point.

# Architecture

  - Entities: FollowStat (counters), FollowedUser (listing DTO).
  - Service: Orchestrates edge mutations under the transaction coordinator.
  - Storage: PostgreSQL rows with a composite primary key on the edge.
*/
package follow

import (
	"context"
	"time"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// # Domain Errors

var (
	// ErrAlreadyFollowing is returned when the follow edge already exists.
	ErrAlreadyFollowing = apperr.Conflict("Already following this user")

	// ErrNotFollowing is returned when unfollowing an absent edge.
	ErrNotFollowing = apperr.Conflict("Not following this user")

	// ErrSelfFollow is returned when a user attempts to follow themselves.
	ErrSelfFollow = apperr.Unprocessable("Cannot follow yourself")

	// ErrFollowingSetMissing signals a broken provisioning invariant: the
	// counter row that registration must create was not found.
	ErrFollowingSetMissing = apperr.Corrupted("Follow state is missing for this account", nil)
)

// # Domain Entities

// FollowStat holds the denormalized counters for one account.
type FollowStat struct {
	UserID         string    `json:"user_id"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FollowedUser is the listing projection of one followed account.
type FollowedUser struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	FollowedAt  time.Time `json:"followed_at"`
}

// # Repository Contract

// Repository defines the data access contract for the follow graph.
//
// Write methods participate in the transaction bound to the context, if any.
type Repository interface {

	/*
		AccountExists reports whether the account exists and is not deleted.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - bool: Presence flag
		  - error: Retrieval failures
	*/
	AccountExists(context context.Context, userID string) (bool, error)

	/*
		EdgeExists reports whether the directed edge is present.

		Parameters:
		  - context: context.Context
		  - followerID: string
		  - followeeID: string

		Returns:
		  - bool: Presence flag
		  - error: Retrieval failures
	*/
	EdgeExists(context context.Context, followerID, followeeID string) (bool, error)

	/*
		CreateEdge inserts the directed edge.

		Description: The composite primary key backstops concurrent duplicate
		follows; the losing writer receives ErrAlreadyFollowing.

		Parameters:
		  - context: context.Context
		  - followerID: string
		  - followeeID: string

		Returns:
		  - error: ErrAlreadyFollowing or persistence failures
	*/
	CreateEdge(context context.Context, followerID, followeeID string) error

	/*
		DeleteEdge removes the directed edge.

		Parameters:
		  - context: context.Context
		  - followerID: string
		  - followeeID: string

		Returns:
		  - bool: Whether an edge was actually removed
		  - error: Persistence failures
	*/
	DeleteEdge(context context.Context, followerID, followeeID string) (bool, error)

	/*
		AdjustCounters shifts both sides of the relationship by delta.

		Description: Applies delta to the follower's followingcount and the
		followee's followercount. Returns ErrFollowingSetMissing if either
		counter row is absent, which indicates broken provisioning.

		Parameters:
		  - context: context.Context
		  - followerID: string
		  - followeeID: string
		  - delta: int (+1 on follow, -1 on unfollow)

		Returns:
		  - error: ErrFollowingSetMissing or persistence failures
	*/
	AdjustCounters(context context.Context, followerID, followeeID string, delta int) error

	/*
		GetStat returns the counter row for one account.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *FollowStat: Hydrated counters
		  - error: ErrFollowingSetMissing or retrieval failures
	*/
	GetStat(context context.Context, userID string) (*FollowStat, error)

	/*
		ListFollowing returns the accounts the user follows, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - params: pagination.Params

		Returns:
		  - []FollowedUser: One page of followed accounts
		  - int64: Total edge count
		  - error: Retrieval failures
	*/
	ListFollowing(context context.Context, userID string, params pagination.Params) ([]FollowedUser, int64, error)
}
