// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package subscription implements comic subscriptions.

A subscription links a user to a comic and moves the comic's denormalized
subscriber counter. Unlike the follow graph, subscribing twice and
unsubscribing from an absent subscription are both silent no-ops: the caller
learns nothing about their previous state, and the counter only moves when a
row is actually inserted or deleted.

# Architecture

  - Entities: Subscription, SubscribedComic (listing DTO).
  - Service: Orchestrates row and counter mutations under the coordinator.
  - Storage: PostgreSQL rows with a composite primary key.
*/
package subscription

import (
	"context"
	"time"

	"github.com/huyndq/comicbox/pkg/pagination"
)

// # Domain Entities

// Subscription is one user-to-comic subscription row.
type Subscription struct {
	UserID    string    `json:"user_id"`
	ComicID   string    `json:"comic_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscribedComic is the listing projection of one subscribed comic.
type SubscribedComic struct {
	ComicID      string    `json:"comic_id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// # Repository Contract

// Repository defines the data access contract for subscriptions.
//
// Write methods participate in the transaction bound to the context, if any.
type Repository interface {

	/*
		ComicExists reports whether the comic exists and is not deleted.

		Parameters:
		  - context: context.Context
		  - comicID: string

		Returns:
		  - bool: Presence flag
		  - error: Retrieval failures
	*/
	ComicExists(context context.Context, comicID string) (bool, error)

	/*
		Insert adds the subscription row if it is not already present.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - comicID: string

		Returns:
		  - bool: Whether a new row was actually inserted
		  - error: Persistence failures
	*/
	Insert(context context.Context, userID, comicID string) (bool, error)

	/*
		Delete removes the subscription row if present.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - comicID: string

		Returns:
		  - bool: Whether a row was actually removed
		  - error: Persistence failures
	*/
	Delete(context context.Context, userID, comicID string) (bool, error)

	/*
		AdjustSubscriberCount shifts the comic's subscriber counter by delta.

		Parameters:
		  - context: context.Context
		  - comicID: string
		  - delta: int

		Returns:
		  - error: Persistence failures
	*/
	AdjustSubscriberCount(context context.Context, comicID string, delta int) error

	/*
		ListByUser returns the comics the user subscribes to, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - params: pagination.Params

		Returns:
		  - []SubscribedComic: One page of subscriptions
		  - int64: Total subscription count
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string, params pagination.Params) ([]SubscribedComic, int64, error)
}
