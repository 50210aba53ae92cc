// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package comic implements the comic catalogue.

# Architecture

  - Entities: Comic, ComicStat and the lifecycle Status enum.
  - Service: Orchestrates creation and mutation under the transaction
    coordinator. Creating a comic provisions its statistics row and its
    category links in the same transaction, moving each linked category's
    comic counter exactly once.
  - Storage: PostgreSQL rows in the core schema.

Comics are addressed by UUID; the slug is a display attribute chosen by the
author and kept unique by the database.
*/
package comic

import (
	"time"

	"github.com/huyndq/comicbox/internal/platform/apperr"
)

// # Domain Errors

var (
	// ErrComicNotFound is returned when no live comic matches the identifier.
	ErrComicNotFound = apperr.NotFound("Comic")

	// ErrSlugTaken is returned when the requested slug is already in use.
	ErrSlugTaken = apperr.Conflict("Comic slug is already taken")

	// ErrNotComicAuthor is returned when a caller mutates a comic they do not own.
	ErrNotComicAuthor = apperr.Forbidden("Only the author can modify this comic")

	// ErrStatMissing signals a broken provisioning invariant: the comic exists
	// but its statistics row does not.
	ErrStatMissing = apperr.Corrupted("Statistics are missing for this comic", nil)
)

// # Lifecycle Status

// Status is the publication lifecycle state of a comic.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusOngoing  Status = "ONGOING"
	StatusDropped  Status = "DROPPED"
	StatusFinished Status = "FINISHED"
	StatusUnknown  Status = "UNKNOWN"
)

// # Domain Entities

// Comic is one publication record of the catalogue.
type Comic struct {
	ID          string     `json:"id"`
	AuthorID    string     `json:"author_id"`
	ProjectID   *string    `json:"project_id,omitempty"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	CoverID     *string    `json:"cover_id,omitempty"`
	CategoryIDs []string   `json:"category_ids,omitempty"`
	Stat        *ComicStat `json:"stat,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ComicStat holds the denormalized engagement counters of one comic.
type ComicStat struct {
	SubscriberCount int64 `json:"subscriber_count"`
	ViewCount       int64 `json:"view_count"`
	ChapterCount    int64 `json:"chapter_count"`
}

// Validation field identifiers.
const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldCategoryIDs = "category_ids"
)
