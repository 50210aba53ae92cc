// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package chapter implements the chapter list of a comic.

Chapter numbers are unique within one comic; registering a chapter appends to
the list and moves the comic's chapter counter in the same transaction.
*/
package chapter

import (
	"context"
	"time"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// # Domain Errors

var (
	// ErrChapterNumberTaken is returned when the number already exists in the
	// comic's chapter list.
	ErrChapterNumberTaken = apperr.Conflict("Chapter number is already taken")

	// ErrChapterNotFound is returned when no live chapter matches the identifier.
	ErrChapterNotFound = apperr.NotFound("Chapter")
)

// # Domain Entities

// Chapter is one entry of a comic's chapter list.
type Chapter struct {
	ID          string     `json:"id"`
	ComicID     string     `json:"comic_id"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`
}

// Validation field identifiers.
const (
	FieldNumber = "number"
	FieldTitle  = "title"
)

// # Repository Contract

// Repository defines the data access contract for chapters.
//
// Write methods participate in the transaction bound to the context, if any.
type Repository interface {
	ComicAuthor(context context.Context, comicID string) (string, error)
	Insert(context context.Context, chapter *Chapter) error
	FindByID(context context.Context, id string) (*Chapter, error)
	SoftDelete(context context.Context, id string) (bool, error)
	AdjustChapterCount(context context.Context, comicID string, delta int) error
	ListByComic(context context.Context, comicID string, params pagination.Params) ([]Chapter, int64, error)
}
