// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package category implements the comic category catalogue.

Each category carries a denormalized comiccount that mirrors the number of
live comics linked to it. The counter never moves on its own: it shifts only
inside the transaction of the comic mutation that links or unlinks the
category, so a committed state always has counter == junction rows.
*/
package category

import (
	"context"
	"time"

	"github.com/huyndq/comicbox/internal/platform/apperr"
)

// # Domain Errors

var (
	// ErrCategoryExists is returned when the name or slug is already taken.
	ErrCategoryExists = apperr.Conflict("Category already exists")

	// ErrCategoryNotFound is returned when no live category matches the identifier.
	ErrCategoryNotFound = apperr.NotFound("Category")
)

// # Domain Entities

// Category is one entry of the catalogue comics are classified under.
type Category struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ComicCount int64     `json:"comic_count"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Validation field identifiers.
const (
	FieldName = "name"
	FieldSlug = "slug"
)

// # Repository Contract

// Repository defines the data access contract for categories.
//
// AdjustComicCount participates in the transaction bound to the context; it
// is called by the comic domain, never directly by handlers.
type Repository interface {
	Create(context context.Context, category *Category) error
	FindByID(context context.Context, id string) (*Category, error)
	List(context context.Context) ([]*Category, error)

	/*
		AdjustComicCount shifts the category's comic counter by delta.

		Parameters:
		  - context: context.Context
		  - categoryID: string
		  - delta: int

		Returns:
		  - error: ErrCategoryNotFound (no live row) or persistence failures
	*/
	AdjustComicCount(context context.Context, categoryID string, delta int) error
}
