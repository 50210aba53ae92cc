// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package comic

import (
	"context"

	"github.com/huyndq/comicbox/pkg/pagination"
)

// # Repository Contract

// Repository defines the data access contract for comics.
//
// Write methods participate in the transaction bound to the context, if any.
type Repository interface {

	/*
		Insert adds the comic row.

		Parameters:
		  - context: context.Context
		  - comic: *Comic

		Returns:
		  - error: ErrSlugTaken or persistence failures
	*/
	Insert(context context.Context, comic *Comic) error

	/*
		InitStat provisions the comic's zeroed statistics row.

		Parameters:
		  - context: context.Context
		  - comicID: string

		Returns:
		  - error: Persistence failures
	*/
	InitStat(context context.Context, comicID string) error

	/*
		LinkCategory adds one row to the comic/category junction.

		Parameters:
		  - context: context.Context
		  - comicID: string
		  - categoryID: string

		Returns:
		  - error: Persistence failures
	*/
	LinkCategory(context context.Context, comicID, categoryID string) error

	/*
		FindByID returns one live comic with its statistics and category links.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Comic: Hydrated entity
		  - error: ErrComicNotFound, ErrStatMissing or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Comic, error)

	/*
		ListCategoryIDs returns the category links of one comic.

		Parameters:
		  - context: context.Context
		  - comicID: string

		Returns:
		  - []string: Linked category IDs
		  - error: Retrieval failures
	*/
	ListCategoryIDs(context context.Context, comicID string) ([]string, error)

	/*
		Update rewrites the mutable attributes of the comic row.

		Parameters:
		  - context: context.Context
		  - comic: *Comic

		Returns:
		  - error: ErrComicNotFound, ErrSlugTaken or persistence failures
	*/
	Update(context context.Context, comic *Comic) error

	/*
		SoftDelete marks the comic row as deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - bool: Whether a live row was actually marked
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) (bool, error)

	/*
		List returns one page of live comics, newest first.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*Comic: One page of the catalogue
		  - int64: Total live comic count
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]*Comic, int64, error)
}
