// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package category_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndq/comicbox/internal/core/category"
	"github.com/huyndq/comicbox/internal/platform/apperr"
)

// # Test Doubles

// fakeRepo is an in-memory category table keyed by ID, with a slug index
// standing in for the unique constraint.
type fakeRepo struct {
	categories map[string]*category.Category
	slugs      map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories: map[string]*category.Category{},
		slugs:      map[string]bool{},
	}
}

func (r *fakeRepo) Create(ctx context.Context, entry *category.Category) error {
	if r.slugs[entry.Slug] {
		return category.ErrCategoryExists
	}
	stored := *entry
	r.categories[entry.ID] = &stored
	r.slugs[entry.Slug] = true
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*category.Category, error) {
	entry, ok := r.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return entry, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]*category.Category, error) {
	entries := make([]*category.Category, 0, len(r.categories))
	for _, entry := range r.categories {
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *fakeRepo) AdjustComicCount(ctx context.Context, categoryID string, delta int) error {
	entry, ok := r.categories[categoryID]
	if !ok {
		return category.ErrCategoryNotFound
	}
	entry.ComicCount += int64(delta)
	return nil
}

func newService(repo *fakeRepo) *category.Service {
	return category.NewService(repo, slog.Default())
}

// # Tests

func TestCreateCategory_StartsWithZeroCount(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	created, err := service.CreateCategory(context.Background(), "Action", "action")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	stored, err := service.GetCategory(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Action", stored.Name)
	assert.EqualValues(t, 0, stored.ComicCount)
}

func TestCreateCategory_DuplicateSlug(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	_, err := service.CreateCategory(context.Background(), "Action", "action")
	require.NoError(t, err)

	_, err = service.CreateCategory(context.Background(), "Action Redux", "action")
	assert.ErrorIs(t, err, category.ErrCategoryExists)
}

func TestCreateCategory_RejectsMalformedSlug(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)

	_, err := service.CreateCategory(context.Background(), "Slice of Life", "Slice of Life!")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Empty(t, repo.categories)
}

func TestAdjustComicCount_UnknownCategory(t *testing.T) {
	repo := newFakeRepo()

	err := repo.AdjustComicCount(context.Background(), "0198c1a0-0000-7000-8000-000000000000", +1)
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)
}
