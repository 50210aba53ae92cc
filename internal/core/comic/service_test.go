// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package comic_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndq/comicbox/internal/core/category"
	"github.com/huyndq/comicbox/internal/core/comic"
	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/pkg/pagination"
)

// # Test Doubles

type fakeTxSession struct {
	committed  bool
	rolledBack bool
}

func (s *fakeTxSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (s *fakeTxSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (s *fakeTxSession) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (s *fakeTxSession) Commit(ctx context.Context) error {
	s.committed = true
	return nil
}
func (s *fakeTxSession) Rollback(ctx context.Context) error {
	if s.committed {
		return pgx.ErrTxClosed
	}
	s.rolledBack = true
	return nil
}

type fakeTxStore struct {
	session *fakeTxSession
}

func (s *fakeTxStore) Begin(ctx context.Context) (txn.Session, error) {
	return s.session, nil
}

type link struct {
	comic    string
	category string
}

// fakeComicRepo is an in-memory comic table with its stat and junction rows.
type fakeComicRepo struct {
	comics  map[string]*comic.Comic
	stats   map[string]bool
	links   map[link]bool
	deleted map[string]bool
}

func newFakeComicRepo() *fakeComicRepo {
	return &fakeComicRepo{
		comics:  map[string]*comic.Comic{},
		stats:   map[string]bool{},
		links:   map[link]bool{},
		deleted: map[string]bool{},
	}
}

func (r *fakeComicRepo) Insert(ctx context.Context, c *comic.Comic) error {
	for _, existing := range r.comics {
		if existing.Slug == c.Slug {
			return comic.ErrSlugTaken
		}
	}
	clone := *c
	r.comics[c.ID] = &clone
	return nil
}

func (r *fakeComicRepo) InitStat(ctx context.Context, comicID string) error {
	r.stats[comicID] = true
	return nil
}

func (r *fakeComicRepo) LinkCategory(ctx context.Context, comicID, categoryID string) error {
	r.links[link{comicID, categoryID}] = true
	return nil
}

func (r *fakeComicRepo) FindByID(ctx context.Context, id string) (*comic.Comic, error) {
	c, ok := r.comics[id]
	if !ok || r.deleted[id] {
		return nil, comic.ErrComicNotFound
	}
	clone := *c
	clone.Stat = &comic.ComicStat{}
	return &clone, nil
}

func (r *fakeComicRepo) ListCategoryIDs(ctx context.Context, comicID string) ([]string, error) {
	var ids []string
	for key := range r.links {
		if key.comic == comicID {
			ids = append(ids, key.category)
		}
	}
	return ids, nil
}

func (r *fakeComicRepo) Update(ctx context.Context, c *comic.Comic) error {
	if _, ok := r.comics[c.ID]; !ok || r.deleted[c.ID] {
		return comic.ErrComicNotFound
	}
	clone := *c
	r.comics[c.ID] = &clone
	return nil
}

func (r *fakeComicRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	if _, ok := r.comics[id]; !ok || r.deleted[id] {
		return false, nil
	}
	r.deleted[id] = true
	return true, nil
}

func (r *fakeComicRepo) List(ctx context.Context, params pagination.Params) ([]*comic.Comic, int64, error) {
	var out []*comic.Comic
	for id, c := range r.comics {
		if !r.deleted[id] {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

// fakeCategoryRepo tracks only the counter side of the catalogue.
type fakeCategoryRepo struct {
	counts map[string]int64
}

func newFakeCategoryRepo(categoryIDs ...string) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{counts: map[string]int64{}}
	for _, id := range categoryIDs {
		repo.counts[id] = 0
	}
	return repo
}

func (r *fakeCategoryRepo) Create(ctx context.Context, c *category.Category) error {
	r.counts[c.ID] = 0
	return nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id string) (*category.Category, error) {
	count, ok := r.counts[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return &category.Category{ID: id, ComicCount: count}, nil
}

func (r *fakeCategoryRepo) List(ctx context.Context) ([]*category.Category, error) {
	return nil, nil
}

func (r *fakeCategoryRepo) AdjustComicCount(ctx context.Context, categoryID string, delta int) error {
	if _, ok := r.counts[categoryID]; !ok {
		return category.ErrCategoryNotFound
	}
	r.counts[categoryID] += int64(delta)
	return nil
}

func newTestService(comicRepo *fakeComicRepo, categoryRepo *fakeCategoryRepo) (*comic.Service, *fakeTxSession) {
	session := &fakeTxSession{}
	coordinator := txn.NewCoordinator(&fakeTxStore{session: session}, slog.Default())
	return comic.NewService(comicRepo, categoryRepo, coordinator, slog.Default()), session
}

const (
	catAction = "0191e6a0-0000-7000-8000-000000000001"
	catDrama  = "0191e6a0-0000-7000-8000-000000000002"
	catComedy = "0191e6a0-0000-7000-8000-000000000003"
)

// # Creation

/*
TestCreateComic_ProvisionsFullRecord verifies that one creation produces the
comic row, its statistics row, one junction row per category and exactly one
counter move per linked category, all committed together.
*/
func TestCreateComic_ProvisionsFullRecord(t *testing.T) {
	comicRepo := newFakeComicRepo()
	categoryRepo := newFakeCategoryRepo(catAction, catDrama, catComedy)
	service, txSession := newTestService(comicRepo, categoryRepo)

	created, err := service.CreateComic(context.Background(), "alice", comic.CreateInput{
		Title:       "Moonrise",
		Slug:        "moonrise",
		CategoryIDs: []string{catAction, catDrama, catComedy},
	})

	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, comic.StatusDraft, created.Status)

	assert.True(t, comicRepo.stats[created.ID])
	assert.Len(t, comicRepo.links, 3)
	assert.Equal(t, int64(1), categoryRepo.counts[catAction])
	assert.Equal(t, int64(1), categoryRepo.counts[catDrama])
	assert.Equal(t, int64(1), categoryRepo.counts[catComedy])
	assert.True(t, txSession.committed)
}

/*
TestCreateComic_UnknownCategoryRollsBackEverything verifies the all-or-nothing
shape: when the last category of three is unknown, the comic row, the
statistics row and the two earlier counter moves are all rolled back.
*/
func TestCreateComic_UnknownCategoryRollsBackEverything(t *testing.T) {
	comicRepo := newFakeComicRepo()
	categoryRepo := newFakeCategoryRepo(catAction, catDrama)
	service, txSession := newTestService(comicRepo, categoryRepo)

	_, err := service.CreateComic(context.Background(), "alice", comic.CreateInput{
		Title:       "Moonrise",
		Slug:        "moonrise",
		CategoryIDs: []string{catAction, catDrama, catComedy},
	})

	require.ErrorIs(t, err, category.ErrCategoryNotFound)
	assert.True(t, txSession.rolledBack)
	assert.False(t, txSession.committed)
}

func TestCreateComic_DuplicateSlug(t *testing.T) {
	comicRepo := newFakeComicRepo()
	categoryRepo := newFakeCategoryRepo(catAction)
	service, _ := newTestService(comicRepo, categoryRepo)

	_, err := service.CreateComic(context.Background(), "alice", comic.CreateInput{
		Title: "Moonrise", Slug: "moonrise",
	})
	require.NoError(t, err)

	_, err = service.CreateComic(context.Background(), "bob", comic.CreateInput{
		Title: "Other Moonrise", Slug: "moonrise",
	})

	require.ErrorIs(t, err, comic.ErrSlugTaken)
}

func TestCreateComic_InvalidStatus(t *testing.T) {
	service, _ := newTestService(newFakeComicRepo(), newFakeCategoryRepo())

	_, err := service.CreateComic(context.Background(), "alice", comic.CreateInput{
		Title:  "Moonrise",
		Slug:   "moonrise",
		Status: comic.Status("PAUSED"),
	})

	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// # Mutation

func TestUpdateComicDetails_AuthorOnly(t *testing.T) {
	comicRepo := newFakeComicRepo()
	service, _ := newTestService(comicRepo, newFakeCategoryRepo())

	created, err := service.CreateComic(context.Background(), "alice", comic.CreateInput{
		Title: "Moonrise", Slug: "moonrise",
	})
	require.NoError(t, err)

	title := "Moonrise II"
	_, err = service.UpdateComicDetails(context.Background(), "mallory", created.ID, comic.UpdateInput{Title: &title})

	require.ErrorIs(t, err, comic.ErrNotComicAuthor)

	updated, err := service.UpdateComicDetails(context.Background(), "alice", created.ID, comic.UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Moonrise II", updated.Title)
}

/*
TestDeleteComic_ReleasesCategoryCounts verifies that a soft delete decrements
every linked category counter in the same transaction, so the catalogue
counts keep matching the live set.
*/
func TestDeleteComic_ReleasesCategoryCounts(t *testing.T) {
	comicRepo := newFakeComicRepo()
	categoryRepo := newFakeCategoryRepo(catAction, catDrama)
	service, _ := newTestService(comicRepo, categoryRepo)

	created, err := service.CreateComic(context.Background(), "alice", comic.CreateInput{
		Title:       "Moonrise",
		Slug:        "moonrise",
		CategoryIDs: []string{catAction, catDrama},
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteComic(context.Background(), "alice", created.ID))

	assert.Equal(t, int64(0), categoryRepo.counts[catAction])
	assert.Equal(t, int64(0), categoryRepo.counts[catDrama])

	_, err = service.GetComic(context.Background(), created.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteComic_NonAuthorForbidden(t *testing.T) {
	comicRepo := newFakeComicRepo()
	categoryRepo := newFakeCategoryRepo(catAction)
	service, _ := newTestService(comicRepo, categoryRepo)

	created, err := service.CreateComic(context.Background(), "alice", comic.CreateInput{
		Title: "Moonrise", Slug: "moonrise", CategoryIDs: []string{catAction},
	})
	require.NoError(t, err)

	err = service.DeleteComic(context.Background(), "mallory", created.ID)

	require.ErrorIs(t, err, comic.ErrNotComicAuthor)
	assert.Equal(t, int64(1), categoryRepo.counts[catAction])
}
