// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package chapter_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndq/comicbox/internal/core/chapter"
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

type listKey struct {
	comic  string
	number int
}

// fakeRepo is an in-memory chapter list plus the per-comic chapter counter.
type fakeRepo struct {
	authors  map[string]string
	chapters map[string]*chapter.Chapter
	numbers  map[listKey]bool
	counts   map[string]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		authors:  map[string]string{},
		chapters: map[string]*chapter.Chapter{},
		numbers:  map[listKey]bool{},
		counts:   map[string]int64{},
	}
}

func (r *fakeRepo) addComic(comicID, authorID string) {
	r.authors[comicID] = authorID
	r.counts[comicID] = 0
}

func (r *fakeRepo) ComicAuthor(ctx context.Context, comicID string) (string, error) {
	author, ok := r.authors[comicID]
	if !ok {
		return "", comic.ErrComicNotFound
	}
	return author, nil
}

func (r *fakeRepo) Insert(ctx context.Context, c *chapter.Chapter) error {
	key := listKey{c.ComicID, c.Number}
	if r.numbers[key] {
		return chapter.ErrChapterNumberTaken
	}
	r.numbers[key] = true
	clone := *c
	r.chapters[c.ID] = &clone
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*chapter.Chapter, error) {
	c, ok := r.chapters[id]
	if !ok {
		return nil, chapter.ErrChapterNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	c, ok := r.chapters[id]
	if !ok {
		return false, nil
	}
	delete(r.chapters, id)
	delete(r.numbers, listKey{c.ComicID, c.Number})
	return true, nil
}

func (r *fakeRepo) AdjustChapterCount(ctx context.Context, comicID string, delta int) error {
	if _, ok := r.counts[comicID]; !ok {
		return comic.ErrStatMissing
	}
	r.counts[comicID] += int64(delta)
	return nil
}

func (r *fakeRepo) ListByComic(ctx context.Context, comicID string, params pagination.Params) ([]chapter.Chapter, int64, error) {
	var out []chapter.Chapter
	for _, c := range r.chapters {
		if c.ComicID == comicID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func newTestService(repo *fakeRepo) (*chapter.Service, *fakeTxSession) {
	session := &fakeTxSession{}
	coordinator := txn.NewCoordinator(&fakeTxStore{session: session}, slog.Default())
	return chapter.NewService(repo, coordinator, slog.Default()), session
}

// # Registration

/*
TestRegisterChapter_AppendsAndCounts verifies that one registration produces
the chapter row and exactly one counter move, committed together.
*/
func TestRegisterChapter_AppendsAndCounts(t *testing.T) {
	repo := newFakeRepo()
	repo.addComic("moonrise", "alice")
	service, txSession := newTestService(repo)

	registered, err := service.RegisterChapter(context.Background(), "alice", "moonrise", chapter.RegisterInput{
		Number: 1,
		Title:  "First Light",
	})

	require.NoError(t, err)
	require.NotEmpty(t, registered.ID)
	assert.Equal(t, int64(1), repo.counts["moonrise"])
	assert.True(t, txSession.committed)
}

/*
TestRegisterChapter_DuplicateNumber verifies that a taken number is a
conflict and the failed attempt leaves the counter untouched.
*/
func TestRegisterChapter_DuplicateNumber(t *testing.T) {
	repo := newFakeRepo()
	repo.addComic("moonrise", "alice")
	service, _ := newTestService(repo)

	_, err := service.RegisterChapter(context.Background(), "alice", "moonrise", chapter.RegisterInput{Number: 1})
	require.NoError(t, err)

	_, err = service.RegisterChapter(context.Background(), "alice", "moonrise", chapter.RegisterInput{Number: 1})

	require.ErrorIs(t, err, chapter.ErrChapterNumberTaken)
	assert.Equal(t, int64(1), repo.counts["moonrise"])
}

func TestRegisterChapter_UnknownComic(t *testing.T) {
	repo := newFakeRepo()
	service, txSession := newTestService(repo)

	_, err := service.RegisterChapter(context.Background(), "alice", "ghost", chapter.RegisterInput{Number: 1})

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, txSession.rolledBack)
}

func TestRegisterChapter_NonAuthorForbidden(t *testing.T) {
	repo := newFakeRepo()
	repo.addComic("moonrise", "alice")
	service, _ := newTestService(repo)

	_, err := service.RegisterChapter(context.Background(), "mallory", "moonrise", chapter.RegisterInput{Number: 1})

	require.ErrorIs(t, err, comic.ErrNotComicAuthor)
	assert.Empty(t, repo.chapters)
	assert.Equal(t, int64(0), repo.counts["moonrise"])
}

// # Deletion

func TestDeleteChapter_ReleasesCount(t *testing.T) {
	repo := newFakeRepo()
	repo.addComic("moonrise", "alice")
	service, _ := newTestService(repo)

	registered, err := service.RegisterChapter(context.Background(), "alice", "moonrise", chapter.RegisterInput{Number: 1})
	require.NoError(t, err)

	require.NoError(t, service.DeleteChapter(context.Background(), "alice", registered.ID))

	assert.Empty(t, repo.chapters)
	assert.Equal(t, int64(0), repo.counts["moonrise"])

	// The number is free again after deletion.
	_, err = service.RegisterChapter(context.Background(), "alice", "moonrise", chapter.RegisterInput{Number: 1})
	require.NoError(t, err)
}
