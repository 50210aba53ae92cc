// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package subscription_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/internal/users/subscription"
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

type pair struct {
	user  string
	comic string
}

// fakeRepo is an in-memory subscription table plus the comic counter it feeds.
type fakeRepo struct {
	comics     map[string]bool
	rows       map[pair]bool
	counters   map[string]int64
	counterErr error
}

func newFakeRepo(comicIDs ...string) *fakeRepo {
	repo := &fakeRepo{
		comics:   map[string]bool{},
		rows:     map[pair]bool{},
		counters: map[string]int64{},
	}
	for _, id := range comicIDs {
		repo.comics[id] = true
		repo.counters[id] = 0
	}
	return repo
}

func (r *fakeRepo) ComicExists(ctx context.Context, comicID string) (bool, error) {
	return r.comics[comicID], nil
}

func (r *fakeRepo) Insert(ctx context.Context, userID, comicID string) (bool, error) {
	key := pair{userID, comicID}
	if r.rows[key] {
		return false, nil
	}
	r.rows[key] = true
	return true, nil
}

func (r *fakeRepo) Delete(ctx context.Context, userID, comicID string) (bool, error) {
	key := pair{userID, comicID}
	if !r.rows[key] {
		return false, nil
	}
	delete(r.rows, key)
	return true, nil
}

func (r *fakeRepo) AdjustSubscriberCount(ctx context.Context, comicID string, delta int) error {
	if r.counterErr != nil {
		return r.counterErr
	}
	r.counters[comicID] += int64(delta)
	return nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string, params pagination.Params) ([]subscription.SubscribedComic, int64, error) {
	var comics []subscription.SubscribedComic
	for key := range r.rows {
		if key.user == userID {
			comics = append(comics, subscription.SubscribedComic{ComicID: key.comic})
		}
	}
	return comics, int64(len(comics)), nil
}

func newTestService(repo *fakeRepo) (*subscription.Service, *fakeTxSession) {
	session := &fakeTxSession{}
	coordinator := txn.NewCoordinator(&fakeTxStore{session: session}, slog.Default())
	return subscription.NewService(repo, coordinator, slog.Default()), session
}

// # Subscribe

/*
TestSubscribe_InsertsRowAndCountsOnce verifies that a fresh subscription
inserts the row and moves the counter by exactly one, inside a committed
transaction.
*/
func TestSubscribe_InsertsRowAndCountsOnce(t *testing.T) {
	repo := newFakeRepo("one-piece")
	service, txSession := newTestService(repo)

	require.NoError(t, service.Subscribe(context.Background(), "alice", "one-piece"))

	assert.True(t, repo.rows[pair{"alice", "one-piece"}])
	assert.Equal(t, int64(1), repo.counters["one-piece"])
	assert.True(t, txSession.committed)
}

/*
TestSubscribe_RepeatIsSilentNoOp verifies the idempotency contract: a second
subscribe succeeds without error and without moving the counter again.
*/
func TestSubscribe_RepeatIsSilentNoOp(t *testing.T) {
	repo := newFakeRepo("one-piece")
	service, _ := newTestService(repo)

	require.NoError(t, service.Subscribe(context.Background(), "alice", "one-piece"))
	require.NoError(t, service.Subscribe(context.Background(), "alice", "one-piece"))

	assert.Equal(t, int64(1), repo.counters["one-piece"])
}

func TestSubscribe_UnknownComic(t *testing.T) {
	repo := newFakeRepo()
	service, txSession := newTestService(repo)

	err := service.Subscribe(context.Background(), "alice", "ghost")

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, txSession.rolledBack)
	assert.Empty(t, repo.rows)
}

/*
TestSubscribe_CounterFailureRollsBackRow verifies that the row insert and the
counter update commit or abort together: if the counter cannot move, the
subscription row must not survive either.
*/
func TestSubscribe_CounterFailureRollsBackRow(t *testing.T) {
	repo := newFakeRepo("one-piece")
	repo.counterErr = assert.AnError

	service, txSession := newTestService(repo)

	err := service.Subscribe(context.Background(), "alice", "one-piece")

	require.Error(t, err)
	assert.True(t, txSession.rolledBack)
	assert.False(t, txSession.committed)
}

// # Unsubscribe

func TestUnsubscribe_RemovesRowAndCountsDown(t *testing.T) {
	repo := newFakeRepo("one-piece")
	service, _ := newTestService(repo)

	require.NoError(t, service.Subscribe(context.Background(), "alice", "one-piece"))
	require.NoError(t, service.Unsubscribe(context.Background(), "alice", "one-piece"))

	assert.Empty(t, repo.rows)
	assert.Equal(t, int64(0), repo.counters["one-piece"])
}

/*
TestUnsubscribe_AbsentIsSilentNoOp verifies that removing a subscription that
was never there succeeds quietly and leaves the counter untouched, so
repeated unsubscribe retries cannot drive it negative.
*/
func TestUnsubscribe_AbsentIsSilentNoOp(t *testing.T) {
	repo := newFakeRepo("one-piece")
	service, _ := newTestService(repo)

	require.NoError(t, service.Unsubscribe(context.Background(), "alice", "one-piece"))
	require.NoError(t, service.Unsubscribe(context.Background(), "alice", "one-piece"))

	assert.Equal(t, int64(0), repo.counters["one-piece"])
}

// # Listing

func TestListSubscriptions_ReturnsUserRowsOnly(t *testing.T) {
	repo := newFakeRepo("one-piece", "berserk")
	service, _ := newTestService(repo)

	require.NoError(t, service.Subscribe(context.Background(), "alice", "one-piece"))
	require.NoError(t, service.Subscribe(context.Background(), "alice", "berserk"))
	require.NoError(t, service.Subscribe(context.Background(), "bob", "one-piece"))

	comics, meta, err := service.ListSubscriptions(context.Background(), "alice", pagination.Params{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, comics, 2)
	assert.Equal(t, 2, meta.Total)
}
