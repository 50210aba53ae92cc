// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package follow_test

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
	"github.com/huyndq/comicbox/internal/users/follow"
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

type edge struct {
	follower string
	followee string
}

// fakeRepo is an in-memory follow graph that mirrors the counter invariant.
// With staleReads set, EdgeExists reports no edge even when one is present,
// reproducing a concurrent writer that lands between the check and the
// insert; CreateEdge then surfaces the mapped unique violation.
type fakeRepo struct {
	accounts   map[string]bool
	edges      map[edge]bool
	stats      map[string]*follow.FollowStat
	staleReads bool
}

func newFakeRepo(userIDs ...string) *fakeRepo {
	repo := &fakeRepo{
		accounts: map[string]bool{},
		edges:    map[edge]bool{},
		stats:    map[string]*follow.FollowStat{},
	}
	for _, id := range userIDs {
		repo.accounts[id] = true
		repo.stats[id] = &follow.FollowStat{UserID: id}
	}
	return repo
}

func (r *fakeRepo) AccountExists(ctx context.Context, userID string) (bool, error) {
	return r.accounts[userID], nil
}

func (r *fakeRepo) EdgeExists(ctx context.Context, followerID, followeeID string) (bool, error) {
	if r.staleReads {
		return false, nil
	}
	return r.edges[edge{followerID, followeeID}], nil
}

func (r *fakeRepo) CreateEdge(ctx context.Context, followerID, followeeID string) error {
	key := edge{followerID, followeeID}
	if r.edges[key] {
		return follow.ErrAlreadyFollowing
	}
	r.edges[key] = true
	return nil
}

func (r *fakeRepo) DeleteEdge(ctx context.Context, followerID, followeeID string) (bool, error) {
	key := edge{followerID, followeeID}
	if !r.edges[key] {
		return false, nil
	}
	delete(r.edges, key)
	return true, nil
}

func (r *fakeRepo) AdjustCounters(ctx context.Context, followerID, followeeID string, delta int) error {
	followerStat, ok := r.stats[followerID]
	if !ok {
		return follow.ErrFollowingSetMissing
	}
	followeeStat, ok := r.stats[followeeID]
	if !ok {
		return follow.ErrFollowingSetMissing
	}
	followerStat.FollowingCount += int64(delta)
	followeeStat.FollowerCount += int64(delta)
	return nil
}

func (r *fakeRepo) GetStat(ctx context.Context, userID string) (*follow.FollowStat, error) {
	stat, ok := r.stats[userID]
	if !ok {
		return nil, follow.ErrFollowingSetMissing
	}
	return stat, nil
}

func (r *fakeRepo) ListFollowing(ctx context.Context, userID string, params pagination.Params) ([]follow.FollowedUser, int64, error) {
	var users []follow.FollowedUser
	for key := range r.edges {
		if key.follower == userID {
			users = append(users, follow.FollowedUser{ID: key.followee})
		}
	}
	return users, int64(len(users)), nil
}

func newTestService(repo *fakeRepo) (*follow.Service, *fakeTxSession) {
	session := &fakeTxSession{}
	coordinator := txn.NewCoordinator(&fakeTxStore{session: session}, slog.Default())
	return follow.NewService(repo, coordinator, slog.Default()), session
}

// # Follow

/*
TestFollow_CreatesEdgeAndShiftsCounters verifies the core invariant: one new
edge moves exactly two counters, one on each side.
*/
func TestFollow_CreatesEdgeAndShiftsCounters(t *testing.T) {
	repo := newFakeRepo("alice", "bob")
	service, txSession := newTestService(repo)

	require.NoError(t, service.Follow(context.Background(), "alice", "bob"))

	assert.True(t, repo.edges[edge{"alice", "bob"}])
	assert.Equal(t, int64(1), repo.stats["alice"].FollowingCount)
	assert.Equal(t, int64(0), repo.stats["alice"].FollowerCount)
	assert.Equal(t, int64(1), repo.stats["bob"].FollowerCount)
	assert.Equal(t, int64(0), repo.stats["bob"].FollowingCount)
	assert.True(t, txSession.committed)
}

func TestFollow_SelfFollowRejected(t *testing.T) {
	repo := newFakeRepo("alice")
	service, _ := newTestService(repo)

	err := service.Follow(context.Background(), "alice", "alice")

	require.ErrorIs(t, err, follow.ErrSelfFollow)
	assert.Empty(t, repo.edges)
}

func TestFollow_DuplicateIsConflict(t *testing.T) {
	repo := newFakeRepo("alice", "bob")
	service, _ := newTestService(repo)

	require.NoError(t, service.Follow(context.Background(), "alice", "bob"))
	err := service.Follow(context.Background(), "alice", "bob")

	require.ErrorIs(t, err, follow.ErrAlreadyFollowing)

	// The failed attempt must not move the counters again.
	assert.Equal(t, int64(1), repo.stats["alice"].FollowingCount)
	assert.Equal(t, int64(1), repo.stats["bob"].FollowerCount)
}

func TestFollow_UnknownTarget(t *testing.T) {
	repo := newFakeRepo("alice")
	service, txSession := newTestService(repo)

	err := service.Follow(context.Background(), "alice", "ghost")

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, txSession.rolledBack)
}

/*
TestFollow_UnknownSource verifies that a missing or soft-deleted follower is
reported as not-found before any graph mutation, not as a corrupted counter
row further down the transaction.
*/
func TestFollow_UnknownSource(t *testing.T) {
	repo := newFakeRepo("bob")
	service, txSession := newTestService(repo)

	err := service.Follow(context.Background(), "ghost", "bob")

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, repo.edges)
	assert.Equal(t, int64(0), repo.stats["bob"].FollowerCount)
	assert.True(t, txSession.rolledBack)
}

/*
TestFollow_InsertRaceSurfacesConflict drives the race the pre-check cannot
close: the edge check sees nothing, but a concurrent writer has already
inserted the edge, so the losing insert hits the composite primary key. The
loser must surface the conflict and leave the counters untouched.
*/
func TestFollow_InsertRaceSurfacesConflict(t *testing.T) {
	repo := newFakeRepo("alice", "bob")
	repo.edges[edge{"alice", "bob"}] = true
	repo.staleReads = true

	service, txSession := newTestService(repo)

	err := service.Follow(context.Background(), "alice", "bob")

	require.ErrorIs(t, err, follow.ErrAlreadyFollowing)
	assert.Equal(t, int64(0), repo.stats["alice"].FollowingCount)
	assert.Equal(t, int64(0), repo.stats["bob"].FollowerCount)
	assert.True(t, txSession.rolledBack)
	assert.False(t, txSession.committed)
}

/*
TestFollow_MissingCounterRowAborts verifies that a broken provisioning
invariant (absent followstat row) aborts the whole mutation: the edge insert
is rolled back together with the counter update.
*/
func TestFollow_MissingCounterRowAborts(t *testing.T) {
	repo := newFakeRepo("alice", "bob")
	delete(repo.stats, "bob")

	service, txSession := newTestService(repo)

	err := service.Follow(context.Background(), "alice", "bob")

	require.ErrorIs(t, err, follow.ErrFollowingSetMissing)
	assert.True(t, txSession.rolledBack)
	assert.False(t, txSession.committed)
}

// # Unfollow

func TestUnfollow_RemovesEdgeAndShiftsCounters(t *testing.T) {
	repo := newFakeRepo("alice", "bob")
	service, _ := newTestService(repo)

	require.NoError(t, service.Follow(context.Background(), "alice", "bob"))
	require.NoError(t, service.Unfollow(context.Background(), "alice", "bob"))

	assert.Empty(t, repo.edges)
	assert.Equal(t, int64(0), repo.stats["alice"].FollowingCount)
	assert.Equal(t, int64(0), repo.stats["bob"].FollowerCount)
}

func TestUnfollow_AbsentEdgeIsConflict(t *testing.T) {
	repo := newFakeRepo("alice", "bob")
	service, txSession := newTestService(repo)

	err := service.Unfollow(context.Background(), "alice", "bob")

	require.ErrorIs(t, err, follow.ErrNotFollowing)
	assert.True(t, txSession.rolledBack)

	// Counters must not drift on a failed unfollow.
	assert.Equal(t, int64(0), repo.stats["alice"].FollowingCount)
	assert.Equal(t, int64(0), repo.stats["bob"].FollowerCount)
}

func TestUnfollow_UnknownAccount(t *testing.T) {
	repo := newFakeRepo("bob")
	service, txSession := newTestService(repo)

	err := service.Unfollow(context.Background(), "ghost", "bob")

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, txSession.rolledBack)
}

/*
TestFollow_Asymmetry verifies that the graph is directed: alice following bob
does not make bob follow alice.
*/
func TestFollow_Asymmetry(t *testing.T) {
	repo := newFakeRepo("alice", "bob")
	service, _ := newTestService(repo)

	require.NoError(t, service.Follow(context.Background(), "alice", "bob"))

	assert.True(t, repo.edges[edge{"alice", "bob"}])
	assert.False(t, repo.edges[edge{"bob", "alice"}])

	// And the reverse direction is still available.
	require.NoError(t, service.Follow(context.Background(), "bob", "alice"))
	assert.Equal(t, int64(1), repo.stats["alice"].FollowerCount)
	assert.Equal(t, int64(1), repo.stats["alice"].FollowingCount)
}
