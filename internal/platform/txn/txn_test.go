// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package txn_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndq/comicbox/internal/platform/txn"
)

// fakeSession records the lifecycle calls made by the coordinator.
type fakeSession struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (s *fakeSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *fakeSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (s *fakeSession) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (s *fakeSession) Commit(ctx context.Context) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = true
	return nil
}

func (s *fakeSession) Rollback(ctx context.Context) error {
	if s.committed {
		return pgx.ErrTxClosed
	}
	s.rolledBack = true
	return nil
}

// fakeStore hands out a predetermined session (or fails to).
type fakeStore struct {
	session  *fakeSession
	beginErr error
	begun    int
}

func (s *fakeStore) Begin(ctx context.Context) (txn.Session, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.begun++
	return s.session, nil
}

func newCoordinator(store *fakeStore) *txn.Coordinator {
	return txn.NewCoordinator(store, slog.Default())
}

/*
TestRunInTx_CommitsOnSuccess verifies the happy path: the unit of work runs
with a session bound to its context, and the session is committed exactly once.
*/
func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	session := &fakeSession{}
	store := &fakeStore{session: session}
	coordinator := newCoordinator(store)

	var sawSession bool
	err := coordinator.RunInTx(context.Background(), func(ctx context.Context) error {
		_, sawSession = txn.SessionFrom(ctx)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, sawSession, "unit of work must see the bound session")
	assert.True(t, session.committed)
	assert.False(t, session.rolledBack)
}

/*
TestRunInTx_RollsBackOnBusinessError verifies that an error raised inside the
unit of work aborts the transaction and propagates unchanged.
*/
func TestRunInTx_RollsBackOnBusinessError(t *testing.T) {
	errAlreadyTaken := errors.New("username already taken")

	session := &fakeSession{}
	store := &fakeStore{session: session}
	coordinator := newCoordinator(store)

	err := coordinator.RunInTx(context.Background(), func(ctx context.Context) error {
		return errAlreadyTaken
	})

	require.ErrorIs(t, err, errAlreadyTaken, "business errors must pass through verbatim")
	assert.False(t, txn.IsTxError(err))
	assert.False(t, session.committed)
	assert.True(t, session.rolledBack)
}

/*
TestRunInTx_BeginFailure verifies that a session acquisition failure surfaces
as a typed *TxError.
*/
func TestRunInTx_BeginFailure(t *testing.T) {
	store := &fakeStore{beginErr: errors.New("pool exhausted")}
	coordinator := newCoordinator(store)

	err := coordinator.RunInTx(context.Background(), func(ctx context.Context) error {
		t.Fatal("unit of work must not run when begin fails")
		return nil
	})

	require.Error(t, err)
	assert.True(t, txn.IsTxError(err))

	var txErr *txn.TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "begin", txErr.Op)
}

/*
TestRunInTx_CommitFailure verifies that a commit failure is wrapped as
*TxError and the session is still resolved.
*/
func TestRunInTx_CommitFailure(t *testing.T) {
	session := &fakeSession{commitErr: errors.New("connection reset")}
	store := &fakeStore{session: session}
	coordinator := newCoordinator(store)

	err := coordinator.RunInTx(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.Error(t, err)
	assert.True(t, txn.IsTxError(err))

	var txErr *txn.TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "commit", txErr.Op)
	assert.True(t, session.rolledBack)
}

/*
TestRunInTx_PanicRollsBackAndRepanics verifies that a panic inside the unit
of work does not leak an open transaction.
*/
func TestRunInTx_PanicRollsBackAndRepanics(t *testing.T) {
	session := &fakeSession{}
	store := &fakeStore{session: session}
	coordinator := newCoordinator(store)

	assert.Panics(t, func() {
		_ = coordinator.RunInTx(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})

	assert.False(t, session.committed)
	assert.True(t, session.rolledBack)
}

/*
TestRunInTx_ReentrantJoinsOuterSession verifies that a nested RunInTx joins
the enclosing session: no second Begin, no inner commit — only the outermost
caller resolves the transaction.
*/
func TestRunInTx_ReentrantJoinsOuterSession(t *testing.T) {
	session := &fakeSession{}
	store := &fakeStore{session: session}
	coordinator := newCoordinator(store)

	var innerRan bool
	err := coordinator.RunInTx(context.Background(), func(outerCtx context.Context) error {
		return coordinator.RunInTx(outerCtx, func(innerCtx context.Context) error {
			innerRan = true

			inner, ok := txn.SessionFrom(innerCtx)
			require.True(t, ok)
			assert.Same(t, txn.Session(session), inner, "inner call must reuse the outer session")

			// The inner call must not have committed anything yet.
			assert.False(t, session.committed)
			return nil
		})
	})

	require.NoError(t, err)
	assert.True(t, innerRan)
	assert.Equal(t, 1, store.begun, "re-entrant call must not open a second session")
	assert.True(t, session.committed)
}

/*
TestRunInTx_ReentrantErrorAbortsOuter verifies that an error from a nested
unit of work aborts the outermost transaction.
*/
func TestRunInTx_ReentrantErrorAbortsOuter(t *testing.T) {
	errInner := errors.New("target not found")

	session := &fakeSession{}
	store := &fakeStore{session: session}
	coordinator := newCoordinator(store)

	err := coordinator.RunInTx(context.Background(), func(outerCtx context.Context) error {
		return coordinator.RunInTx(outerCtx, func(innerCtx context.Context) error {
			return errInner
		})
	})

	require.ErrorIs(t, err, errInner)
	assert.False(t, session.committed)
	assert.True(t, session.rolledBack)
}

/*
TestQ verifies querier selection: the bound session when present, the
fallback pool otherwise.
*/
func TestQ(t *testing.T) {
	session := &fakeSession{}
	fallback := &fakeSession{}

	t.Run("no_session_uses_fallback", func(t *testing.T) {
		q := txn.Q(context.Background(), fallback)
		assert.Same(t, txn.Querier(fallback), q)
	})

	t.Run("bound_session_wins", func(t *testing.T) {
		store := &fakeStore{session: session}
		coordinator := newCoordinator(store)

		_ = coordinator.RunInTx(context.Background(), func(ctx context.Context) error {
			q := txn.Q(ctx, fallback)
			assert.Same(t, txn.Querier(session), q)
			return nil
		})
	})
}
