// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package txn implements the transaction coordinator shared by every
multi-record workflow in Comicbox.

Each consistency operation (account provisioning, follow/unfollow,
subscribe/unsubscribe, comic creation, resource provisioning) mutates several
rows that must move together. Rather than re-implementing session handling at
every call site, all of them run their unit of work through [Coordinator.RunInTx].

Architecture:

  - Session: a handle binding a sequence of store operations to one
    transaction. Satisfied by [pgx.Tx].
  - Store: hands out sessions. [PoolStore] adapts a pgxpool.Pool.
  - Coordinator: demarcates the transaction — begin, run, commit on success,
    roll back on error or panic — and guarantees the session is resolved on
    every exit path.

Re-entrancy: the active session travels in the context. When a unit of work
invokes another operation that also calls RunInTx, the inner call detects the
bound session and joins it; only the outermost caller commits or aborts.
Repositories route their queries through [Q], which prefers the bound session
over the raw pool, so a service never has to thread transaction handles
through its signatures.
*/
package txn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huyndq/comicbox/internal/platform/ctxkey"
)

// # Contracts

// Querier is the query surface shared by connection pools and transactions.
//
// Both [*pgxpool.Pool] and [pgx.Tx] satisfy it, which lets repository code
// stay agnostic about whether it runs inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Session groups a sequence of store operations into one atomic unit.
//
// It is intentionally the smallest interface the coordinator needs; [pgx.Tx]
// satisfies it directly, and tests substitute lightweight fakes.
type Session interface {
	Querier

	// Commit makes every operation performed through the session durable.
	Commit(ctx context.Context) error

	// Rollback discards every operation performed through the session.
	// Rolling back an already-committed session is a tolerated no-op.
	Rollback(ctx context.Context) error
}

// Store hands out fresh sessions.
type Store interface {
	Begin(ctx context.Context) (Session, error)
}

// # Infrastructure Failures

// TxError marks a failure of the transaction machinery itself (begin or
// commit), as opposed to a business-rule error raised by the unit of work.
//
// Nothing committed when a TxError is returned, so the whole operation is
// safe to retry.
type TxError struct {
	// Op is the phase that failed: "begin" or "commit".
	Op string
	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *TxError) Error() string {
	return fmt.Sprintf("txn: %s failed: %v", e.Op, e.Err)
}

// Unwrap allows [errors.Is] and [errors.As] to reach the driver error.
func (e *TxError) Unwrap() error { return e.Err }

// IsTxError reports whether err (or any error in its chain) is a [*TxError].
func IsTxError(err error) bool {
	var te *TxError
	return errors.As(err, &te)
}

// # Pool Adapter

// PoolStore adapts a [*pgxpool.Pool] to the [Store] contract.
type PoolStore struct {
	pool *pgxpool.Pool
}

// NewPoolStore wraps the given connection pool.
func NewPoolStore(pool *pgxpool.Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

// Begin starts a new database transaction and returns it as a [Session].
func (store *PoolStore) Begin(ctx context.Context) (Session, error) {
	return store.pool.Begin(ctx)
}

// # Coordinator

// Coordinator demarcates transactions around units of work.
//
// One instance is shared by all services; it is stateless apart from its
// dependencies and safe for concurrent use.
type Coordinator struct {
	store  Store
	logger *slog.Logger
}

// NewCoordinator constructs a [Coordinator] over the given session store.
func NewCoordinator(store Store, logger *slog.Logger) *Coordinator {
	return &Coordinator{store: store, logger: logger}
}

/*
RunInTx executes fn inside a transaction.

Description: If the context already carries a session (a re-entrant call from
an enclosing operation), fn joins that session and the commit/abort decision
stays with the outermost caller. Otherwise a new session is started; fn runs
with the session bound to the context, every repository call inside routes
through it via [Q], and the session is resolved — committed on success,
rolled back on error or panic — before RunInTx returns.

Failure semantics: errors returned by fn abort the transaction and propagate
unchanged, so callers keep their typed business errors. Begin and commit
failures are wrapped as [*TxError] since they indicate infrastructure trouble
and nothing has committed.

Parameters:
  - ctx: context.Context
  - fn: The unit of work. All store operations inside must use the ctx it receives.

Returns:
  - error: fn's error verbatim, or *TxError for begin/commit failures
*/
func (coordinator *Coordinator) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {

	// Re-entrant call: join the already-open session. Only the outermost
	// RunInTx commits or aborts.
	if _, joined := SessionFrom(ctx); joined {
		return fn(ctx)
	}

	session, err := coordinator.store.Begin(ctx)
	if err != nil {
		return &TxError{Op: "begin", Err: err}
	}

	sessionCtx := context.WithValue(ctx, ctxkey.KeySession, session)

	// A panic inside the unit of work must not leak an open transaction.
	// Roll back, then re-raise for the recovery middleware.
	defer func() {
		if recovered := recover(); recovered != nil {
			coordinator.rollback(ctx, session)
			panic(recovered)
		}
	}()

	if err := fn(sessionCtx); err != nil {
		coordinator.rollback(ctx, session)
		return err
	}

	if err := session.Commit(ctx); err != nil {
		coordinator.rollback(ctx, session)
		return &TxError{Op: "commit", Err: err}
	}

	return nil
}

// rollback discards the session, logging unexpected rollback failures.
func (coordinator *Coordinator) rollback(ctx context.Context, session Session) {
	if err := session.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		coordinator.logger.Error("txn_rollback_failed", slog.Any("error", err))
	}
}

// # Context Plumbing

// SessionFrom retrieves the transaction session bound to the context, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(ctxkey.KeySession).(Session)
	return session, ok
}

// Q returns the querier a repository should use for the given context: the
// bound transaction session when one is open, the fallback pool otherwise.
func Q(ctx context.Context, fallback Querier) Querier {
	if session, ok := SessionFrom(ctx); ok {
		return session
	}
	return fallback
}
