// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package resource_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndq/comicbox/internal/core/resource"
	"github.com/huyndq/comicbox/internal/platform/txn"
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

// fakeObjectStore records every put so tests can assert on storage traffic.
type fakeObjectStore struct {
	objects map[string][]byte
	puts    []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.objects[key] = append([]byte(nil), data...)
	s.puts = append(s.puts, key)
	return nil
}

func (s *fakeObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeObjectStore) Remove(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

// fakeRepo is an in-memory resource metadata table.
type fakeRepo struct {
	resources map[string]*resource.Resource
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{resources: map[string]*resource.Resource{}}
}

func (r *fakeRepo) Insert(ctx context.Context, res *resource.Resource) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *res
	r.resources[res.ID] = &clone
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*resource.Resource, error) {
	res, ok := r.resources[id]
	if !ok {
		return nil, resource.ErrResourceNotFound
	}
	clone := *res
	return &clone, nil
}

func (r *fakeRepo) UpdatePayloadMeta(ctx context.Context, id, contentType string, sizeBytes int64) error {
	res, ok := r.resources[id]
	if !ok {
		return resource.ErrResourceNotFound
	}
	res.ContentType = contentType
	res.SizeBytes = sizeBytes
	return nil
}

func (r *fakeRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	if _, ok := r.resources[id]; !ok {
		return false, nil
	}
	delete(r.resources, id)
	return true, nil
}

func newTestService(repo *fakeRepo, store *fakeObjectStore) *resource.Service {
	coordinator := txn.NewCoordinator(&fakeTxStore{session: &fakeTxSession{}}, slog.Default())
	return resource.NewService(repo, store, coordinator, slog.Default())
}

// # Creation

/*
TestCreate_KeyDerivedFromIdentity verifies that the object key is a pure
function of kind and the pre-generated resource ID, so the payload and the
metadata always agree on the key.
*/
func TestCreate_KeyDerivedFromIdentity(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	service := newTestService(repo, store)

	created, err := service.Create(context.Background(), "alice",
		resource.KindCover, resource.VisibilityPublic, []byte("png-bytes"), "image/png")

	require.NoError(t, err)
	assert.Equal(t, "cover/"+created.ID, created.ObjectKey)
	assert.Contains(t, store.objects, created.ObjectKey)
	assert.Equal(t, created.ObjectKey, repo.resources[created.ID].ObjectKey)
}

/*
TestCreate_MetadataFailureLeavesRetryableKey verifies the recovery story for
the two-system write: if the metadata insert fails the payload already sits
under a deterministic key, and nothing is left in the metadata table, so the
caller can simply retry.
*/
func TestCreate_MetadataFailureLeavesRetryableKey(t *testing.T) {
	repo := newFakeRepo()
	repo.insertErr = assert.AnError
	store := newFakeObjectStore()
	service := newTestService(repo, store)

	_, err := service.Create(context.Background(), "alice",
		resource.KindCover, resource.VisibilityPublic, []byte("png-bytes"), "image/png")

	require.Error(t, err)
	assert.Empty(t, repo.resources)
	assert.Len(t, store.puts, 1)
}

func TestCreate_RejectsUnknownKind(t *testing.T) {
	service := newTestService(newFakeRepo(), newFakeObjectStore())

	_, err := service.Create(context.Background(), "alice",
		resource.Kind("torrent"), resource.VisibilityPublic, []byte("x"), "application/octet-stream")

	require.Error(t, err)
}

// # Overwrite

func TestOverwrite_ReplacesUnderSameKey(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	service := newTestService(repo, store)

	created, err := service.Create(context.Background(), "alice",
		resource.KindAvatar, resource.VisibilityPublic, []byte("v1"), "image/png")
	require.NoError(t, err)

	updated, err := service.Overwrite(context.Background(), "alice", created.ID, []byte("v2-longer"), "image/webp")

	require.NoError(t, err)
	assert.Equal(t, created.ObjectKey, updated.ObjectKey)
	assert.Equal(t, []byte("v2-longer"), store.objects[created.ObjectKey])
	assert.Equal(t, "image/webp", repo.resources[created.ID].ContentType)
	assert.Equal(t, int64(9), repo.resources[created.ID].SizeBytes)
}

/*
TestOverwrite_NonOwnerCausesNoUpload verifies that the ownership guard runs
before any byte moves: a rejected caller produces no storage traffic and no
metadata change.
*/
func TestOverwrite_NonOwnerCausesNoUpload(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	service := newTestService(repo, store)

	created, err := service.Create(context.Background(), "alice",
		resource.KindAvatar, resource.VisibilityPublic, []byte("v1"), "image/png")
	require.NoError(t, err)
	putsAfterCreate := len(store.puts)

	_, err = service.Overwrite(context.Background(), "mallory", created.ID, []byte("evil"), "image/png")

	require.ErrorIs(t, err, resource.ErrNotResourceOwner)
	assert.Len(t, store.puts, putsAfterCreate)
	assert.Equal(t, []byte("v1"), store.objects[created.ObjectKey])
}

// # Access Policy

func TestOpen_OwnerOnlyResource(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	service := newTestService(repo, store)

	created, err := service.Create(context.Background(), "alice",
		resource.KindFile, resource.VisibilityOwner, []byte("secret"), "application/pdf")
	require.NoError(t, err)

	// The owner reads their own payload.
	_, stream, err := service.Open(context.Background(), "alice", created.ID)
	require.NoError(t, err)
	data, _ := io.ReadAll(stream)
	stream.Close()
	assert.Equal(t, []byte("secret"), data)

	// Everyone else, including anonymous callers, is rejected.
	_, _, err = service.Open(context.Background(), "mallory", created.ID)
	require.ErrorIs(t, err, resource.ErrAccessDenied)

	_, _, err = service.Open(context.Background(), "", created.ID)
	require.ErrorIs(t, err, resource.ErrAccessDenied)
}

func TestOpen_PublicResource(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	service := newTestService(repo, store)

	created, err := service.Create(context.Background(), "alice",
		resource.KindCover, resource.VisibilityPublic, []byte("cover"), "image/png")
	require.NoError(t, err)

	_, stream, err := service.Open(context.Background(), "", created.ID)
	require.NoError(t, err)
	stream.Close()
}

// # Deletion

func TestDelete_OwnerOnly(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeObjectStore()
	service := newTestService(repo, store)

	created, err := service.Create(context.Background(), "alice",
		resource.KindFile, resource.VisibilityOwner, []byte("secret"), "application/pdf")
	require.NoError(t, err)

	err = service.Delete(context.Background(), "mallory", created.ID)
	require.ErrorIs(t, err, resource.ErrNotResourceOwner)

	require.NoError(t, service.Delete(context.Background(), "alice", created.ID))
	assert.Empty(t, repo.resources)
	assert.NotContains(t, store.objects, created.ObjectKey)
}
