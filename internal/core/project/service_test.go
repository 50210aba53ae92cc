// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package project_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndq/comicbox/internal/core/project"
	"github.com/huyndq/comicbox/internal/core/resource"
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

// fakeRepo is an in-memory project table.
type fakeRepo struct {
	projects  map[string]*project.Project
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{projects: map[string]*project.Project{}}
}

func (r *fakeRepo) Insert(ctx context.Context, p *project.Project) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *p
	r.projects[p.ID] = &clone
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*project.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeRepo) Update(ctx context.Context, p *project.Project) error {
	if _, ok := r.projects[p.ID]; !ok {
		return project.ErrProjectNotFound
	}
	clone := *p
	r.projects[p.ID] = &clone
	return nil
}

func (r *fakeRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	if _, ok := r.projects[id]; !ok {
		return false, nil
	}
	delete(r.projects, id)
	return true, nil
}

func (r *fakeRepo) ListByOwner(ctx context.Context, ownerID string, params pagination.Params) ([]project.Project, int64, error) {
	var out []project.Project
	for _, p := range r.projects {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

// fakeProvisioner records resource traffic without touching storage.
type fakeProvisioner struct {
	created    []*resource.Resource
	overwrites []string
}

func (p *fakeProvisioner) Create(ctx context.Context, ownerID string, kind resource.Kind, visibility resource.Visibility, data []byte, contentType string) (*resource.Resource, error) {
	res := &resource.Resource{
		ID:          fmt.Sprintf("res-%d", len(p.created)+1),
		OwnerID:     ownerID,
		Kind:        kind,
		Visibility:  visibility,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}
	p.created = append(p.created, res)
	return res, nil
}

func (p *fakeProvisioner) Overwrite(ctx context.Context, callerID, resourceID string, data []byte, contentType string) (*resource.Resource, error) {
	for _, res := range p.created {
		if res.ID == resourceID {
			if res.OwnerID != callerID {
				return nil, resource.ErrNotResourceOwner
			}
			p.overwrites = append(p.overwrites, resourceID)
			res.SizeBytes = int64(len(data))
			return res, nil
		}
	}
	return nil, resource.ErrResourceNotFound
}

func newTestService(repo *fakeRepo, provisioner *fakeProvisioner) (*project.Service, *fakeTxSession) {
	session := &fakeTxSession{}
	coordinator := txn.NewCoordinator(&fakeTxStore{session: session}, slog.Default())
	return project.NewService(repo, provisioner, coordinator, slog.Default()), session
}

// # Creation

/*
TestCreateProject_ProvisionsCoverAndRow verifies that one creation provisions
the cover resource and the project row referencing it, committed together.
*/
func TestCreateProject_ProvisionsCoverAndRow(t *testing.T) {
	repo := newFakeRepo()
	provisioner := &fakeProvisioner{}
	service, txSession := newTestService(repo, provisioner)

	created, err := service.CreateProject(context.Background(), "alice", project.CreateInput{
		Name:             "Moonrise Workspace",
		Cover:            []byte("png-bytes"),
		CoverContentType: "image/png",
	})

	require.NoError(t, err)
	require.Len(t, provisioner.created, 1)
	require.NotNil(t, created.CoverID)
	assert.Equal(t, provisioner.created[0].ID, *created.CoverID)
	assert.Equal(t, resource.KindCover, provisioner.created[0].Kind)
	assert.True(t, txSession.committed)
}

func TestCreateProject_WithoutCover(t *testing.T) {
	repo := newFakeRepo()
	provisioner := &fakeProvisioner{}
	service, _ := newTestService(repo, provisioner)

	created, err := service.CreateProject(context.Background(), "alice", project.CreateInput{
		Name: "Moonrise Workspace",
	})

	require.NoError(t, err)
	assert.Nil(t, created.CoverID)
	assert.Empty(t, provisioner.created)
}

/*
TestCreateProject_RowFailureRollsBack verifies the shared transaction: a
failing project insert aborts the whole creation, cover metadata included.
*/
func TestCreateProject_RowFailureRollsBack(t *testing.T) {
	repo := newFakeRepo()
	repo.insertErr = assert.AnError
	provisioner := &fakeProvisioner{}
	service, txSession := newTestService(repo, provisioner)

	_, err := service.CreateProject(context.Background(), "alice", project.CreateInput{
		Name:             "Moonrise Workspace",
		Cover:            []byte("png-bytes"),
		CoverContentType: "image/png",
	})

	require.Error(t, err)
	assert.True(t, txSession.rolledBack)
	assert.False(t, txSession.committed)
}

// # Mutation

/*
TestUpdateProject_OverwritesExistingCover verifies that a new cover replaces
the backing resource in place: the project keeps pointing at the same
resource ID.
*/
func TestUpdateProject_OverwritesExistingCover(t *testing.T) {
	repo := newFakeRepo()
	provisioner := &fakeProvisioner{}
	service, _ := newTestService(repo, provisioner)

	created, err := service.CreateProject(context.Background(), "alice", project.CreateInput{
		Name:             "Moonrise Workspace",
		Cover:            []byte("v1"),
		CoverContentType: "image/png",
	})
	require.NoError(t, err)

	updated, err := service.UpdateProject(context.Background(), "alice", created.ID, project.UpdateInput{
		Cover:            []byte("v2"),
		CoverContentType: "image/webp",
	})

	require.NoError(t, err)
	assert.Equal(t, *created.CoverID, *updated.CoverID)
	assert.Equal(t, []string{*created.CoverID}, provisioner.overwrites)
	assert.Len(t, provisioner.created, 1)
}

func TestUpdateProject_NonOwnerForbidden(t *testing.T) {
	repo := newFakeRepo()
	provisioner := &fakeProvisioner{}
	service, _ := newTestService(repo, provisioner)

	created, err := service.CreateProject(context.Background(), "alice", project.CreateInput{
		Name:             "Moonrise Workspace",
		Cover:            []byte("v1"),
		CoverContentType: "image/png",
	})
	require.NoError(t, err)

	name := "Stolen"
	_, err = service.UpdateProject(context.Background(), "mallory", created.ID, project.UpdateInput{
		Name:  &name,
		Cover: []byte("evil"),
	})

	require.ErrorIs(t, err, project.ErrNotProjectOwner)
	assert.Empty(t, provisioner.overwrites)
	assert.Equal(t, "Moonrise Workspace", repo.projects[created.ID].Name)
}

// # Deletion

func TestDeleteProject_OwnerOnly(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo, &fakeProvisioner{})

	created, err := service.CreateProject(context.Background(), "alice", project.CreateInput{Name: "Moonrise Workspace"})
	require.NoError(t, err)

	err = service.DeleteProject(context.Background(), "mallory", created.ID)
	require.ErrorIs(t, err, project.ErrNotProjectOwner)

	require.NoError(t, service.DeleteProject(context.Background(), "alice", created.ID))
	assert.Empty(t, repo.projects)
}
