// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/sec"
	"github.com/huyndq/comicbox/internal/platform/txn"
	"github.com/huyndq/comicbox/internal/users/auth"
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

// fakeUserRepo is an in-memory UserRepository that records write order.
type fakeUserRepo struct {
	byUsername map[string]*auth.User
	byEmail    map[string]*auth.User

	accounts    []string
	credentials []string
	followStats []string

	credentialErr error
	followStatErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byUsername: map[string]*auth.User{},
		byEmail:    map[string]*auth.User{},
	}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	for _, u := range r.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found with this email")
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if u, ok := r.byUsername[username]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found with this username")
}

func (r *fakeUserRepo) CreateAccount(ctx context.Context, user *auth.User) error {
	if _, ok := r.byUsername[user.Username]; ok {
		return auth.ErrUserAlreadyExists
	}
	r.byUsername[user.Username] = user
	r.accounts = append(r.accounts, user.ID)
	return nil
}

func (r *fakeUserRepo) CreateCredential(ctx context.Context, user *auth.User) error {
	if r.credentialErr != nil {
		return r.credentialErr
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return auth.ErrEmailAlreadyUsed
	}
	r.byEmail[user.Email] = user
	r.credentials = append(r.credentials, user.ID)
	return nil
}

func (r *fakeUserRepo) InitFollowStat(ctx context.Context, userID string) error {
	if r.followStatErr != nil {
		return r.followStatErr
	}
	r.followStats = append(r.followStats, userID)
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(ctx context.Context, userID string) error {
	return nil
}

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	sessions map[string]*auth.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*auth.Session{}}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *auth.Session) error {
	r.sessions[session.TokenHash] = session
	return nil
}

func (r *fakeSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	if s, ok := r.sessions[tokenHash]; ok {
		return s, nil
	}
	return nil, apperr.NotFound("Session is invalid or expired")
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, tokenHash string) error {
	delete(r.sessions, tokenHash)
	return nil
}

func (r *fakeSessionRepo) RevokeAll(ctx context.Context, userID string) error {
	for hash, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

type fakeTokenProvider struct{}

func (p *fakeTokenProvider) GenerateAccessToken(userID, username, role string, ttl time.Duration) (string, error) {
	return "signed." + userID, nil
}

// # Fixtures

func newTestService(repo *fakeUserRepo, sessions *fakeSessionRepo) (*auth.Service, *fakeTxSession) {
	session := &fakeTxSession{}
	coordinator := txn.NewCoordinator(&fakeTxStore{session: session}, slog.Default())
	service := auth.NewService(repo, sessions, &fakeTokenProvider{}, coordinator)
	return service, session
}

func validRegisterInput() auth.RegisterInput {
	return auth.RegisterInput{
		Username:    "huy_ndq",
		Email:       "huy@comicbox.app",
		Password:    "correct-horse-battery",
		DisplayName: "Huy",
	}
}

// # Registration

/*
TestRegister_ProvisionsFullIdentity verifies that a successful registration
creates the account, credential, and follow counter rows and commits.
*/
func TestRegister_ProvisionsFullIdentity(t *testing.T) {
	repo := newFakeUserRepo()
	service, txSession := newTestService(repo, newFakeSessionRepo())

	user, err := service.Register(context.Background(), validRegisterInput())

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash, "password must be hashed")

	// All three identity rows share the same owner.
	assert.Equal(t, []string{user.ID}, repo.accounts)
	assert.Equal(t, []string{user.ID}, repo.credentials)
	assert.Equal(t, []string{user.ID}, repo.followStats)

	assert.True(t, txSession.committed)
	assert.False(t, txSession.rolledBack)
}

/*
TestRegister_DuplicateUsername verifies the idempotency guard: a taken
username aborts the transaction with a conflict and writes nothing.
*/
func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	repo.byUsername["huy_ndq"] = &auth.User{ID: "existing", Username: "huy_ndq"}

	service, txSession := newTestService(repo, newFakeSessionRepo())

	user, err := service.Register(context.Background(), validRegisterInput())

	require.ErrorIs(t, err, auth.ErrUserAlreadyExists)
	assert.Nil(t, user)
	assert.Empty(t, repo.accounts)
	assert.True(t, txSession.rolledBack)
	assert.False(t, txSession.committed)
}

/*
TestRegister_RollsBackOnPartialFailure verifies atomicity: if the follow
counter provisioning fails, the registration fails as a whole.
*/
func TestRegister_RollsBackOnPartialFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.followStatErr = errors.New("disk full")

	service, txSession := newTestService(repo, newFakeSessionRepo())

	user, err := service.Register(context.Background(), validRegisterInput())

	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, txSession.rolledBack)
	assert.False(t, txSession.committed)
}

// # Authentication

func registeredService(t *testing.T) (*auth.Service, *fakeUserRepo, *fakeSessionRepo) {
	t.Helper()

	repo := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	service, _ := newTestService(repo, sessions)

	_, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	return service, repo, sessions
}

func TestLogin_WithUsernameAndEmail(t *testing.T) {
	service, _, sessions := registeredService(t)

	tests := []struct {
		name  string
		login string
	}{
		{"by_username", "huy_ndq"},
		{"by_email", "huy@comicbox.app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := service.Login(context.Background(), auth.LoginInput{
				Login:    tt.login,
				Password: "correct-horse-battery",
			})

			require.NoError(t, err)
			assert.NotEmpty(t, session.AccessToken)
			assert.NotEmpty(t, session.RefreshToken)
		})
	}

	// Each login established a tracked session.
	assert.Len(t, sessions.sessions, 2)
}

func TestLogin_WrongPassword(t *testing.T) {
	service, _, _ := registeredService(t)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "huy_ndq",
		Password: "wrong-password",
	})

	require.Error(t, err)
	assert.Nil(t, session)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 401, ae.HTTPStatus)
}

func TestRefreshSession_RotatesToken(t *testing.T) {
	service, _, sessions := registeredService(t)

	login, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "huy_ndq",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	rotated, err := service.RefreshSession(context.Background(), login.RefreshToken, "ua", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The old token must be unusable after rotation (replay mitigation).
	_, err = service.RefreshSession(context.Background(), login.RefreshToken, "ua", "127.0.0.1")
	require.Error(t, err)

	// Exactly one live session remains.
	assert.Len(t, sessions.sessions, 1)
}

func TestLogout_IsIdempotent(t *testing.T) {
	service, _, sessions := registeredService(t)

	login, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "huy_ndq",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), login.RefreshToken))
	assert.Empty(t, sessions.sessions)

	// A second logout with the same token is still a success.
	require.NoError(t, service.Logout(context.Background(), login.RefreshToken))
}
