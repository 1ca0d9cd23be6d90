package services

import (
	"context"
	"errors"
	"testing"

	"ahorra/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "Ana", "ana@example.com", "600000001")

	result, err := f.sessions.CheckCredentials(ctx, "nadie@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, CredentialsNotFound, result.Status)

	result, err = f.sessions.CheckCredentials(ctx, "ana@example.com", "wrong-password")
	require.NoError(t, err)
	assert.Equal(t, CredentialsWrongPassword, result.Status)
	_, ok, err := f.sessions.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "a failed login must not open a session")

	result, err = f.sessions.CheckCredentials(ctx, "  ANA@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, CredentialsOK, result.Status)
	assert.Equal(t, ana.ID, result.User.ID)

	current, ok, err := f.sessions.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ana.ID, current.ID)
}

func TestCheckCredentialsAcceptsPlainStoredPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Users().Add(ctx, models.User{Nombre: "Legacy", Correo: "legacy@example.com", PasswordHash: "plain-secret", Cuenta: "1000000000000001"})
	require.NoError(t, err)

	result, err := f.sessions.CheckCredentials(ctx, "legacy@example.com", "plain-secret")
	require.NoError(t, err)
	assert.Equal(t, CredentialsOK, result.Status)
}

func TestGetCurrentUserAfterLogoutDoesNotReadoptSingleUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Ana", "ana@example.com", "600000001")
	f.login(t, "ana@example.com")

	f.sessions.Logout(ctx)

	users, err := f.store.Users().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1, "exactly one user exists")
	_, ok, err := f.sessions.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "logout must require a fresh login even with a single user")
}

func TestGetCurrentUserIgnoresDanglingPointer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Ana", "ana@example.com", "600000001")
	require.NoError(t, NewSessionStore(f.store.Meta()).SetCurrent(ctx, "gone@example.com"))

	_, ok, err := f.sessions.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Logout(ctx)
	f.sessions.Logout(ctx)
	_, ok, err := NewSessionStore(f.store.Meta()).GetCurrent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutSwallowsStorageErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sessions := NewSessionStore(stubMeta{
		deleteFn: func(context.Context, string) error { return errors.New("disk full") },
	})
	service := NewSessionService(nil, sessions, logger)

	service.Logout(context.Background())

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRequireCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "Ana", "ana@example.com", "600000001")
	luis := f.register(t, "Luis", "luis@example.com", "600000002")

	_, err := f.sessions.RequireCurrent(ctx, ana.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	f.login(t, "ana@example.com")
	user, err := f.sessions.RequireCurrent(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Nombre)
	_, err = f.sessions.RequireCurrent(ctx, luis.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
