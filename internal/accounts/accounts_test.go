package accounts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/mysite/internal/db"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	database, err := db.Init("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	return NewService(database)
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Test", "testb@test.com", "top_secret", false)
	require.NoError(t, err)
	assert.Equal(t, "test", user.Username)
	assert.NotEqual(t, "top_secret", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "TEST", "top_secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "top_secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserRejectsDuplicatesAndBlanks(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice", "", "pw", false)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "Alice", "", "pw2", false)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.CreateUser(ctx, "  ", "", "pw", false)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEnsureModeratorIsIdempotent(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	first, err := svc.EnsureModerator(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.True(t, first.IsModerator)

	second, err := svc.EnsureModerator(ctx, "admin", "another")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.Authenticate(ctx, "admin", "secret")
	assert.NoError(t, err, "the original password is kept")
}
