//go:build integration

package infrastructure

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

var sharedStore *PostgresStorage

func TestMain(m *testing.M) {
	ctx := context.Background()

	// Postgres logs "ready to accept connections" once during bootstrap and
	// once when it is really up.
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("video_test"),
		postgres.WithUsername("video_test"),
		postgres.WithPassword("video_test"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic(err)
	}

	sharedStore, err = Connect(ctx, connStr, PoolConfig{MinConns: 1, MaxConns: 5}, logger.Discard())
	if err != nil {
		_ = container.Terminate(ctx)
		panic(err)
	}

	code := m.Run()

	_ = sharedStore.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newUser(t *testing.T, role string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Username:     "user-" + uuid.NewString()[:8],
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, sharedStore.CreateUser(context.Background(), u))
	return u
}

func TestCreateUserConflict(t *testing.T) {
	ctx := context.Background()
	u := newUser(t, models.RoleUser)

	dup := &models.User{ID: uuid.New(), Username: u.Username, PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	err := sharedStore.CreateUser(ctx, dup)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	u := newUser(t, models.RoleUser)

	s := &models.Session{UserID: u.ID, Token: uuid.NewString(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sharedStore.CreateSession(ctx, s))
	assert.NotZero(t, s.ID)

	got, owner, err := sharedStore.GetSession(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, u.Username, owner.Username)
	assert.Equal(t, s.ID, got.ID)

	ok, err := sharedStore.DeactivateSessionByToken(ctx, s.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, err = sharedStore.GetSession(ctx, s.Token)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAPIKeyOwnershipOnRevoke(t *testing.T) {
	ctx := context.Background()
	owner := newUser(t, models.RoleUser)
	other := newUser(t, models.RoleUser)

	k := &models.APIKey{UserID: owner.ID, Key: "sk_" + uuid.NewString(), Description: "ci"}
	require.NoError(t, sharedStore.CreateAPIKey(ctx, k))

	ok, err := sharedStore.DeactivateAPIKey(ctx, k.ID, &other.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := sharedStore.CountActiveAPIKeys(ctx, owner.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err = sharedStore.DeactivateAPIKey(ctx, k.ID, &owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	u := newUser(t, models.RoleUser)

	require.NoError(t, sharedStore.CreateSession(ctx, &models.Session{UserID: u.ID, Token: uuid.NewString(), ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, sharedStore.CreateAPIKey(ctx, &models.APIKey{UserID: u.ID, Key: "sk_" + uuid.NewString()}))
	rec := &models.FileRecord{
		ID:               uuid.New(),
		UserID:           u.ID,
		OriginalFilename: "a.mp4",
		StoredFilename:   uuid.NewString() + ".mp4",
		FilePath:         "/downloads/a.mp4",
		MimeType:         "video/mp4",
	}
	require.NoError(t, sharedStore.CreateFileRecord(ctx, rec))

	files, err := sharedStore.DeleteUserWithFiles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, rec.StoredFilename, files[0].StoredFilename)

	keys, err := sharedStore.ListAPIKeys(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)

	remaining, err := sharedStore.ListFileRecords(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestListFileRecordsNewestFirst(t *testing.T) {
	ctx := context.Background()
	u := newUser(t, models.RoleUser)

	for i := 0; i < 3; i++ {
		require.NoError(t, sharedStore.CreateFileRecord(ctx, &models.FileRecord{
			ID:             uuid.New(),
			UserID:         u.ID,
			StoredFilename: uuid.NewString() + ".mp4",
			FilePath:       "/downloads/x.mp4",
			MimeType:       "video/mp4",
		}))
		time.Sleep(5 * time.Millisecond)
	}

	files, err := sharedStore.ListFileRecords(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.True(t, !files[0].CreatedAt.Before(files[1].CreatedAt))
	assert.True(t, !files[1].CreatedAt.Before(files[2].CreatedAt))
}
