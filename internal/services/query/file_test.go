package query

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/testutil"
)

func TestListNewestFirstAndScoped(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	alice := &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser, IsActive: true}
	bob := &models.User{ID: uuid.New(), Username: "bob", Role: models.RoleUser, IsActive: true}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	for _, name := range []string{"first.mp4", "second.mp4"} {
		require.NoError(t, store.CreateFileRecord(ctx, &models.FileRecord{
			ID: uuid.New(), UserID: alice.ID, StoredFilename: name, OriginalFilename: "orig_" + name,
			FileSize: 10, VideoTitle: "title",
		}))
	}
	require.NoError(t, store.CreateFileRecord(ctx, &models.FileRecord{
		ID: uuid.New(), UserID: bob.ID, StoredFilename: "bob.mp4",
	}))

	files, err := NewFiles(store).List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "second.mp4", files[0].Path)
	assert.Equal(t, "orig_second.mp4", files[0].Name)
	assert.Equal(t, "/files/second.mp4", files[0].DownloadPath)
	assert.Greater(t, files[0].Modified, files[1].Modified)

	empty, err := NewFiles(store).List(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
