package archive

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestObjectNames(t *testing.T) {
	id := uuid.MustParse("6f1c1e9a-0000-4000-8000-000000000001")

	assert.Equal(t, "6f1c1e9a-0000-4000-8000-000000000001/abc.mp4", ObjectName(id, "abc.mp4"))
	assert.Equal(t, "6f1c1e9a-0000-4000-8000-000000000001/", UserPrefix(id))
}

func TestNilArchive(t *testing.T) {
	var a *Archive
	ctx := context.Background()

	assert.ErrorIs(t, a.CheckConnection(ctx), ErrNotInitialized)
	assert.ErrorIs(t, a.Upload(ctx, "/tmp/x", "o", "video/mp4"), ErrNotInitialized)
	assert.ErrorIs(t, a.Remove(ctx, "o"), ErrNotInitialized)
	_, err := a.RemovePrefix(ctx, "p/")
	assert.ErrorIs(t, err, ErrNotInitialized)
}
