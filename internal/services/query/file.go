package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
)

// Files is the read side of the file registry.
type Files struct {
	registry storage.Registry
}

func NewFiles(registry storage.Registry) *Files {
	return &Files{registry: registry}
}

// List returns the user's downloads, newest first.
func (f *Files) List(ctx context.Context, userID uuid.UUID) ([]models.FileView, error) {
	records, err := f.registry.ListFileRecords(ctx, userID)
	if err != nil {
		return nil, models.Persistence(err, "Failed to list files")
	}
	views := make([]models.FileView, 0, len(records))
	for i := range records {
		views = append(views, records[i].View())
	}
	return views, nil
}
