package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

// Registry is the persistence contract for file records. The Postgres store
// implements it.
type Registry interface {
	CreateFileRecord(ctx context.Context, f *models.FileRecord) error
	ListFileRecords(ctx context.Context, userID uuid.UUID) ([]models.FileRecord, error)
	GetFileRecord(ctx context.Context, userID uuid.UUID, storedFilename string) (*models.FileRecord, error)
	DeleteFileRecord(ctx context.Context, id uuid.UUID) error
	DeleteUserWithFiles(ctx context.Context, userID uuid.UUID) ([]models.FileRecord, error)
}
