package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/archive"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/events"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
)

// Archiver mirrors files to object storage.
type Archiver interface {
	Upload(ctx context.Context, localPath, objectName, contentType string) error
	Remove(ctx context.Context, objectName string) error
	RemovePrefix(ctx context.Context, prefix string) (int, error)
}

// Files is the write side of the file registry. The record is the source of
// truth; disk, archive and events follow it best-effort.
type Files struct {
	registry storage.Registry
	local    *storage.Local
	archive  Archiver
	events   events.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Files)

func WithArchiver(a Archiver) Option {
	return func(f *Files) { f.archive = a }
}

func WithPublisher(p events.Publisher) Option {
	return func(f *Files) {
		if p != nil {
			f.events = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Files) { f.logger = logger.Component(l, "files") }
}

func NewFiles(registry storage.Registry, local *storage.Local, opts ...Option) *Files {
	f := &Files{
		registry: registry,
		local:    local,
		events:   events.Nop{},
		logger:   logger.Component(nil, "files"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Record stores a finished download and then mirrors and announces it.
func (f *Files) Record(ctx context.Context, rec *models.FileRecord) error {
	if err := f.registry.CreateFileRecord(ctx, rec); err != nil {
		return models.Persistence(err, "Failed to save file record")
	}

	if f.archive != nil {
		object := archive.ObjectName(rec.UserID, rec.StoredFilename)
		if err := f.archive.Upload(ctx, rec.FilePath, object, rec.MimeType); err != nil {
			f.logger.Warn("archive upload failed", "object", object, "error", err)
		}
	}

	f.publish(ctx, events.SubjectFileDownloaded, models.FileEvent{
		FileID:         rec.ID.String(),
		UserID:         rec.UserID.String(),
		StoredFilename: rec.StoredFilename,
		Size:           rec.FileSize,
		VideoURL:       rec.VideoURL,
		OccurredAt:     f.now().UTC(),
	})
	return nil
}

// Delete removes one of the user's files. A file that does not exist and a
// file owned by someone else are indistinguishable to the caller.
func (f *Files) Delete(ctx context.Context, userID uuid.UUID, storedFilename string) error {
	if storedFilename == "" {
		return models.Validation("file_path is required")
	}

	rec, err := f.registry.GetFileRecord(ctx, userID, storedFilename)
	if errors.Is(err, models.ErrNotFound) {
		return models.NotFound("File not found or unauthorized")
	}
	if err != nil {
		return models.Persistence(err, "Failed to delete file")
	}

	if err := f.registry.DeleteFileRecord(ctx, rec.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NotFound("File not found or unauthorized")
		}
		return models.Persistence(err, "Failed to delete file")
	}

	f.removeLocal(rec)

	if f.archive != nil {
		object := archive.ObjectName(rec.UserID, rec.StoredFilename)
		if err := f.archive.Remove(ctx, object); err != nil {
			f.logger.Warn("archive removal failed", "object", object, "error", err)
		}
	}

	f.publish(ctx, events.SubjectFileDeleted, models.FileEvent{
		FileID:         rec.ID.String(),
		UserID:         rec.UserID.String(),
		StoredFilename: rec.StoredFilename,
		OccurredAt:     f.now().UTC(),
	})
	f.logger.Info("file deleted", "file", rec.StoredFilename, "user_id", userID)
	return nil
}

// DeleteUser removes the user, cascading to their credentials and file
// records, then clears their files from disk and the archive. It returns the
// number of file records removed.
func (f *Files) DeleteUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, models.Validation("Invalid user id")
	}

	files, err := f.registry.DeleteUserWithFiles(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return 0, models.NotFound("User not found")
	}
	if err != nil {
		return 0, models.Persistence(err, "Failed to delete user")
	}

	for i := range files {
		f.removeLocal(&files[i])
	}

	if f.archive != nil {
		prefix := archive.UserPrefix(userID)
		if n, err := f.archive.RemovePrefix(ctx, prefix); err != nil {
			f.logger.Warn("archive cleanup failed", "prefix", prefix, "removed", n, "error", err)
		}
	}

	f.publish(ctx, events.SubjectUserDeleted, models.UserDeletedEvent{
		UserID:       userID.String(),
		FilesRemoved: len(files),
		OccurredAt:   f.now().UTC(),
	})
	f.logger.Info("user deleted", "user_id", userID, "files", len(files))
	return len(files), nil
}

func (f *Files) removeLocal(rec *models.FileRecord) {
	if f.local == nil {
		return
	}
	if err := f.local.Remove(rec.FilePath); err != nil {
		f.logger.Warn("failed to remove file from disk", "path", rec.FilePath, "error", err)
	}
}

func (f *Files) publish(ctx context.Context, subject string, payload any) {
	if err := f.events.Publish(ctx, subject, payload); err != nil {
		f.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
