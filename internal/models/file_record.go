package models

import (
	"time"

	"github.com/google/uuid"
)

type FileRecord struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	VideoTitle       string    `json:"video_title"`
	VideoURL         string    `json:"video_url"`
	CreatedAt        time.Time `json:"created_at"`
}

// FileView is the shape returned by the file listing.
type FileView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Path         string  `json:"path"`
	Size         int64   `json:"size"`
	Modified     float64 `json:"modified"`
	DownloadPath string  `json:"download_path"`
	Title        string  `json:"title"`
}

func (f *FileRecord) View() FileView {
	var modified float64
	if !f.CreatedAt.IsZero() {
		modified = float64(f.CreatedAt.UnixMilli()) / 1000
	}
	return FileView{
		ID:           f.ID.String(),
		Name:         f.OriginalFilename,
		Path:         f.StoredFilename,
		Size:         f.FileSize,
		Modified:     modified,
		DownloadPath: "/files/" + f.StoredFilename,
		Title:        f.VideoTitle,
	}
}

// FileEvent is published on files.downloaded and files.deleted.
type FileEvent struct {
	FileID         string    `json:"file_id"`
	UserID         string    `json:"user_id"`
	StoredFilename string    `json:"stored_filename"`
	Size           int64     `json:"size,omitempty"`
	VideoURL       string    `json:"video_url,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type UserDeletedEvent struct {
	UserID       string    `json:"user_id"`
	FilesRemoved int       `json:"files_removed"`
	OccurredAt   time.Time `json:"occurred_at"`
}
