package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

const fileColumns = `id, user_id, original_filename, stored_filename, file_path, file_size, mime_type, video_title, video_url, created_at`

func scanFileRecord(row interface{ Scan(...any) error }) (*models.FileRecord, error) {
	var f models.FileRecord
	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.OriginalFilename,
		&f.StoredFilename,
		&f.FilePath,
		&f.FileSize,
		&f.MimeType,
		&f.VideoTitle,
		&f.VideoURL,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (p *PostgresStorage) CreateFileRecord(ctx context.Context, f *models.FileRecord) error {
	query := `
  INSERT INTO downloaded_files
      (id, user_id, original_filename, stored_filename, file_path, file_size, mime_type, video_title, video_url)
  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
  RETURNING created_at
  `
	err := p.Db.QueryRowContext(ctx, query,
		f.ID,
		f.UserID,
		f.OriginalFilename,
		f.StoredFilename,
		f.FilePath,
		f.FileSize,
		f.MimeType,
		f.VideoTitle,
		f.VideoURL,
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

// ListFileRecords returns the user's records, newest first.
func (p *PostgresStorage) ListFileRecords(ctx context.Context, userID uuid.UUID) ([]models.FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM downloaded_files WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := p.Db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	defer closeRows(p.logger, rows)

	files := []models.FileRecord{}
	for rows.Next() {
		f, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func (p *PostgresStorage) GetFileRecord(ctx context.Context, userID uuid.UUID, storedFilename string) (*models.FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM downloaded_files WHERE user_id = $1 AND stored_filename = $2`

	f, err := scanFileRecord(p.Db.QueryRowContext(ctx, query, userID, storedFilename))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %q: %w", storedFilename, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get file record: %w", err)
	}
	return f, nil
}

func (p *PostgresStorage) DeleteFileRecord(ctx context.Context, id uuid.UUID) error {
	res, err := p.Db.ExecContext(ctx, `DELETE FROM downloaded_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	return expectRow(res, "file %s", id)
}

// DeleteUserWithFiles collects the user's file paths and deletes the user in
// one transaction, so the returned paths are exactly the rows the cascade
// removed.
func (p *PostgresStorage) DeleteUserWithFiles(ctx context.Context, userID uuid.UUID) ([]models.FileRecord, error) {
	tx, err := p.Db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer rollback(p.logger, tx)

	rows, err := tx.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM downloaded_files WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		return nil, fmt.Errorf("select user files: %w", err)
	}
	files := []models.FileRecord{}
	for rows.Next() {
		f, err := scanFileRecord(rows)
		if err != nil {
			closeRows(p.logger, rows)
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		files = append(files, *f)
	}
	closeRows(p.logger, rows)
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	if err := expectRow(res, "user %s", userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return files, nil
}
