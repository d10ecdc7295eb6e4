package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

func (p *PostgresStorage) CreateAPIKey(ctx context.Context, k *models.APIKey) error {
	query := `
  INSERT INTO api_keys (user_id, api_key, description, expires_at, is_active)
  VALUES ($1, $2, $3, $4, TRUE)
  RETURNING id, created_at
  `
	err := p.Db.QueryRowContext(ctx, query, k.UserID, k.Key, k.Description, k.ExpiresAt).Scan(&k.ID, &k.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("api key: %w", models.ErrConflict)
		}
		return fmt.Errorf("insert api key: %w", err)
	}
	k.IsActive = true
	return nil
}

// GetAPIKey returns an active key together with its owner.
func (p *PostgresStorage) GetAPIKey(ctx context.Context, key string) (*models.APIKey, *models.User, error) {
	query := `
  SELECT k.id, k.user_id, k.api_key, k.description, k.created_at, k.expires_at, k.is_active,
         u.id, u.username, u.password_hash, u.role, u.created_at, u.is_active
  FROM api_keys k
  JOIN users u ON k.user_id = u.id
  WHERE k.api_key = $1 AND k.is_active = TRUE
  `
	var k models.APIKey
	var u models.User
	var expires sql.NullTime
	err := p.Db.QueryRowContext(ctx, query, key).Scan(
		&k.ID, &k.UserID, &k.Key, &k.Description, &k.CreatedAt, &expires, &k.IsActive,
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("api key: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get api key: %w", err)
	}
	if expires.Valid {
		k.ExpiresAt = &expires.Time
	}
	k.Username = u.Username
	return &k, &u, nil
}

func (p *PostgresStorage) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	query := `
  SELECT k.id, k.user_id, u.username, k.api_key, k.description, k.created_at, k.expires_at, k.is_active
  FROM api_keys k
  JOIN users u ON k.user_id = u.id
  WHERE k.user_id = $1
  ORDER BY k.created_at DESC
  `
	return p.queryAPIKeys(ctx, query, userID)
}

func (p *PostgresStorage) ListAllAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	query := `
  SELECT k.id, k.user_id, u.username, k.api_key, k.description, k.created_at, k.expires_at, k.is_active
  FROM api_keys k
  JOIN users u ON k.user_id = u.id
  ORDER BY k.created_at DESC
  `
	return p.queryAPIKeys(ctx, query)
}

func (p *PostgresStorage) queryAPIKeys(ctx context.Context, query string, args ...any) ([]models.APIKey, error) {
	rows, err := p.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer closeRows(p.logger, rows)

	keys := []models.APIKey{}
	for rows.Next() {
		var k models.APIKey
		var expires sql.NullTime
		if err := rows.Scan(&k.ID, &k.UserID, &k.Username, &k.Key, &k.Description, &k.CreatedAt, &expires, &k.IsActive); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		if expires.Valid {
			k.ExpiresAt = &expires.Time
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// DeactivateAPIKey revokes a key. A non-nil owner restricts the update to
// keys belonging to that user.
func (p *PostgresStorage) DeactivateAPIKey(ctx context.Context, id int64, owner *uuid.UUID) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if owner != nil {
		res, err = p.Db.ExecContext(ctx, `UPDATE api_keys SET is_active = FALSE WHERE id = $1 AND user_id = $2`, id, *owner)
	} else {
		res, err = p.Db.ExecContext(ctx, `UPDATE api_keys SET is_active = FALSE WHERE id = $1`, id)
	}
	if err != nil {
		return false, fmt.Errorf("revoke api key: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (p *PostgresStorage) CountActiveAPIKeys(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	query := `
  SELECT COUNT(*) FROM api_keys
  WHERE user_id = $1 AND is_active = TRUE
  AND (expires_at IS NULL OR expires_at > $2)
  `
	var n int
	err := p.Db.QueryRowContext(ctx, query, userID, now).Scan(&n)
	return n, err
}
