package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

func (p *PostgresStorage) CreateSession(ctx context.Context, s *models.Session) error {
	query := `
  INSERT INTO sessions (user_id, session_token, expires_at, is_active)
  VALUES ($1, $2, $3, TRUE)
  RETURNING id, created_at
  `
	if err := p.Db.QueryRowContext(ctx, query, s.UserID, s.Token, s.ExpiresAt).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	s.IsActive = true
	return nil
}

// GetSession returns an active session together with its owner.
func (p *PostgresStorage) GetSession(ctx context.Context, token string) (*models.Session, *models.User, error) {
	query := `
  SELECT s.id, s.user_id, s.session_token, s.created_at, s.expires_at, s.is_active,
         u.id, u.username, u.password_hash, u.role, u.created_at, u.is_active
  FROM sessions s
  JOIN users u ON s.user_id = u.id
  WHERE s.session_token = $1 AND s.is_active = TRUE
  `
	var s models.Session
	var u models.User
	err := p.Db.QueryRowContext(ctx, query, token).Scan(
		&s.ID, &s.UserID, &s.Token, &s.CreatedAt, &s.ExpiresAt, &s.IsActive,
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("session: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	return &s, &u, nil
}

func (p *PostgresStorage) DeactivateSession(ctx context.Context, id int64) error {
	_, err := p.Db.ExecContext(ctx, `UPDATE sessions SET is_active = FALSE WHERE id = $1`, id)
	return err
}

// DeactivateSessionByToken reports whether a session row matched the token.
func (p *PostgresStorage) DeactivateSessionByToken(ctx context.Context, token string) (bool, error) {
	res, err := p.Db.ExecContext(ctx, `UPDATE sessions SET is_active = FALSE WHERE session_token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("invalidate session: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
