package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

const userColumns = `id, username, password_hash, role, created_at, is_active`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.IsActive); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) CreateUser(ctx context.Context, u *models.User) error {
	query := `
  INSERT INTO users (id, username, password_hash, role, is_active)
  VALUES ($1, $2, $3, $4, $5)
  RETURNING created_at
  `
	err := p.Db.QueryRowContext(ctx, query, u.ID, u.Username, u.PasswordHash, u.Role, u.IsActive).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Username, models.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (p *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := p.Db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
	}
	return u, err
}

func (p *PostgresStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.Db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer closeRows(p.logger, rows)

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (p *PostgresStorage) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := p.Db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, models.RoleAdmin).Scan(&n)
	return n, err
}

func (p *PostgresStorage) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := p.Db.ExecContext(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectRow(res, "user %s", id)
}

func (p *PostgresStorage) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := p.Db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return expectRow(res, "user %s", id)
}

func expectRow(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf(format+": %w", append(args, models.ErrNotFound)...)
	}
	return nil
}
