package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

// Store is the persistence the auth service needs. Lookups that miss return
// an error wrapping models.ErrNotFound; duplicate usernames wrap
// models.ErrConflict.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountAdmins(ctx context.Context) (int, error)
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) error
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, *models.User, error)
	DeactivateSession(ctx context.Context, id int64) error
	DeactivateSessionByToken(ctx context.Context, token string) (bool, error)

	CreateAPIKey(ctx context.Context, k *models.APIKey) error
	GetAPIKey(ctx context.Context, key string) (*models.APIKey, *models.User, error)
	ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error)
	ListAllAPIKeys(ctx context.Context) ([]models.APIKey, error)
	DeactivateAPIKey(ctx context.Context, id int64, owner *uuid.UUID) (bool, error)
	CountActiveAPIKeys(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}
