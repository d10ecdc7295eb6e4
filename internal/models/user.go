package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	IsActive     bool      `json:"is_active"`
}

type Session struct {
	ID        int64
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsActive  bool
}

type APIKey struct {
	ID          int64
	UserID      uuid.UUID
	Username    string
	Key         string
	Description string
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	IsActive    bool
}

// APIKeyView is the listing shape; APIKey holds the masked value only.
type APIKeyView struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username,omitempty"`
	APIKey      string     `json:"api_key"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	IsActive    bool       `json:"is_active"`
	IsExpired   bool       `json:"is_expired"`
}

// Identity is what the request gate attaches to an authenticated request.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}

// LegacyIdentity is the synthetic admin granted to holders of the shared
// secret. It has no backing user row.
func LegacyIdentity() *Identity {
	return &Identity{ID: uuid.Nil, Username: "legacy", Role: RoleAdmin}
}
