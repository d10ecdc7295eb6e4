// Package testutil holds in-memory doubles shared by package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

// ErrForeignKey mimics the database rejecting a row whose user is missing.
var ErrForeignKey = errors.New("violates foreign key constraint")

// MemStore is an in-memory stand-in for the Postgres store with the same
// uniqueness, foreign key and cascade behaviour.
type MemStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	sessions map[int64]*models.Session
	keys     map[int64]*models.APIKey
	files    map[uuid.UUID]*models.FileRecord
	nextID   int64
	tick     time.Time

	// FailFileInsert makes CreateFileRecord fail, for persistence tests.
	FailFileInsert error
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    map[uuid.UUID]*models.User{},
		sessions: map[int64]*models.Session{},
		keys:     map[int64]*models.APIKey{},
		files:    map[uuid.UUID]*models.FileRecord{},
		tick:     time.Now().UTC(),
	}
}

// stamp returns strictly increasing creation times.
func (m *MemStore) stamp() time.Time {
	m.tick = m.tick.Add(time.Millisecond)
	return m.tick
}

func (m *MemStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return fmt.Errorf("user %q: %w", u.Username, models.ErrConflict)
		}
	}
	u.CreatedAt = m.stamp()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
}

func (m *MemStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) CountAdmins(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if u.Role == models.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) SetUserActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	u.IsActive = active
	return nil
}

func (m *MemStore) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	u.PasswordHash = hash
	return nil
}

func (m *MemStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[s.UserID]; !ok {
		return ErrForeignKey
	}
	s.ID = m.id()
	s.CreatedAt = m.stamp()
	s.IsActive = true
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemStore) GetSession(_ context.Context, token string) (*models.Session, *models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Token == token && s.IsActive {
			sc, uc := *s, *m.users[s.UserID]
			return &sc, &uc, nil
		}
	}
	return nil, nil, fmt.Errorf("session: %w", models.ErrNotFound)
}

func (m *MemStore) DeactivateSession(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.IsActive = false
	}
	return nil
}

func (m *MemStore) DeactivateSessionByToken(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Token == token {
			s.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

// SessionActive reports the stored is_active flag of the session with token.
func (m *MemStore) SessionActive(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Token == token {
			return s.IsActive
		}
	}
	return false
}

func (m *MemStore) CreateAPIKey(_ context.Context, k *models.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[k.UserID]
	if !ok {
		return ErrForeignKey
	}
	k.ID = m.id()
	k.CreatedAt = m.stamp()
	k.IsActive = true
	k.Username = u.Username
	cp := *k
	m.keys[k.ID] = &cp
	return nil
}

func (m *MemStore) GetAPIKey(_ context.Context, key string) (*models.APIKey, *models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.Key == key && k.IsActive {
			kc, uc := *k, *m.users[k.UserID]
			return &kc, &uc, nil
		}
	}
	return nil, nil, fmt.Errorf("api key: %w", models.ErrNotFound)
}

func (m *MemStore) ListAPIKeys(_ context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	return m.listKeys(func(k *models.APIKey) bool { return k.UserID == userID }), nil
}

func (m *MemStore) ListAllAPIKeys(_ context.Context) ([]models.APIKey, error) {
	return m.listKeys(func(*models.APIKey) bool { return true }), nil
}

func (m *MemStore) listKeys(keep func(*models.APIKey) bool) []models.APIKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.APIKey{}
	for _, k := range m.keys {
		if keep(k) {
			out = append(out, *k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemStore) DeactivateAPIKey(_ context.Context, id int64, owner *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok || (owner != nil && k.UserID != *owner) {
		return false, nil
	}
	k.IsActive = false
	return true, nil
}

func (m *MemStore) CountActiveAPIKeys(_ context.Context, userID uuid.UUID, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.keys {
		if k.UserID == userID && k.IsActive && (k.ExpiresAt == nil || k.ExpiresAt.After(now)) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) CreateFileRecord(_ context.Context, f *models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFileInsert != nil {
		return m.FailFileInsert
	}
	if _, ok := m.users[f.UserID]; !ok {
		return ErrForeignKey
	}
	f.CreatedAt = m.stamp()
	cp := *f
	m.files[f.ID] = &cp
	return nil
}

func (m *MemStore) ListFileRecords(_ context.Context, userID uuid.UUID) ([]models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FileRecord{}
	for _, f := range m.files {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) GetFileRecord(_ context.Context, userID uuid.UUID, storedFilename string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.UserID == userID && f.StoredFilename == storedFilename {
			cp := *f
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("file %q: %w", storedFilename, models.ErrNotFound)
}

func (m *MemStore) DeleteFileRecord(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, models.ErrNotFound)
	}
	delete(m.files, id)
	return nil
}

func (m *MemStore) DeleteUserWithFiles(_ context.Context, userID uuid.UUID) ([]models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	files := []models.FileRecord{}
	for id, f := range m.files {
		if f.UserID == userID {
			files = append(files, *f)
			delete(m.files, id)
		}
	}
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	for id, k := range m.keys {
		if k.UserID == userID {
			delete(m.keys, id)
		}
	}
	delete(m.users, userID)
	return files, nil
}

// FileCount returns the number of stored file records.
func (m *MemStore) FileCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
