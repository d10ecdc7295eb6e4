package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

const (
	MinPasswordLength = 8
	DefaultSessionTTL = 24 * time.Hour
)

// Service manages users, sessions and API keys.
type Service struct {
	store      Store
	hasher     *PasswordHasher
	sessionTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger

	// dummyHash is compared against when there is no bcrypt hash to check,
	// so every failed login costs one bcrypt comparison.
	dummyHash string
}

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.hasher = NewPasswordHasher(cost) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = logger.Component(l, "auth") }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		hasher:     NewPasswordHasher(DefaultBcryptCost),
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		logger:     logger.Component(nil, "auth"),
	}
	for _, opt := range opts {
		opt(s)
	}

	h, err := s.hasher.Hash("timing-equalisation-password")
	if err != nil {
		s.logger.Error("failed to build dummy hash", "error", err)
	}
	s.dummyHash = h
	return s
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return models.Validation("Password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return models.Validation("Password must be at most %d bytes long", MaxPasswordBytes)
	}
	return nil
}

// CreateUser registers a new active user and returns a confirmation message.
func (s *Service) CreateUser(ctx context.Context, username, password, role string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", models.Validation("Username is required")
	}
	if !models.ValidRole(role) {
		return "", models.Validation("Invalid role. Must be 'admin' or 'user'")
	}
	if err := validatePassword(password); err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return "", models.Conflict("Username %s already exists", username)
		}
		return "", models.Persistence(err, "Failed to create user")
	}

	s.logger.Info("created user", "username", username, "role", role)
	return fmt.Sprintf("User %s created successfully", username), nil
}

// Authenticate checks credentials of an active user. Unknown users, disabled
// users and wrong passwords all cost one bcrypt comparison and return the
// same result.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Identity, bool) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("authenticate lookup failed", "error", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		return nil, false
	}

	legacy := IsLegacyHash(u.PasswordHash)
	if legacy {
		s.hasher.Verify(password, s.dummyHash)
	}
	ok := s.hasher.Verify(password, u.PasswordHash)
	if !ok || !u.IsActive {
		return nil, false
	}
	if legacy {
		s.upgradeHash(ctx, u, password)
	}
	return u.Identity(), true
}

// upgradeHash replaces a legacy hash with bcrypt after a successful login.
// Failure leaves the legacy hash in place.
func (s *Service) upgradeHash(ctx context.Context, u *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("failed to rehash legacy password", "user_id", u.ID, "error", err)
		return
	}
	if err := s.store.SetPasswordHash(ctx, u.ID, hash); err != nil {
		s.logger.Warn("failed to store upgraded password hash", "user_id", u.ID, "error", err)
		return
	}
	s.logger.Info("upgraded legacy password hash", "user_id", u.ID)
}

// CreateSession issues a session token valid for ttl, or the configured
// default when ttl is zero.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.sessionTTL
	}
	token, err := newSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	sess := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().UTC().Add(ttl),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", models.Persistence(err, "Failed to create session")
	}
	s.logger.Info("created session", "user_id", userID)
	return token, nil
}

// ValidateSession resolves a session token. An expired session is marked
// inactive the first time it is seen; later calls simply miss.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.Identity, bool) {
	if token == "" {
		return nil, false
	}
	sess, owner, err := s.store.GetSession(ctx, token)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("session lookup failed", "error", err)
		}
		return nil, false
	}

	if isExpired(&sess.ExpiresAt, s.now()) {
		if err := s.store.DeactivateSession(ctx, sess.ID); err != nil {
			s.logger.Warn("failed to deactivate expired session", "session_id", sess.ID, "error", err)
		}
		return nil, false
	}
	if !owner.IsActive {
		return nil, false
	}
	return owner.Identity(), true
}

// InvalidateSession marks the session inactive. Repeating it is harmless.
func (s *Service) InvalidateSession(ctx context.Context, token string) bool {
	ok, err := s.store.DeactivateSessionByToken(ctx, token)
	if err != nil {
		s.logger.Error("invalidate session failed", "error", err)
		return false
	}
	return ok
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NotFound("User %s not found", username)
		}
		return nil, models.Persistence(err, "Failed to look up user")
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, models.Persistence(err, "Failed to list users")
	}
	return users, nil
}

// SetUserActive enables or soft-disables a user. Disabled users keep their
// rows but every credential they own stops validating.
func (s *Service) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.store.SetUserActive(ctx, id, active); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NotFound("User not found")
		}
		return models.Persistence(err, "Failed to update user")
	}
	s.logger.Info("updated user status", "user_id", id, "is_active", active)
	return nil
}

// EnsureAdmin creates the bootstrap admin when no admin exists yet. Empty
// credentials skip the bootstrap.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.logger.Info("ADMIN_USERNAME or ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	if err := validatePassword(password); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}

	n, err := s.store.CountAdmins(ctx)
	if err != nil {
		return models.Persistence(err, "Failed to count admins")
	}
	if n > 0 {
		s.logger.Info("admin user already present", "count", n)
		return nil
	}

	if _, err := s.CreateUser(ctx, username, password, models.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("created bootstrap admin", "username", username)
	return nil
}
