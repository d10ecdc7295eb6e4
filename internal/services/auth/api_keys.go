package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

// isExpired reports whether a credential with the given expiry is past it.
// Sessions and API keys both stop working at the expiry instant.
func isExpired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && !now.Before(*expiresAt)
}

// GenerateAPIKey issues a new key for userID. A nil expiresDays means the key
// never expires and zero yields a key that is already expired. A negative
// count is rejected.
func (s *Service) GenerateAPIKey(ctx context.Context, userID uuid.UUID, description string, expiresDays *int) (string, error) {
	if expiresDays != nil && *expiresDays < 0 {
		return "", models.Validation("expires_days must not be negative")
	}

	key, err := newAPIKey()
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}

	k := &models.APIKey{
		UserID:      userID,
		Key:         key,
		Description: description,
	}
	if expiresDays != nil {
		at := s.now().UTC().Add(time.Duration(*expiresDays) * 24 * time.Hour)
		k.ExpiresAt = &at
	}

	if err := s.store.CreateAPIKey(ctx, k); err != nil {
		return "", models.Persistence(err, "Failed to create API key")
	}
	s.logger.Info("generated api key", "user_id", userID, "key_id", k.ID)
	return key, nil
}

// ValidateAPIKey resolves a key to its owner's identity. Revoked, expired and
// disabled-owner keys all miss.
func (s *Service) ValidateAPIKey(ctx context.Context, key string) (*models.Identity, bool) {
	if key == "" {
		return nil, false
	}
	k, owner, err := s.store.GetAPIKey(ctx, key)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("api key lookup failed", "error", err)
		}
		return nil, false
	}
	if !k.IsActive || !owner.IsActive || isExpired(k.ExpiresAt, s.now()) {
		return nil, false
	}
	return owner.Identity(), true
}

// RevokeAPIKey revokes a key owned by ownerID.
func (s *Service) RevokeAPIKey(ctx context.Context, keyID int64, ownerID uuid.UUID) error {
	ok, err := s.store.DeactivateAPIKey(ctx, keyID, &ownerID)
	if err != nil {
		return models.Persistence(err, "Failed to revoke API key")
	}
	if !ok {
		return models.NotFound("API key not found or unauthorized")
	}
	s.logger.Info("revoked api key", "key_id", keyID, "user_id", ownerID)
	return nil
}

// RevokeAnyAPIKey is the admin path and ignores ownership.
func (s *Service) RevokeAnyAPIKey(ctx context.Context, keyID int64) error {
	ok, err := s.store.DeactivateAPIKey(ctx, keyID, nil)
	if err != nil {
		return models.Persistence(err, "Failed to revoke API key")
	}
	if !ok {
		return models.NotFound("API key not found")
	}
	s.logger.Info("revoked api key", "key_id", keyID, "admin", true)
	return nil
}

func (s *Service) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]models.APIKeyView, error) {
	keys, err := s.store.ListAPIKeys(ctx, userID)
	if err != nil {
		return nil, models.Persistence(err, "Failed to list API keys")
	}
	return s.views(keys, false), nil
}

func (s *Service) ListAllAPIKeys(ctx context.Context) ([]models.APIKeyView, error) {
	keys, err := s.store.ListAllAPIKeys(ctx)
	if err != nil {
		return nil, models.Persistence(err, "Failed to list API keys")
	}
	return s.views(keys, true), nil
}

func (s *Service) views(keys []models.APIKey, withOwner bool) []models.APIKeyView {
	now := s.now()
	out := make([]models.APIKeyView, 0, len(keys))
	for _, k := range keys {
		v := models.APIKeyView{
			ID:          k.ID,
			APIKey:      MaskKey(k.Key),
			Description: k.Description,
			CreatedAt:   k.CreatedAt,
			ExpiresAt:   k.ExpiresAt,
			IsActive:    k.IsActive,
			IsExpired:   isExpired(k.ExpiresAt, now),
		}
		if withOwner {
			v.Username = k.Username
		}
		out = append(out, v)
	}
	return out
}

// HasActiveAPIKey reports whether userID holds at least one usable key.
func (s *Service) HasActiveAPIKey(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := s.store.CountActiveAPIKeys(ctx, userID, s.now())
	if err != nil {
		return false, models.Persistence(err, "Failed to check API key status")
	}
	return n > 0, nil
}
