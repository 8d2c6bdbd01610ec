package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sakubijak/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	revokedTokenKeyPrefix = "revoked:access_token:"
)

// ErrRefreshTokenNotFound is returned when a refresh token is unknown or expired.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// TokenStore keeps refresh-token registrations and revoked access-token IDs.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uint, email string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	RevokeAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenRevoked(ctx context.Context, tokenID string) bool
}

// RedisTokenStore stores tokens in Redis through the fail-safe cache client.
type RedisTokenStore struct {
	cache *cache.Client
}

var _ TokenStore = (*RedisTokenStore)(nil)

// NewTokenStore creates a token store. A disabled cache yields a store that
// never finds a refresh token and never reports a revocation.
func NewTokenStore(cache *cache.Client) *RedisTokenStore {
	return &RedisTokenStore{cache: cache}
}

type refreshTokenRecord struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

// StoreRefreshToken registers a refresh token until ttl elapses.
func (s *RedisTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenRecord{UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}
	return s.cache.Set(ctx, refreshTokenKeyPrefix+tokenID, payload, ttl)
}

// GetRefreshToken returns the identity a refresh token was issued to.
func (s *RedisTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	data, err := s.cache.Get(ctx, refreshTokenKeyPrefix+tokenID)
	if err != nil || data == nil {
		return 0, "", ErrRefreshTokenNotFound
	}

	var record refreshTokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return 0, "", fmt.Errorf("unmarshal token data: %w", err)
	}
	if record.UserID == 0 {
		return 0, "", ErrRefreshTokenNotFound
	}
	return record.UserID, record.Email, nil
}

// DeleteRefreshToken removes a refresh token registration.
func (s *RedisTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}

// RevokeAccessToken marks an access token as revoked for the rest of its life.
func (s *RedisTokenStore) RevokeAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenRevoked reports whether tokenID was revoked. Cache failures
// read as "not revoked".
func (s *RedisTokenStore) IsAccessTokenRevoked(ctx context.Context, tokenID string) bool {
	if tokenID == "" {
		return false
	}
	data, _ := s.cache.Get(ctx, revokedTokenKeyPrefix+tokenID)
	return data != nil
}
