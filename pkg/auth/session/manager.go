package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/config"
	redisclient "github.com/farmfreshconnect/farmfresh-backend/pkg/redis"
)

// Refresh tokens are opaque 256-bit values; they are never decoded, only compared.
const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type keySpace interface {
	AccessSessionKey(accessID string) string
}

// Manager owns the refresh side of a token pair. Each access token's jti maps
// to exactly one live refresh token in Redis; rotation replaces the mapping
// under a new jti and deletes the old one, so a refresh token is single use.
type Manager struct {
	tokens tokenStore
	keys   keySpace
	ttl    time.Duration
}

// AccessSessionChecker is the read-only view the auth middleware needs.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	refreshTTL := cfg.RefreshTokenTTL()
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute; refreshTTL <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", refreshTTL, accessTTL)
	}
	return &Manager{tokens: client, keys: client, ttl: refreshTTL}, nil
}

// Generate mints a refresh token for accessID and stores it under the session key.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", fmt.Errorf("access id is required")
	}
	token, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	if err := m.tokens.Set(ctx, m.keys.AccessSessionKey(accessID), token, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate exchanges a valid (accessID, refresh token) pair for a fresh one.
// The old mapping is deleted after the new one is written, so a crash between
// the two writes leaves the caller with at least one usable session.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return "", "", ErrInvalidRefreshToken
	}

	oldKey := m.keys.AccessSessionKey(oldAccessID)
	stored, err := m.tokens.Get(ctx, oldKey)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", "", ErrInvalidRefreshToken
		}
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	nextAccessID := NewAccessID()
	nextToken, err := newOpaqueToken()
	if err != nil {
		return "", "", err
	}
	if err := m.tokens.Set(ctx, m.keys.AccessSessionKey(nextAccessID), nextToken, m.ttl); err != nil {
		return "", "", err
	}
	if err := m.tokens.Del(ctx, oldKey); err != nil {
		return "", "", err
	}
	return nextAccessID, nextToken, nil
}

// Revoke drops the refresh mapping for accessID. Revoking an unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.tokens.Del(ctx, m.keys.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still maps to a live refresh token.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.tokens.Get(ctx, m.keys.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewAccessID produces the identifier shared by the JWT jti and the Redis session key.
func NewAccessID() string {
	return uuid.NewString()
}

func newOpaqueToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
