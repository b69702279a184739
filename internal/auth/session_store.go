package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"storefront/internal/cache"
	"storefront/internal/model"
)

const (
	sessionKeyPrefix   = "session:"
	blacklistKeyPrefix = "blacklist:token:"
	userSessionsPrefix = "user-sessions:"
	userRevokedPrefix  = "user-revoked:"
	sessionIDBytes     = 32
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// SessionStoreInterface defines the interface for session storage operations.
type SessionStoreInterface interface {
	Create(ctx context.Context, user model.SessionUser) (string, error)
	Get(ctx context.Context, sessionID string) (*model.SessionUser, error)
	Destroy(ctx context.Context, sessionID string) error
	BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
	// RevokeUser ends every session of the user and invalidates bearer
	// tokens issued up to now.
	RevokeUser(ctx context.Context, userID uuid.UUID) error
	// RevokedAt returns when the user's credentials were last revoked, or
	// the zero time.
	RevokedAt(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

// SessionStore keeps sessions and revoked token ids in Redis.
type SessionStore struct {
	cache    *cache.Client
	ttl      time.Duration
	tokenTTL time.Duration
	now      func() time.Time
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithTokenExpiry sets how long a user revocation must outlive the
// revocation itself: the lifetime of the bearer tokens it invalidates.
func WithTokenExpiry(d time.Duration) SessionOption {
	return func(s *SessionStore) {
		if d > 0 {
			s.tokenTTL = d
		}
	}
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store. Sessions expire ttl after
// creation regardless of activity.
func NewSessionStore(cache *cache.Client, ttl time.Duration, opts ...SessionOption) *SessionStore {
	s := &SessionStore{cache: cache, ttl: ttl, tokenTTL: DefaultTokenExpiry, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the absolute session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create stores user under a fresh random id and returns the id.
func (s *SessionStore) Create(ctx context.Context, user model.SessionUser) (string, error) {
	id, err := generateSessionID()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+id, payload, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := s.cache.AddToSet(ctx, userSessionsPrefix+user.ID.String(), id, s.ttl); err != nil {
		return "", fmt.Errorf("index session: %w", err)
	}
	return id, nil
}

// Get loads the identity stored under sessionID.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*model.SessionUser, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	data, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrSessionNotFound
	}

	var user model.SessionUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &user, nil
}

// Destroy removes a session. Unknown ids are not an error.
func (s *SessionStore) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	user, err := s.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	if err := s.cache.Delete(ctx, sessionKeyPrefix+sessionID); err != nil {
		return err
	}
	if user != nil {
		return s.cache.RemoveFromSet(ctx, userSessionsPrefix+user.ID.String(), sessionID)
	}
	return nil
}

func (s *SessionStore) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	indexKey := userSessionsPrefix + userID.String()
	ids, err := s.cache.SetMembers(ctx, indexKey)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKeyPrefix+id)
	}
	keys = append(keys, indexKey)
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return err
	}

	stamp := strconv.FormatInt(s.now().Unix(), 10)
	return s.cache.Set(ctx, userRevokedPrefix+userID.String(), []byte(stamp), s.tokenTTL)
}

func (s *SessionStore) RevokedAt(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	data, err := s.cache.Get(ctx, userRevokedPrefix+userID.String())
	if err != nil || data == nil {
		return time.Time{}, err
	}
	sec, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse revocation time: %w", err)
	}
	return time.Unix(sec, 0), nil
}

// BlacklistToken revokes a bearer token id until it would have expired.
func (s *SessionStore) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, blacklistKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsTokenBlacklisted reports whether tokenID was revoked.
func (s *SessionStore) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.Exists(ctx, blacklistKeyPrefix+tokenID)
}

func generateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
