package session

import (
	"context"
	"errors"
	"time"

	"github.com/whisperwall/whisperwall/internal/dependencies/clock"
	"github.com/whisperwall/whisperwall/internal/dependencies/random"
	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/storage"
)

// ErrSessionInvalid is returned when a token is unknown, expired, or no
// longer resolves to a user. Callers treat it as "anonymous", never as a
// fatal error.
var ErrSessionInvalid = errors.New("invalid or expired session")

// Session is an established authenticated session together with the user
// it resolved to
type Session struct {
	Token     string
	UserID    model.UserID
	User      model.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config holds configuration for the session manager
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 7 * 24 * time.Hour,
	}
}

// Manager owns the session lifecycle: it serializes an authenticated user
// to an opaque token and resolves tokens back to users on each request.
// Each request is Anonymous until a valid token is presented.
type Manager struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random

	sessionDuration time.Duration
}

// New creates a new session Manager
func New(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config) *Manager {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Manager{
		storage:         store,
		clock:           clk,
		random:          rnd,
		sessionDuration: cfg.SessionDuration,
	}
}

// Start transitions Anonymous -> Authenticated(id) by persisting a session
// record. The record holds only the user ID; no claims or credential
// material ever enter the session store.
func (m *Manager) Start(ctx context.Context, user *model.User) (*Session, error) {
	now := m.clock.Now()
	record := &model.Session{
		Token:     m.random.ID("sess_"),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.sessionDuration),
	}

	if err := m.storage.SaveSession(ctx, record); err != nil {
		return nil, err
	}

	return &Session{
		Token:     record.Token,
		UserID:    user.ID,
		User:      *user,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// Resolve deserializes a token back to the user it identifies. A stale or
// forged token, or an ID that no longer resolves through the store, yields
// ErrSessionInvalid: the request falls back to Anonymous.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	record, err := m.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	if record.Expired(m.clock.Now()) {
		_ = m.storage.DeleteSession(ctx, token)
		return nil, ErrSessionInvalid
	}

	user, err := m.storage.GetUser(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	return &Session{
		Token:     record.Token,
		UserID:    user.ID,
		User:      *user,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// End transitions Authenticated(id) -> Anonymous. Unknown tokens are a
// no-op success, so the operation is idempotent.
func (m *Manager) End(ctx context.Context, token string) error {
	return m.storage.DeleteSession(ctx, token)
}
