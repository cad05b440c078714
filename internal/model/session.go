package model

import "time"

// Session is the persisted record behind an opaque session token.
// It deliberately carries only the user ID: no claims, no credential
// material, nothing a compromised session store could usefully leak.
type Session struct {
	Token     string    `json:"token"`
	UserID    UserID    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at the given time
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
