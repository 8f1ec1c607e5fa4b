// Package auth resolves bearer tokens to authenticated sessions. The
// identity provider lives elsewhere; this package only answers "who is
// calling" for a token the provider already issued.
package auth

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session is the authenticated caller behind a request token.
type Session struct {
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionStore looks up and manages sessions by token.
type SessionStore interface {
	Get(ctx context.Context, token string) (*Session, error)
	Put(ctx context.Context, token string, session *Session, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}
