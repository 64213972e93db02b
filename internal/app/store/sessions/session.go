// Package sessions stores server-side login sessions keyed by an opaque
// token. The browser cookie carries only the token; everything else stays
// here so a session can be revoked immediately.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown, deleted or expired tokens.
var ErrNotFound = errors.New("session not found")

// Session is one signed-in browser.
type Session struct {
	Token     string    `bson:"_id" json:"token"`
	AccountID string    `bson:"account_id" json:"account_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	IP        string    `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string    `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// New returns a session for accountID with a fresh random token that
// expires ttl after now.
func New(accountID string, now time.Time, ttl time.Duration) Session {
	return Session{
		Token:     uuid.NewString(),
		AccountID: accountID,
		CreatedAt: now.UTC(),
		ExpiresAt: now.UTC().Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Implementations must treat an expired session as
// absent.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteByAccount revokes every session belonging to accountID.
	DeleteByAccount(ctx context.Context, accountID string) (int64, error)
	// PurgeExpired removes sessions past their expiry. Backends that expire
	// keys on their own may return 0.
	PurgeExpired(ctx context.Context) (int64, error)
}
