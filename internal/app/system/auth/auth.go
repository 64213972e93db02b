// Package auth implements session handling and the access guard.
//
// A signed cookie (gorilla/sessions) carries one opaque token. The token
// maps to a server-side session record with an absolute expiry; on every
// request the account behind it is re-read so role changes and deletions
// apply immediately.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sessionstore "github.com/dalemusser/readinglog/internal/app/store/sessions"
	"github.com/dalemusser/readinglog/internal/app/system/ratelimit"
	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const tokenKey = "token"

// SessionUser is the signed-in account as seen by handlers.
type SessionUser struct {
	ID       string
	Name     string
	Username string
	Role     models.Role
	// Token is the server-side session token; empty for users injected by
	// WithTestUser.
	Token string
}

// UserFetcher loads the current state of an account. It returns nil when
// the account no longer exists or cannot be read.
type UserFetcher interface {
	FetchUser(ctx context.Context, accountID string) *SessionUser
}

// SessionManager owns the cookie store and the server-side session store.
type SessionManager struct {
	cookies *sessions.CookieStore
	name    string
	ttl     time.Duration
	tokens  sessionstore.Store
	fetcher UserFetcher
	log     *zap.Logger
	now     func() time.Time
}

// NewSessionManager builds a SessionManager. ttl is the absolute lifetime of
// a session. secure marks cookies Secure and SameSite=None; use false for
// plain-http development.
func NewSessionManager(key, name, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if key == "" {
		return nil, errors.New("session key is empty; provide at least 32 random characters")
	}
	if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}
	if name == "" {
		return nil, errors.New("session cookie name is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	cs := sessions.NewCookieStore([]byte(key))
	cs.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		cs.Options.SameSite = http.SameSiteNoneMode
	}

	return &SessionManager{
		cookies: cs,
		name:    name,
		ttl:     ttl,
		log:     logger,
		now:     time.Now,
	}, nil
}

// SetTokenStore sets the server-side session store.
func (sm *SessionManager) SetTokenStore(s sessionstore.Store) { sm.tokens = s }

// SetUserFetcher sets the account loader used by LoadSessionUser.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// Store exposes the cookie store, mainly for its Options.
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.cookies }

// TTL is the absolute session lifetime.
func (sm *SessionManager) TTL() time.Duration { return sm.ttl }

// GetSession returns the cookie session. On a decode failure (tampered or
// rotated key) it still returns a usable empty session with the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.cookies.Get(r, sm.name)
}

// StartSession records a new server-side session for accountID and sets the
// cookie. Any session the browser already carried is revoked first.
func (sm *SessionManager) StartSession(w http.ResponseWriter, r *http.Request, accountID string) error {
	if sm.tokens == nil {
		return errors.New("session store not configured")
	}

	sess, err := sm.GetSession(r)
	if err != nil && !isDecodeError(err) {
		return err
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if old, ok := sess.Values[tokenKey].(string); ok && old != "" {
		if err := sm.tokens.Delete(ctx, old); err != nil {
			sm.log.Warn("revoke previous session failed", zap.Error(err))
		}
	}

	rec := sessionstore.New(accountID, sm.now(), sm.ttl)
	rec.IP = ratelimit.ClientIP(r)
	rec.UserAgent = r.UserAgent()
	if err := sm.tokens.Create(ctx, rec); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	sess.Values = map[interface{}]interface{}{tokenKey: rec.Token}
	sess.Options = sm.cookieOptions(int(sm.ttl.Seconds()))
	return sess.Save(r, w)
}

// EndSession deletes the server-side session and expires the cookie. It is
// safe to call without a session.
func (sm *SessionManager) EndSession(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil && !isDecodeError(err) {
		return err
	}

	var revokeErr error
	if tok, ok := sess.Values[tokenKey].(string); ok && tok != "" && sm.tokens != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		revokeErr = sm.tokens.Delete(ctx, tok)
	}

	sess.Values = map[interface{}]interface{}{}
	sess.Options = sm.cookieOptions(-1)
	if err := sess.Save(r, w); err != nil {
		return err
	}
	return revokeErr
}

func (sm *SessionManager) cookieOptions(maxAge int) *sessions.Options {
	o := *sm.cookies.Options
	o.MaxAge = maxAge
	return &o
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the signed-in user placed in context by LoadSessionUser.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context, bypassing sessions.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// LoadSessionUser resolves the cookie to a SessionUser and stores it in the
// request context. Requests without a live session continue anonymously.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := sm.resolve(r); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) resolve(r *http.Request) *SessionUser {
	if sm.tokens == nil || sm.fetcher == nil {
		return nil
	}
	sess, err := sm.GetSession(r)
	if err != nil {
		if isDecodeError(err) {
			sm.log.Debug("session cookie rejected", zap.Error(err))
		} else {
			sm.log.Warn("session cookie read failed", zap.Error(err))
		}
		return nil
	}
	tok, _ := sess.Values[tokenKey].(string)
	if tok == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rec, err := sm.tokens.Get(ctx, tok)
	if err != nil {
		if !errors.Is(err, sessionstore.ErrNotFound) {
			sm.log.Error("session lookup failed", zap.Error(err))
		}
		return nil
	}
	u := sm.fetcher.FetchUser(ctx, rec.AccountID)
	if u == nil {
		return nil
	}
	u.Token = tok
	return u
}

// RequireSignedIn rejects anonymous requests.
//   - HTMX: HX-Redirect to /login?return=...
//   - HTML: 303 to /login?return=...
//   - API:  401 with a JSON error body
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			unauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits only signed-in users whose role kind is listed.
// Anonymous callers get the RequireSignedIn treatment; signed-in callers
// with another role are sent to /forbidden (HTML) or get 403 (API).
func (sm *SessionManager) RequireRole(allowed ...models.RoleKind) func(http.Handler) http.Handler {
	set := make(map[models.RoleKind]struct{}, len(allowed))
	for _, k := range allowed {
		set[k] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthenticated(w, r)
				return
			}
			if _, has := set[u.Role.Kind]; !has {
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthenticated(w http.ResponseWriter, r *http.Request) {
	dest := "/login?return=" + url.QueryEscape(r.URL.RequestURI())
	switch {
	case isHTMX(r):
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
	case wantsHTML(r):
		http.Redirect(w, r, dest, http.StatusSeeOther)
	default:
		writeJSONError(w, http.StatusUnauthorized, "Not signed in")
	}
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	switch {
	case isHTMX(r):
		w.Header().Set("HX-Redirect", "/forbidden")
		w.WriteHeader(http.StatusForbidden)
	case wantsHTML(r):
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
	default:
		writeJSONError(w, http.StatusForbidden, "Access denied")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func isHTMX(r *http.Request) bool { return r.Header.Get("HX-Request") == "true" }

func wantsHTML(r *http.Request) bool {
	return isHTMX(r) || strings.Contains(r.Header.Get("Accept"), "text/html")
}

func isDecodeError(err error) bool {
	var cerr securecookie.Error
	return errors.As(err, &cerr) && cerr.IsDecode()
}
