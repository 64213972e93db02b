package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sessionstore "github.com/dalemusser/readinglog/internal/app/store/sessions"
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Fixed identities for handler tests.
const (
	AdminID   = "00000000-0000-4000-8000-000000000001"
	TeacherID = "00000000-0000-4000-8000-000000000002"
)

// AdminUser is a signed-in administrator.
func AdminUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:       AdminID,
		Name:     "Administrator",
		Username: "admin",
		Role:     models.RoleFor(models.AdminClass),
	}
}

// TeacherUser is a signed-in teacher of "Grade 3".
func TeacherUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:       TeacherID,
		Name:     "Jane Doe",
		Username: "jane",
		Role:     models.RoleFor("Grade 3"),
	}
}

// WithUser returns r carrying u as the current user.
func WithUser(r *http.Request, u *auth.SessionUser) *http.Request {
	return auth.WithTestUser(r, u)
}

// JSONRequest builds a request with a JSON body.
func JSONRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AdminRequest is a JSON request from AdminUser.
func AdminRequest(method, target string, body *string) *http.Request {
	return WithUser(JSONRequest(method, target, deref(body)), AdminUser())
}

// TeacherRequest is a JSON request from TeacherUser.
func TeacherRequest(method, target string, body *string) *http.Request {
	return WithUser(JSONRequest(method, target, deref(body)), TeacherUser())
}

// Body is a helper for the body arguments above.
func Body(s string) *string { return &s }

// WithChiURLParam adds a chi URL parameter so handlers can be called
// without a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewSessionManager returns a SessionManager backed by an in-memory token
// store, with fetcher resolving accounts.
func NewSessionManager(t *testing.T, fetcher auth.UserFetcher) (*auth.SessionManager, *sessionstore.MemStore) {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	store := sessionstore.NewMemStore()
	sm.SetTokenStore(store)
	sm.SetUserFetcher(fetcher)
	return sm, store
}

// UserMap is a UserFetcher over fixed users keyed by ID.
type UserMap map[string]*auth.SessionUser

func (m UserMap) FetchUser(_ context.Context, id string) *auth.SessionUser {
	u, ok := m[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// Cookie returns the named cookie set on rec, or nil.
func Cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
