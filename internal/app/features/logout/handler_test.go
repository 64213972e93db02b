package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/readinglog/internal/app/features/logout"
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/testutil"
	"go.uber.org/zap"
)

func TestServeLogout_RedirectsToLogin(t *testing.T) {
	sm, _ := testutil.NewSessionManager(t, testutil.UserMap{})
	h := logout.NewHandler(sm, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ServeLogout(rec, httptest.NewRequest("GET", "/logout", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q, want %q", loc, "/login")
	}
	c := testutil.Cookie(rec, "test-session")
	if c == nil || c.MaxAge != -1 {
		t.Errorf("cookie: got %+v, want MaxAge -1", c)
	}
}

func TestServeLogout_DeletesServerSession(t *testing.T) {
	users := testutil.UserMap{testutil.TeacherID: testutil.TeacherUser()}
	sm, store := testutil.NewSessionManager(t, users)
	h := logout.NewHandler(sm, zap.NewNop())

	// Sign in to obtain a cookie.
	loginRec := httptest.NewRecorder()
	if err := sm.StartSession(loginRec, httptest.NewRequest("POST", "/login", nil), testutil.TeacherID); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("sessions: got %d, want 1", store.Len())
	}
	cookie := testutil.Cookie(loginRec, "test-session")

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	sm.LoadSessionUser(http.HandlerFunc(h.ServeLogout)).ServeHTTP(rec, req)

	if store.Len() != 0 {
		t.Errorf("sessions after logout: got %d, want 0", store.Len())
	}

	// The old cookie no longer resolves.
	again := httptest.NewRequest("GET", "/teacher", nil)
	again.AddCookie(cookie)
	var signedIn bool
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), again)
	if signedIn {
		t.Error("old cookie still signed in after logout")
	}
}

func TestServeLogout_HTMX(t *testing.T) {
	sm, _ := testutil.NewSessionManager(t, testutil.UserMap{})
	h := logout.NewHandler(sm, zap.NewNop())

	req := httptest.NewRequest("GET", "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusOK || rec.Header().Get("HX-Redirect") != "/login" {
		t.Errorf("got %d HX-Redirect=%q, want 200 /login", rec.Code, rec.Header().Get("HX-Redirect"))
	}
}
