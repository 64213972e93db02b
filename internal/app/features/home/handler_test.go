package home_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/readinglog/internal/app/features/home"
	"github.com/dalemusser/readinglog/internal/testutil"
	"go.uber.org/zap"
)

func TestServeRoot(t *testing.T) {
	h := home.NewHandler(zap.NewNop())
	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"anonymous", httptest.NewRequest("GET", "/", nil), "/login"},
		{"teacher", testutil.TeacherRequest("GET", "/", nil), "/teacher"},
		{"admin", testutil.AdminRequest("GET", "/", nil), "/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeRoot(rec, tt.req)
			if rec.Code != http.StatusSeeOther {
				t.Errorf("status: got %d, want 303", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.want {
				t.Errorf("Location: got %q, want %q", loc, tt.want)
			}
		})
	}
}

func TestLandingGuards(t *testing.T) {
	sm, _ := testutil.NewSessionManager(t, testutil.UserMap{})
	router := home.Routes(home.NewHandler(zap.NewNop()), sm)

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"admin landing as admin", testutil.AdminRequest("GET", "/admin", nil), http.StatusOK},
		{"admin landing as teacher", testutil.TeacherRequest("GET", "/admin", nil), http.StatusForbidden},
		{"teacher landing as teacher", testutil.TeacherRequest("GET", "/teacher", nil), http.StatusOK},
		{"teacher landing as admin", testutil.AdminRequest("GET", "/teacher", nil), http.StatusForbidden},
		{"teacher landing anonymous", httptest.NewRequest("GET", "/teacher", nil), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestServeTeacher_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	home.NewHandler(zap.NewNop()).ServeTeacher(rec, testutil.TeacherRequest("GET", "/teacher", nil))
	if !strings.Contains(rec.Body.String(), `"assignedClass":"Grade 3"`) {
		t.Errorf("body: got %s", rec.Body.String())
	}
}
