package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/readinglog/internal/app/features/health"
	"github.com/dalemusser/readinglog/internal/testutil"
	"go.uber.org/zap"
)

func serve(t *testing.T, p health.Pinger) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	health.NewHandler(p, "mongo", zap.NewNop()).Serve(rec, httptest.NewRequest("GET", "/health", nil))
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec, body
}

func TestServe_OK(t *testing.T) {
	rec, body := serve(t, health.PingFunc(func(context.Context) error { return nil }))
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if body["status"] != "ok" || body["database"] != "connected" {
		t.Errorf("body: got %v", body)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	rec, body := serve(t, health.PingFunc(func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	}))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
	if body["status"] != "error" {
		t.Errorf("status field: got %q, want error", body["status"])
	}
	for _, v := range body {
		if strings.Contains(v, "refused") {
			t.Errorf("cause leaked: %v", body)
		}
	}
}

func TestServe_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rec, _ := serve(t, health.MongoPinger(db.Client()))
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestServe_Postgres(t *testing.T) {
	pool := testutil.SetupTestPG(t)
	rec, _ := serve(t, health.PGPinger(pool))
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}
