package health

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/readinglog/internal/app/features/errors"
	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger checks that a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// MongoPinger pings the primary.
func MongoPinger(client *mongo.Client) Pinger {
	return PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
}

// PGPinger acquires a connection and pings it.
func PGPinger(pool *pgxpool.Pool) Pinger {
	return PingFunc(pool.Ping)
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB      Pinger
	Backend string // "mongo" or "postgres", reported in the response
	Log     *zap.Logger
}

func NewHandler(db Pinger, backend string, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Backend: backend, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 {"status":"ok","database":"connected","backend":"mongo"}
// On DB failure: 503 {"status":"error","database":"disconnected",...}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Error("health-check: database ping failed", zap.String("backend", h.Backend), zap.Error(err))
		uierrors.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Backend:  h.Backend,
			Message:  "Database unavailable",
		})
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Database: "connected",
		Backend:  h.Backend,
	})
}
