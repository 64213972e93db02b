// internal/app/features/adminreports/routes.go
package adminreports

import (
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves the administrator report listings; mount under /api/admin/reports.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))

	r.Get("/daily", h.Daily)
	r.Get("/weekly", h.Weekly)
	r.Get("/daily.csv", h.DailyCSV)
	r.Get("/weekly.csv", h.WeeklyCSV)
	return r
}
