// internal/app/features/teacher/routes.go
package teacher

import (
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves the signed-in teacher's API; mount under /api/teacher.
// Administrators are refused.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleTeacher))

	r.Get("/profile", h.Profile)
	r.Post("/daily-report", h.SubmitDaily)
	r.Post("/weekly-report", h.SubmitWeekly)
	r.Get("/daily-reports", h.DailyReports)
	r.Get("/weekly-reports", h.WeeklyReports)
	r.Post("/change-password", h.ChangePassword)
	return r
}
