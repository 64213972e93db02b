// internal/app/features/home/routes.go
package home

import (
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves /, /admin and /teacher. Mount at the root.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/admin", h.ServeAdmin)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleTeacher))
		pr.Get("/teacher", h.ServeTeacher)
	})
	return r
}
