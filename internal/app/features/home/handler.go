// internal/app/features/home/handler.go
package home

import (
	"net/http"

	uierrors "github.com/dalemusser/readinglog/internal/app/features/errors"
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeRoot handles GET /: signed-in users go to their role's home, others
// to /login.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, u.Role.HomePath(), http.StatusSeeOther)
}

type landing struct {
	FullName string            `json:"fullName"`
	Username string            `json:"username"`
	Role     string            `json:"role"`
	Class    string            `json:"assignedClass,omitempty"`
	Links    map[string]string `json:"links"`
}

// ServeAdmin handles GET /admin.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	uierrors.WriteJSON(w, http.StatusOK, landing{
		FullName: u.Name,
		Username: u.Username,
		Role:     u.Role.String(),
		Links: map[string]string{
			"teachers":      "/api/admin/teachers",
			"dailyReports":  "/api/admin/reports/daily",
			"weeklyReports": "/api/admin/reports/weekly",
			"dailyCsv":      "/api/admin/reports/daily.csv",
			"weeklyCsv":     "/api/admin/reports/weekly.csv",
			"logout":        "/logout",
		},
	})
}

// ServeTeacher handles GET /teacher.
func (h *Handler) ServeTeacher(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	uierrors.WriteJSON(w, http.StatusOK, landing{
		FullName: u.Name,
		Username: u.Username,
		Role:     u.Role.String(),
		Class:    u.Role.Class,
		Links: map[string]string{
			"profile":        "/api/teacher/profile",
			"dailyReport":    "/api/teacher/daily-report",
			"weeklyReport":   "/api/teacher/weekly-report",
			"dailyReports":   "/api/teacher/daily-reports",
			"weeklyReports":  "/api/teacher/weekly-reports",
			"changePassword": "/api/teacher/change-password",
			"logout":         "/logout",
		},
	})
}
