// internal/app/features/teacher/handler.go
package teacher

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/readinglog/internal/app/features/errors"
	"github.com/dalemusser/readinglog/internal/app/services/reports"
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/app/system/formutil"
	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"go.uber.org/zap"
)

// Reports is the part of the report service a teacher uses.
type Reports interface {
	Profile(ctx context.Context, teacherID string) (reports.Profile, error)
	SubmitDaily(ctx context.Context, teacherID string, in reports.DailyInput) (string, error)
	SubmitWeekly(ctx context.Context, teacherID string, in reports.WeeklyInput) (string, error)
	ListDaily(ctx context.Context, teacherID string) ([]models.DailyReport, error)
	ListWeekly(ctx context.Context, teacherID string) ([]models.WeeklyReport, error)
}

// PasswordChanger changes a signed-in user's own password.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, id, current, next string) error
}

type Handler struct {
	Reports   Reports
	Passwords PasswordChanger
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(r Reports, p PasswordChanger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Reports: r, Passwords: p, ErrLog: errLog, Log: logger}
}

type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Profile handles GET /api/teacher/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Reports.Profile(ctx, u.ID)
	if err != nil {
		h.ErrLog.Write(w, r, "teacher profile", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, p)
}

// SubmitDaily handles POST /api/teacher/daily-report.
func (h *Handler) SubmitDaily(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in reports.DailyInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "daily report: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := h.Reports.SubmitDaily(ctx, u.ID, in)
	if err != nil {
		h.ErrLog.Write(w, r, "daily report", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, submitResponse{Success: true, ID: id})
}

// SubmitWeekly handles POST /api/teacher/weekly-report.
func (h *Handler) SubmitWeekly(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in reports.WeeklyInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "weekly report: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := h.Reports.SubmitWeekly(ctx, u.ID, in)
	if err != nil {
		h.ErrLog.Write(w, r, "weekly report", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, submitResponse{Success: true, ID: id})
}

// DailyReports handles GET /api/teacher/daily-reports.
func (h *Handler) DailyReports(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Reports.ListDaily(ctx, u.ID)
	if err != nil {
		h.ErrLog.Write(w, r, "list own daily reports", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// WeeklyReports handles GET /api/teacher/weekly-reports.
func (h *Handler) WeeklyReports(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Reports.ListWeekly(ctx, u.ID)
	if err != nil {
		h.ErrLog.Write(w, r, "list own weekly reports", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// ChangePassword handles POST /api/teacher/change-password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in changePasswordInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "change password: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Passwords.ChangePassword(ctx, u.ID, in.CurrentPassword, in.NewPassword); err != nil {
		h.ErrLog.Write(w, r, "change password", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, submitResponse{Success: true})
}
