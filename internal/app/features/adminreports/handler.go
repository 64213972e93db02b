// internal/app/features/adminreports/handler.go
package adminreports

import (
	"context"
	"fmt"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/readinglog/internal/app/features/errors"
	"github.com/dalemusser/readinglog/internal/app/services/reports"
	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"go.uber.org/zap"
)

// Reports is the read side of the report service used by administrators.
type Reports interface {
	ListAllDaily(ctx context.Context) ([]models.DailyReportRow, error)
	ListAllWeekly(ctx context.Context) ([]models.WeeklyReportRow, error)
}

type Handler struct {
	Reports Reports
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
	now     func() time.Time
}

func NewHandler(r Reports, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Reports: r, ErrLog: errLog, Log: logger, now: time.Now}
}

// Daily handles GET /api/admin/reports/daily.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Reports.ListAllDaily(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "list daily reports", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, rows)
}

// Weekly handles GET /api/admin/reports/weekly.
func (h *Handler) Weekly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Reports.ListAllWeekly(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "list weekly reports", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, rows)
}

// DailyCSV handles GET /api/admin/reports/daily.csv.
func (h *Handler) DailyCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Reports.ListAllDaily(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "export daily reports", err)
		return
	}
	h.setDownload(w, "daily-reports")
	if err := reports.WriteDailyCSV(w, rows); err != nil {
		// Headers are gone; all that is left is to record it.
		h.Log.Error("write daily csv", zap.Error(err))
	}
}

// WeeklyCSV handles GET /api/admin/reports/weekly.csv.
func (h *Handler) WeeklyCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Reports.ListAllWeekly(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "export weekly reports", err)
		return
	}
	h.setDownload(w, "weekly-reports")
	if err := reports.WriteWeeklyCSV(w, rows); err != nil {
		h.Log.Error("write weekly csv", zap.Error(err))
	}
}

func (h *Handler) setDownload(w http.ResponseWriter, base string) {
	name := fmt.Sprintf("%s-%s.csv", base, h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Cache-Control", "no-store")
}
