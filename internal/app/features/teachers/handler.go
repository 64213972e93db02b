// internal/app/features/teachers/handler.go
package teachers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/readinglog/internal/app/features/errors"
	"github.com/dalemusser/readinglog/internal/app/services/accounts"
	"github.com/dalemusser/readinglog/internal/app/system/formutil"
	"github.com/dalemusser/readinglog/internal/app/system/inputval"
	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Accounts is the teacher management the handler needs.
type Accounts interface {
	ListTeachers(ctx context.Context) ([]models.Account, error)
	CreateAccount(ctx context.Context, in accounts.NewAccount) (models.Account, error)
	UpdateAccount(ctx context.Context, id string, in accounts.AccountUpdate) (models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

type Handler struct {
	Accounts Accounts
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(accts Accounts, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Accounts: accts, ErrLog: errLog, Log: logger}
}

type successResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

// List handles GET /api/admin/teachers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Accounts.ListTeachers(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "list teachers", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// Create handles POST /api/admin/teachers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in accounts.NewAccount
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "create teacher: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Accounts.CreateAccount(ctx, in)
	if err != nil {
		h.ErrLog.Write(w, r, "create teacher", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, successResponse{Success: true, ID: a.ID})
}

// Update handles PUT /api/admin/teachers/{id}. Absent fields are left
// unchanged; an empty password keeps the current one.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !inputval.IsValidID(id) {
		uierrors.WriteError(w, http.StatusNotFound, "Teacher not found")
		return
	}

	var in accounts.AccountUpdate
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "update teacher: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Accounts.UpdateAccount(ctx, id, in); err != nil {
		h.writeErr(w, r, "update teacher", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

// Delete handles DELETE /api/admin/teachers/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !inputval.IsValidID(id) {
		uierrors.WriteError(w, http.StatusNotFound, "Teacher not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Accounts.DeleteAccount(ctx, id); err != nil {
		h.writeErr(w, r, "delete teacher", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if status, _ := uierrors.StatusFor(err); status == http.StatusNotFound {
		uierrors.WriteError(w, status, "Teacher not found")
		return
	}
	h.ErrLog.Write(w, r, msg, err)
}
