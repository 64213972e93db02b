// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles GET /logout. The server-side session is deleted and
// the cookie expired; callers without a session are simply redirected.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Log.Info("logout", zap.String("account_id", u.ID))
	}
	if err := h.SessionMgr.EndSession(w, r); err != nil {
		// The cookie is already expired; a failed revoke leaves a record
		// that expires on its own.
		h.Log.Warn("logout: end session", zap.Error(err))
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
