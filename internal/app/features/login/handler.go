// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/readinglog/internal/app/features/errors"
	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/app/system/formutil"
	"github.com/dalemusser/readinglog/internal/app/system/navigation"
	"github.com/dalemusser/readinglog/internal/app/system/ratelimit"
	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Authenticator checks credentials. services/accounts.Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (models.Account, error)
}

type Handler struct {
	Accounts   Authenticator
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter // nil disables rate limiting
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(accounts Authenticator, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:   accounts,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Return   string `json:"return"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
}

// ServeLogin handles GET /login. Signed-in users are sent home.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, u.Role.HomePath(), http.StatusSeeOther)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"signedIn": false,
		"return":   query.Get(r, "return"),
	})
}

// HandleLoginPost handles POST /login.
//
// On success: 200 {"success":true,"redirect":"/teacher"} and a session cookie.
// On bad credentials: 401 {"error":"Invalid credentials"}.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "login: decode body", err)
		return
	}
	in.Username = strings.TrimSpace(in.Username)

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Username); !ok {
			h.Log.Warn("login rate limited",
				zap.String("ip", ratelimit.ClientIP(r)),
				zap.String("username", in.Username),
				zap.String("reason", reason))
			w.Header().Set("Retry-After", "60")
			uierrors.WriteError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthenticated) {
			h.Log.Info("login failed",
				zap.String("ip", ratelimit.ClientIP(r)),
				zap.String("username", in.Username))
		}
		h.ErrLog.Write(w, r, "login: authenticate", err)
		return
	}

	if err := h.SessionMgr.StartSession(w, r, acct.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "login: start session", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetUser(in.Username)
	}

	h.Log.Info("login succeeded",
		zap.String("account_id", acct.ID),
		zap.String("role", acct.Role().String()))

	uierrors.WriteJSON(w, http.StatusOK, loginResponse{
		Success:  true,
		Redirect: navigation.AfterLogin(r, in.Return, acct.Role()),
	})
}
