// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	adminreportsfeature "github.com/dalemusser/readinglog/internal/app/features/adminreports"
	errorsfeature "github.com/dalemusser/readinglog/internal/app/features/errors"
	healthfeature "github.com/dalemusser/readinglog/internal/app/features/health"
	homefeature "github.com/dalemusser/readinglog/internal/app/features/home"
	loginfeature "github.com/dalemusser/readinglog/internal/app/features/login"
	logoutfeature "github.com/dalemusser/readinglog/internal/app/features/logout"
	teacherfeature "github.com/dalemusser/readinglog/internal/app/features/teacher"
	teachersfeature "github.com/dalemusser/readinglog/internal/app/features/teachers"
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router. WAFFLE calls it after Startup,
// so the services in deps are ready.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	st := deps.app
	if st == nil || st.accounts == nil {
		return nil, errors.New("build handler: startup did not run")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetTokenStore(st.sessions)
	// The account is re-read on every request so deletions and class
	// changes take effect immediately.
	sessionMgr.SetUserFetcher(st.accounts)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Loads the SessionUser into the request context when signed in.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(st.pinger, appCfg.StoreBackend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Landing endpoints: /, /admin, /teacher
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler, sessionMgr))

	// Authentication
	loginHandler := loginfeature.NewHandler(st.accounts, sessionMgr, st.limiter, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Administrator API
	teachersHandler := teachersfeature.NewHandler(st.accounts, errLog, logger)
	r.Mount("/api/admin/teachers", teachersfeature.Routes(teachersHandler, sessionMgr))

	adminReportsHandler := adminreportsfeature.NewHandler(st.reports, errLog, logger)
	r.Mount("/api/admin/reports", adminreportsfeature.Routes(adminReportsHandler, sessionMgr))

	// Teacher API
	teacherHandler := teacherfeature.NewHandler(st.reports, st.accounts, errLog, logger)
	r.Mount("/api/teacher", teacherfeature.Routes(teacherHandler, sessionMgr))

	return r, nil
}
