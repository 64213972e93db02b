// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/readinglog/internal/app/features/health"
	"github.com/dalemusser/readinglog/internal/app/services/accounts"
	"github.com/dalemusser/readinglog/internal/app/services/reports"
	sessionstore "github.com/dalemusser/readinglog/internal/app/store/sessions"
	"github.com/dalemusser/readinglog/internal/app/system/ratelimit"
	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"github.com/dalemusser/readinglog/internal/app/system/timezones"
	"github.com/dalemusser/readinglog/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// appState is what Startup builds for the handler and for Shutdown.
type appState struct {
	sessions sessionstore.Store
	accounts *accounts.Service
	reports  *reports.Service
	pinger   health.Pinger
	limiter  *ratelimit.LoginLimiter
	cleanup  *workers.SessionCleanup
}

// Startup builds the services, ensures the administrator account and
// starts the session cleanup worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.app == nil {
		return errors.New("startup: backends were not connected")
	}
	if n := timeouts.ConfigureFromEnv("READINGLOG"); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	st, err := buildStores(appCfg, deps)
	if err != nil {
		return err
	}
	loc, err := timezones.Resolve(appCfg.TimeZone)
	if err != nil {
		return err
	}

	acctSvc := accounts.New(st.accounts, st.sessions, appCfg.BcryptCost, logger)
	reportSvc := reports.New(st.daily, st.weekly, st.accounts, loc, logger)

	actx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := acctSvc.EnsureBootstrapAdmin(actx, appCfg.AdminUsername, appCfg.AdminPassword, appCfg.AdminFullName); err != nil {
		logger.Error("bootstrap admin failed", zap.Error(err))
		return err
	}

	cleanup := workers.NewSessionCleanup(st.sessions, logger, appCfg.SessionCleanupInterval)
	cleanup.Start()

	*deps.app = appState{
		sessions: st.sessions,
		accounts: acctSvc,
		reports:  reportSvc,
		pinger:   st.pinger,
		limiter:  ratelimit.NewLoginLimiter(appCfg.LoginIPLimit, time.Minute, appCfg.LoginUserLimit, 5*time.Minute),
		cleanup:  cleanup,
	}

	logger.Info("reading log started",
		zap.String("store_backend", appCfg.StoreBackend),
		zap.String("session_backend", appCfg.SessionBackend),
		zap.String("time_zone", loc.String()))
	return nil
}
