// internal/app/bootstrap/backends.go
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/dalemusser/readinglog/internal/app/features/health"
	"github.com/dalemusser/readinglog/internal/app/services/accounts"
	"github.com/dalemusser/readinglog/internal/app/services/reports"
	accountstore "github.com/dalemusser/readinglog/internal/app/store/accounts"
	dailyreportstore "github.com/dalemusser/readinglog/internal/app/store/dailyreports"
	sessionstore "github.com/dalemusser/readinglog/internal/app/store/sessions"
	weeklyreportstore "github.com/dalemusser/readinglog/internal/app/store/weeklyreports"
)

// stores is the storage selected by configuration.
type stores struct {
	accounts accounts.Store
	daily    reports.DailyStore
	weekly   reports.WeeklyStore
	sessions sessionstore.Store
	pinger   health.Pinger
}

func buildStores(appCfg AppConfig, deps DBDeps) (stores, error) {
	var s stores

	switch appCfg.StoreBackend {
	case BackendMongo:
		if deps.MongoDatabase == nil {
			return stores{}, errors.New("mongo store selected but not connected")
		}
		s.accounts = accountstore.NewMongoStore(deps.MongoDatabase)
		s.daily = dailyreportstore.NewMongoStore(deps.MongoDatabase)
		s.weekly = weeklyreportstore.NewMongoStore(deps.MongoDatabase)
		s.pinger = health.MongoPinger(deps.MongoClient)
	case BackendPostgres:
		if deps.PGPool == nil {
			return stores{}, errors.New("postgres store selected but not connected")
		}
		s.accounts = accountstore.NewPGStore(deps.PGPool)
		s.daily = dailyreportstore.NewPGStore(deps.PGPool)
		s.weekly = weeklyreportstore.NewPGStore(deps.PGPool)
		s.pinger = health.PGPinger(deps.PGPool)
	default:
		return stores{}, fmt.Errorf("unknown store backend %q", appCfg.StoreBackend)
	}

	switch appCfg.SessionBackend {
	case BackendMemory:
		s.sessions = sessionstore.NewMemStore()
	case BackendMongo:
		if deps.MongoDatabase == nil {
			return stores{}, errors.New("mongo sessions selected but not connected")
		}
		s.sessions = sessionstore.NewMongoStore(deps.MongoDatabase)
	case BackendRedis:
		if deps.Redis == nil {
			return stores{}, errors.New("redis sessions selected but not connected")
		}
		s.sessions = sessionstore.NewRedisStore(deps.Redis, appCfg.RedisPrefix)
	default:
		return stores{}, fmt.Errorf("unknown session backend %q", appCfg.SessionBackend)
	}

	return s, nil
}
