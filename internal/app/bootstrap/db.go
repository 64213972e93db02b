// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/readinglog/internal/app/store/pgdb"
	"github.com/dalemusser/readinglog/internal/app/system/indexes"
	"github.com/dalemusser/readinglog/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens the clients the configured backends need and verifies
// each with a ping. Clients opened before a failure are closed again.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{app: &appState{}}
	fail := func(err error) (DBDeps, error) {
		closeDeps(context.Background(), deps, logger)
		return DBDeps{}, err
	}

	if appCfg.StoreBackend == BackendMongo || appCfg.SessionBackend == BackendMongo {
		client, err := connectMongo(ctx, appCfg)
		if err != nil {
			return fail(err)
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	}

	if appCfg.StoreBackend == BackendPostgres {
		pctx, cancel := context.WithTimeout(ctx, timeouts.Long())
		pool, err := pgdb.Connect(pctx, appCfg.PostgresURL, appCfg.PostgresMaxConns)
		cancel()
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		deps.PGPool = pool
		logger.Info("connected to Postgres", zap.Int32("max_conns", pool.Config().MaxConns))
	}

	if appCfg.SessionBackend == BackendRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		deps.Redis = rdb
		rctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		err := rdb.Ping(rctx).Err()
		cancel()
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
	}

	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetServerSelectionTimeout(timeouts.Long())
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}

	cctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureSchema creates Mongo indexes or the Postgres tables. Both are safe
// to run on every start.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	if deps.MongoDatabase != nil {
		if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
			logger.Error("ensure mongo indexes failed", zap.Error(err))
			return err
		}
		logger.Info("mongo indexes ensured")
	}
	if deps.PGPool != nil {
		if err := pgdb.EnsureSchema(ctx, deps.PGPool); err != nil {
			logger.Error("ensure postgres schema failed", zap.Error(err))
			return fmt.Errorf("postgres schema: %w", err)
		}
		logger.Info("postgres schema ensured")
	}
	return nil
}
