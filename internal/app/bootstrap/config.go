// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/readinglog/internal/app/system/timezones"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for the reading log.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: store_backend, mongo_uri, etc.
//   - Environment variables: READINGLOG_STORE_BACKEND, READINGLOG_MONGO_URI, etc.
//   - Command-line flags: --store_backend, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Account and report storage: 'mongo' or 'postgres'"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "reading_log", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},

	{Name: "postgres_url", Default: "", Desc: "Postgres connection URL (store_backend=postgres)"},
	{Name: "postgres_max_conns", Default: 10, Desc: "Postgres pool size"},

	{Name: "session_backend", Default: BackendMongo, Desc: "Session storage: 'memory', 'mongo' or 'redis'"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "readinglog-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "24h", Desc: "Absolute session lifetime"},

	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address (session_backend=redis)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "redis_prefix", Default: "readinglog:", Desc: "Redis key prefix"},

	{Name: "admin_username", Default: "admin", Desc: "Administrator username ensured on startup"},
	{Name: "admin_password", Default: "admin123", Desc: "Administrator password ensured on startup"},
	{Name: "admin_full_name", Default: "Administrator", Desc: "Administrator display name"},

	{Name: "time_zone", Default: timezones.Default, Desc: "IANA time zone for week labels"},
	{Name: "bcrypt_cost", Default: bcrypt.DefaultCost, Desc: "bcrypt cost for password hashes"},
	{Name: "session_cleanup_interval", Default: "15m", Desc: "How often expired sessions are purged"},

	{Name: "login_ip_limit", Default: 10, Desc: "Login attempts per minute per client IP"},
	{Name: "login_user_limit", Default: 5, Desc: "Login attempts per five minutes per username"},
}

// LoadConfig loads WAFFLE core config and the app config. Precedence is
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "READINGLOG", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend: strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),

		PostgresURL:      appValues.String("postgres_url"),
		PostgresMaxConns: int32(appValues.Int("postgres_max_conns")),

		SessionBackend: strings.ToLower(strings.TrimSpace(appValues.String("session_backend"))),
		SessionKey:     appValues.String("session_key"),
		SessionName:    appValues.String("session_name"),
		SessionDomain:  appValues.String("session_domain"),
		SessionTTL:     appValues.Duration("session_ttl", 24*time.Hour),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		RedisPrefix:   appValues.String("redis_prefix"),

		AdminUsername: appValues.String("admin_username"),
		AdminPassword: appValues.String("admin_password"),
		AdminFullName: appValues.String("admin_full_name"),

		TimeZone:               appValues.String("time_zone"),
		BcryptCost:             appValues.Int("bcrypt_cost"),
		SessionCleanupInterval: appValues.Duration("session_cleanup_interval", 15*time.Minute),

		LoginIPLimit:   appValues.Int("login_ip_limit"),
		LoginUserLimit: appValues.Int("login_user_limit"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations that cannot start, before any
// connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateAppConfig(appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.SessionKey == devSessionKey {
			return errors.New("session_key must be set in production")
		}
		if appCfg.AdminPassword == "admin123" {
			logger.Warn("admin_password is the default; change it")
		}
	}
	return nil
}

func validateAppConfig(c AppConfig) error {
	var problems []string

	switch c.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(c.MongoURI); err != nil {
			problems = append(problems, fmt.Sprintf("invalid mongo_uri: %v", err))
		}
		if c.MongoDatabase == "" {
			problems = append(problems, "mongo_database is required")
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			problems = append(problems, "postgres_url is required when store_backend is postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("store_backend must be %q or %q, got %q", BackendMongo, BackendPostgres, c.StoreBackend))
	}

	switch c.SessionBackend {
	case BackendMemory:
	case BackendMongo:
		if c.StoreBackend != BackendMongo {
			problems = append(problems, "session_backend mongo requires store_backend mongo")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			problems = append(problems, "redis_addr is required when session_backend is redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("session_backend must be memory, mongo or redis, got %q", c.SessionBackend))
	}

	if len(c.SessionKey) < 32 {
		problems = append(problems, "session_key must be at least 32 characters")
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "session_ttl must be positive")
	}
	if c.SessionCleanupInterval <= 0 {
		problems = append(problems, "session_cleanup_interval must be positive")
	}
	if !timezones.Valid(c.TimeZone) {
		problems = append(problems, fmt.Sprintf("unknown time_zone %q", c.TimeZone))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if strings.TrimSpace(c.AdminUsername) == "" || c.AdminPassword == "" {
		problems = append(problems, "admin_username and admin_password are required")
	}
	if c.LoginIPLimit < 1 || c.LoginUserLimit < 1 {
		problems = append(problems, "login limits must be at least 1")
	}

	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}
