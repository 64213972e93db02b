// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Storage and session backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// AppConfig holds the reading log's own configuration. WAFFLE's CoreConfig
// covers ports, TLS, logging and CORS; everything specific to this app
// lives here and is passed to each lifecycle hook.
type AppConfig struct {
	// Where accounts and reports are stored: "mongo" or "postgres".
	StoreBackend string

	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64

	PostgresURL      string
	PostgresMaxConns int32

	// Where login sessions are kept: "memory", "mongo" or "redis".
	SessionBackend string
	SessionKey     string // signs the session cookie
	SessionName    string // cookie name
	SessionDomain  string // blank means current host
	SessionTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Administrator ensured on every start.
	AdminUsername string
	AdminPassword string
	AdminFullName string

	// IANA zone used to derive the week label of new reports.
	TimeZone string

	BcryptCost             int
	SessionCleanupInterval time.Duration

	// Login attempts allowed per minute per client IP, and per five
	// minutes per username.
	LoginIPLimit   int
	LoginUserLimit int
}
