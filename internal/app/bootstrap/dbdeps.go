// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend clients opened by ConnectDB. Only the clients
// the configured backends need are set.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	PGPool        *pgxpool.Pool
	Redis         *redis.Client

	// app is filled by Startup and read by BuildHandler and Shutdown.
	app *appState
}
