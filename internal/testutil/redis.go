package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupTestRedis returns a client and a key prefix unique to this test.
// Keys under the prefix are removed when the test ends. The test is skipped
// unless READINGLOG_TEST_REDIS_ADDR is set.
func SetupTestRedis(t *testing.T) (*redis.Client, string) {
	t.Helper()

	addr := os.Getenv("READINGLOG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("READINGLOG_TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("redis unavailable: %v", err)
	}

	prefix := "readinglog_test_" + shortID() + ":"
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			_ = rdb.Del(ctx, iter.Val()).Err()
		}
		_ = rdb.Close()
	})
	return rdb, prefix
}
