package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with a key TTL matching each session's
// expiry. A set per account tracks its tokens for bulk revocation.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore returns a RedisStore whose keys start with prefix
// (for example "readinglog:").
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *RedisStore) sessionKey(token string) string { return s.prefix + "session:" + token }
func (s *RedisStore) accountKey(id string) string    { return s.prefix + "account-sessions:" + id }

func (s *RedisStore) Create(ctx context.Context, sess Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	acct := s.accountKey(sess.AccountID)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.sessionKey(sess.Token), b, ttl)
		p.SAdd(ctx, acct, sess.Token)
		p.Expire(ctx, acct, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	b, err := s.rdb.Get(ctx, s.sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return Session{}, err
	}
	if sess.Expired(s.now()) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	sess, err := s.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return s.rdb.Del(ctx, s.sessionKey(token)).Err()
	}
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.sessionKey(token))
		p.SRem(ctx, s.accountKey(sess.AccountID), token)
		return nil
	})
	return err
}

func (s *RedisStore) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	acct := s.accountKey(accountID)
	tokens, err := s.rdb.SMembers(ctx, acct).Result()
	if err != nil {
		return 0, err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, s.sessionKey(t))
	}
	var n int64
	if len(keys) > 0 {
		n, err = s.rdb.Del(ctx, keys...).Result()
		if err != nil {
			return 0, err
		}
	}
	return n, s.rdb.Del(ctx, acct).Err()
}

// PurgeExpired is a no-op; Redis drops expired keys itself.
func (s *RedisStore) PurgeExpired(context.Context) (int64, error) {
	return 0, nil
}
