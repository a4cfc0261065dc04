package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RevocationStore records token identifiers that must be rejected for
// the remainder of their lifetime. A token, once revoked, stays
// revoked until its natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "revoked:"

// RedisStore keeps revoked token IDs in Redis so revocation survives
// restarts and is shared between instances.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// MemoryStore is the fallback when Redis is not reachable. Revocations
// are process local and lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewStore connects to Redis at addr, falling back to an in-memory
// store when addr is empty or the connection fails.
func NewStore(addr, password string, db int, logger *zap.Logger) RevocationStore {
	if addr == "" {
		logger.Info("no REDIS_ADDR configured, using in-memory token revocation store")
		return NewMemoryStore()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to Redis, using in-memory token revocation store",
			zap.String("addr", addr),
			zap.Error(err),
		)
		rdb.Close()
		return NewMemoryStore()
	}

	logger.Info("Redis token revocation store initialized", zap.String("addr", addr))
	return &RedisStore{client: rdb, logger: logger}
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to record.
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke error: %w", err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		s.logger.Warn("Redis revocation lookup error", zap.String("jti", jti), zap.Error(err))
		return false, fmt.Errorf("redis revocation lookup error: %w", err)
	}
	return n > 0, nil
}

// NewMemoryStore constructs an empty in-memory revocation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

func (s *MemoryStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.entries, jti)
		return false, nil
	}
	return true, nil
}
