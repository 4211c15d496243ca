// Package lock provides a best-effort mutual exclusion for long admin jobs.
// Redis SETNX is used when REDIS_ADDR is configured; otherwise the lock only
// covers the current process.
package lock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Locker interface {
	// TryLock reports false without error when the key is already held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

/* =========================
   Redis
========================= */

type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "kanisa"
	}
	return &RedisLocker{client: client, prefix: prefix}
}

// NewRedisClient dials and pings; callers fall back to the local locker on
// error.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (l *RedisLocker) Key(parts ...string) string {
	return l.prefix + ":lock:" + strings.Join(parts, ":")
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.Key(key), 1, ttl).Result()
}

func (l *RedisLocker) Unlock(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.Key(key)).Err()
}

/* =========================
   In-process
========================= */

type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]time.Time{}}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if exp, ok := l.held[key]; ok && now.Before(exp) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

func (l *LocalLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
	return nil
}

/* =========================
   Selection
========================= */

// FromConfig picks Redis when addr is set and reachable, else the local
// locker. The returned close func is never nil.
func FromConfig(ctx context.Context, addr, password string, db int, prefix string) (Locker, func(), error) {
	if strings.TrimSpace(addr) == "" {
		return NewLocalLocker(), func() {}, nil
	}
	client, err := NewRedisClient(ctx, addr, password, db)
	if err != nil {
		return NewLocalLocker(), func() {}, err
	}
	return NewRedisLocker(client, prefix), func() { _ = client.Close() }, nil
}
