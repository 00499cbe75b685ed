package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Store caches JSON-encoded values by key.
type Store interface {
	// GetJSON decodes the cached value into dst and reports whether it was found.
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically adds one to the integer at key, starting from zero,
	// and returns the new value. The value reads back through GetJSON.
	Incr(ctx context.Context, key string) (int64, error)
}

// New returns a Redis-backed store when addr is set. Without addr the cache
// lives in process memory, which only suits a single server instance.
// An unreachable Redis disables caching, since other instances may share it.
func New(ctx context.Context, addr string) Store {
	if addr == "" {
		log.Println("REDIS_ADDR not set, caching in process memory")
		return NewMemory()
	}

	store, err := NewRedis(ctx, &redis.Options{Addr: addr})
	if err != nil {
		log.Printf("Could not connect to Redis at %s, caching disabled: %v", addr, err)
		return Noop{}
	}
	log.Printf("Connected to Redis at %s", addr)
	return store
}

// Redis is a Store on top of a go-redis client.
type Redis struct {
	client *redis.Client
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts *redis.Options) (*Redis, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return &Redis{client: client}, nil
}

func (r *Redis) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "redis get %s", key)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, errors.Wrapf(err, "decode cached %s", key)
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return errors.Wrapf(r.client.Set(ctx, key, data, ttl).Err(), "redis set %s", key)
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(r.client.Del(ctx, keys...).Err(), "redis del")
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	return n, errors.Wrapf(err, "redis incr %s", key)
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                   { return nil }
func (Noop) Incr(context.Context, string) (int64, error)               { return 0, nil }
