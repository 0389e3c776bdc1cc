// Package redis stores keys in a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/aretw0/noteease/pkg/core"
)

// Config holds the connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key
}

// KV implements core.KV with GET/SET.
type KV struct {
	client *redis.Client
	prefix string
}

// New creates a Redis backend. The connection is checked by Initialize.
func New(cfg Config) *KV {
	return NewFromClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Prefix)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, prefix string) *KV {
	return &KV{client: client, prefix: prefix}
}

// Initialize pings the server.
func (k *KV) Initialize(ctx context.Context) error {
	if err := k.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := k.client.Get(ctx, k.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: failed to get %q: %w", key, err)
	}
	return value, true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := k.client.Set(ctx, k.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: failed to set %q: %w", key, err)
	}
	return nil
}

func (k *KV) Close() error {
	return k.client.Close()
}

// ComponentType implements introspection.Component.
func (k *KV) ComponentType() string {
	return "redis"
}

var _ core.KV = (*KV)(nil)
var _ core.Initializer = (*KV)(nil)
