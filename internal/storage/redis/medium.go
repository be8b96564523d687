// Package redis stores key-value documents as Redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hongminglow/red-syndicate/internal/storage"
)

var _ storage.Medium = (*Medium)(nil)

// Config defines connection parameters for the Redis medium.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Medium implements storage.Medium on top of a go-redis client.
type Medium struct {
	client goredis.UniversalClient
	prefix string
}

// New connects to Redis and verifies the connection with Ping.
func New(ctx context.Context, cfg Config) (*Medium, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient wraps an existing client. Keys are stored as prefix+key.
func NewWithClient(client goredis.UniversalClient, prefix string) *Medium {
	return &Medium{client: client, prefix: prefix}
}

func (m *Medium) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.client.Get(ctx, m.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

func (m *Medium) Set(ctx context.Context, key string, value []byte) error {
	if err := m.client.Set(ctx, m.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (m *Medium) Delete(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (m *Medium) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

func (m *Medium) Close() error {
	return m.client.Close()
}
