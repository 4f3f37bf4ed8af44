// Package redisstore provides a Redis-backed key-value backend for the event store.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/eventboard/eventboard-server/internal/store"
)

// DefaultPrefix namespaces every record key.
const DefaultPrefix = "eventboard:"

// Backend stores records as plain Redis strings without expiry.
type Backend struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// Options configures the backend.
type Options struct {
	URL     string
	Prefix  string
	Timeout time.Duration // Connection check timeout (default: 5s)
	Logger  *slog.Logger
}

// Open parses the URL, connects and pings Redis.
func Open(opts Options) (*Backend, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	b := New(client, opts.Prefix, opts.Logger)
	b.logger.Info("Connected to Redis", "addr", redisOpts.Addr, "db", redisOpts.DB)
	return b, nil
}

// New wraps an existing client. An empty prefix uses DefaultPrefix.
func New(client *redis.Client, prefix string, logger *slog.Logger) *Backend {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{client: client, prefix: prefix, logger: logger}
}

// Key returns the Redis key for a record.
func (b *Backend) Key(record string) string {
	return b.prefix + record
}

// Get implements store.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return data, nil
}

// Set implements store.Backend.
func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, b.Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

// Close implements store.Backend.
func (b *Backend) Close() error {
	return b.client.Close()
}
