// Package redis implements a registry backend shared through Redis, for
// pipelines where several processes edit the same asset.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/nftmeta/internal/logging"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// DefaultPrefix namespaces registry keys when the config sets none.
const DefaultPrefix = "nftmeta:registry:"

// Backend implements types.Registry on a Redis server. Each blob is stored
// as a JSON string; a sorted set indexes the keys.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	client   *backend.Client
	external bool // client supplied by the caller; not closed on Detach
	prefix   string
	timeout  time.Duration
	log      zerolog.Logger
}

type Option func(*Backend)

// WithPrefix sets the key prefix, overriding the config.
func WithPrefix(prefix string) Option {
	return func(b *Backend) {
		b.prefix = prefix
	}
}

// WithTimeout bounds every Redis round trip.
func WithTimeout(d time.Duration) Option {
	return func(b *Backend) {
		b.timeout = d
	}
}

// WithClient makes Attach use an existing client instead of dialing.
func WithClient(client *backend.Client) Option {
	return func(b *Backend) {
		b.client = client
		b.external = client != nil
	}
}

// NewBackend creates a detached Redis backend.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		timeout: 5 * time.Second,
		log:     logging.For("redis"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach connects to the server named in config.Redis and pings it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if b.prefix == "" {
		b.prefix = config.Redis.Prefix
	}
	if b.prefix == "" {
		b.prefix = DefaultPrefix
	}
	if !b.external {
		b.client = backend.NewClient(&backend.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
	}

	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.client.Ping(ctx).Err(); err != nil {
		if !b.external {
			b.client.Close()
			b.client = nil
		}
		return fmt.Errorf("connecting to redis: %w", err)
	}
	b.attached = true
	b.log.Debug().Str("addr", config.Redis.Addr).Str("prefix", b.prefix).Msg("attached")
	return nil
}

// Detach closes the client it created. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.external {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

func (b *Backend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

func (b *Backend) key(k string) string {
	return b.prefix + k
}

func (b *Backend) indexKey() string {
	return b.prefix + "index"
}

// Get returns the blob stored under key.
func (b *Backend) Get(key string) (types.Blob, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	ctx, cancel := b.ctx()
	defer cancel()

	val, err := b.client.Get(ctx, b.key(key)).Result()
	if errors.Is(err, backend.Nil) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	var blob types.Blob
	if err := json.Unmarshal([]byte(val), &blob); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return blob, nil
}

// Put replaces the blob under key and indexes the key.
func (b *Backend) Put(key string, blob types.Blob) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if key == "" {
		return types.ErrEmptyKey
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	ctx, cancel := b.ctx()
	defer cancel()
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.key(key), data, 0)
	pipe.ZAdd(ctx, b.indexKey(), backend.Z{Score: 0, Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save %s to redis: %w", key, err)
	}
	return nil
}

// Delete removes key from the store and the index.
func (b *Backend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	ctx, cancel := b.ctx()
	defer cancel()
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, b.key(key))
	pipe.ZRem(ctx, b.indexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// Keys returns the indexed keys. Every member shares score 0, so Redis
// returns them in lexical order.
func (b *Backend) Keys() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	ctx, cancel := b.ctx()
	defer cancel()
	keys, err := b.client.ZRange(ctx, b.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Snapshot returns every indexed blob. Index members whose value is gone
// are skipped.
func (b *Backend) Snapshot() (map[string]types.Blob, error) {
	keys, err := b.Keys()
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	out := make(map[string]types.Blob, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.key(k)
	}
	ctx, cancel := b.ctx()
	defer cancel()
	vals, err := b.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var blob types.Blob
		if err := json.Unmarshal([]byte(s), &blob); err != nil {
			b.log.Warn().Err(err).Str("key", keys[i]).Msg("skipping unreadable entry")
			continue
		}
		out[keys[i]] = blob
	}
	return out, nil
}
