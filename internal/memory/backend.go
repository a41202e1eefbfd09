// Package memory implements the process-local registry: a write-through
// cache that lives as long as the process.
package memory

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// Backend implements types.Registry in memory. Blobs are stored in their
// JSON-decoded form so every backend hands back the same shapes.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	entries  map[string]types.Blob
}

// NewBackend returns a detached in-memory backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach starts an empty store. Returns ErrAlreadyAttached if attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	b.entries = make(map[string]types.Blob)
	b.attached = true
	return nil
}

// Detach drops every entry. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	b.entries = nil
	return nil
}

// Get returns a copy of the blob stored under key.
func (b *Backend) Get(key string) (types.Blob, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	blob, ok := b.entries[key]
	if !ok {
		return nil, types.ErrNotFound
	}
	return types.CloneBlob(blob), nil
}

// Put replaces the blob stored under key.
func (b *Backend) Put(key string, blob types.Blob) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if key == "" {
		return types.ErrEmptyKey
	}
	normalized, err := normalize(blob)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	b.entries[key] = normalized
	return nil
}

// Delete removes key. Absent keys succeed.
func (b *Backend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	delete(b.entries, key)
	return nil
}

// Keys returns the stored keys in ascending order.
func (b *Backend) Keys() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Snapshot returns a copy of every stored blob.
func (b *Backend) Snapshot() (map[string]types.Blob, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	out := make(map[string]types.Blob, len(b.entries))
	for k, v := range b.entries {
		out[k] = types.CloneBlob(v)
	}
	return out, nil
}

// normalize round-trips blob through JSON, which both deep-copies it and
// rejects values that cannot be embedded in an interchange file.
func normalize(blob types.Blob) (types.Blob, error) {
	raw, err := json.Marshal(blob)
	if err != nil {
		return nil, err
	}
	var out types.Blob
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
