// Package store provides the public factory for Registry backends while
// keeping the implementations internal.
package store

import (
	"fmt"

	"github.com/mesh-intelligence/nftmeta/internal/memory"
	"github.com/mesh-intelligence/nftmeta/internal/redis"
	"github.com/mesh-intelligence/nftmeta/internal/sqlite"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// New returns a detached Registry for the named backend.
// Returns ErrBackendUnknown for anything else.
//
// Example:
//
//	reg, err := store.New(types.BackendSQLite)
//	err = reg.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".nftmeta",
//	})
//	defer reg.Detach()
func New(backend string) (types.Registry, error) {
	switch backend {
	case types.BackendMemory:
		return memory.NewBackend(), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendRedis:
		return redis.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	}
	return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, backend)
}

// Open creates the backend named by config and attaches it.
func Open(config types.Config) (types.Registry, error) {
	reg, err := New(config.Backend)
	if err != nil {
		return nil, err
	}
	if err := reg.Attach(config); err != nil {
		return nil, fmt.Errorf("attaching %s backend: %w", config.Backend, err)
	}
	return reg, nil
}
