// Package registrytest holds the behavior every types.Registry backend
// must share.
package registrytest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// Factory returns a fresh, detached registry. Backends that need setup
// (temp dirs, servers) do it here and register cleanup on t.
type Factory func(t *testing.T) (types.Registry, types.Config)

// Run exercises the shared Registry contract against one backend.
func Run(t *testing.T, newRegistry Factory) {
	t.Run("lifecycle", func(t *testing.T) {
		r, cfg := newRegistry(t)
		require.NoError(t, r.Attach(cfg))
		assert.ErrorIs(t, r.Attach(cfg), types.ErrAlreadyAttached)
		require.NoError(t, r.Detach())
		require.NoError(t, r.Detach(), "Detach must be idempotent")

		_, err := r.Get("x")
		assert.ErrorIs(t, err, types.ErrDetached)
		assert.ErrorIs(t, r.Put("x", types.Blob{}), types.ErrDetached)
		assert.ErrorIs(t, r.Delete("x"), types.ErrDetached)
		_, err = r.Keys()
		assert.ErrorIs(t, err, types.ErrDetached)
		_, err = r.Snapshot()
		assert.ErrorIs(t, err, types.ErrDetached)
	})

	t.Run("put replaces and get copies", func(t *testing.T) {
		r := attach(t, newRegistry)

		require.NoError(t, r.Put("abcd1234", types.Blob{
			"collectionType": "multi",
			"valProps":       map[string]any{"health": map[string]any{"default": 0, "max": 100}},
			"nodes":          []string{"Cube", "Sphere"},
		}))
		require.NoError(t, r.Put("abcd1234", types.Blob{"collectionType": "single"}))

		got, err := r.Get("abcd1234")
		require.NoError(t, err)
		assert.Equal(t, types.Blob{"collectionType": "single"}, got, "Put must replace, never merge")

		got["collectionType"] = "mutated"
		again, err := r.Get("abcd1234")
		require.NoError(t, err)
		assert.Equal(t, "single", again["collectionType"])
	})

	t.Run("json shapes", func(t *testing.T) {
		r := attach(t, newRegistry)

		require.NoError(t, r.Put(types.ContractKey, types.Blob{
			"nftPrice":  0.0125,
			"maxSupply": 100,
			"nodes":     []string{"a"},
		}))
		got, err := r.Get(types.ContractKey)
		require.NoError(t, err)
		assert.Equal(t, 0.0125, got["nftPrice"])
		assert.Equal(t, float64(100), got["maxSupply"])
		assert.Equal(t, []any{"a"}, got["nodes"])
	})

	t.Run("missing and empty keys", func(t *testing.T) {
		r := attach(t, newRegistry)

		_, err := r.Get("nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, r.Delete("nope"))
		assert.ErrorIs(t, r.Put("", types.Blob{}), types.ErrEmptyKey)
	})

	t.Run("keys sorted and snapshot", func(t *testing.T) {
		r := attach(t, newRegistry)

		for _, k := range []string{"zz", types.ContractKey, "aa"} {
			require.NoError(t, r.Put(k, types.Blob{"k": k}))
		}
		keys, err := r.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"aa", types.ContractKey, "zz"}, keys)

		require.NoError(t, r.Delete("zz"))
		snap, err := r.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, map[string]types.Blob{
			"aa":              {"k": "aa"},
			types.ContractKey: {"k": types.ContractKey},
		}, snap)
	})

	t.Run("unencodable blob", func(t *testing.T) {
		r := attach(t, newRegistry)
		assert.Error(t, r.Put("bad", types.Blob{"fn": func() {}}))
		_, err := r.Get("bad")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func attach(t *testing.T, newRegistry Factory) types.Registry {
	t.Helper()
	r, cfg := newRegistry(t)
	require.NoError(t, r.Attach(cfg))
	t.Cleanup(func() { _ = r.Detach() })
	return r
}
