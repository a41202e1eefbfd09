package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/nftmeta/internal/testutil/registrytest"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

func sqliteConfig(dir string) types.Config {
	return types.Config{Backend: types.BackendSQLite, DataDir: dir}
}

func TestRegistryContract(t *testing.T) {
	registrytest.Run(t, func(t *testing.T) (types.Registry, types.Config) {
		return NewBackend(), sqliteConfig(t.TempDir())
	})
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	if err := b.Attach(sqliteConfig(tmpDir)); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	for _, name := range []string{dbFile, registryJSONL} {
		if _, err := os.Stat(filepath.Join(tmpDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
	info, err := os.Stat(filepath.Join(tmpDir, registryJSONL))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty %s, got %d bytes", registryJSONL, info.Size())
	}
}

func TestBackend_AttachCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	b := NewBackend()
	if err := b.Attach(sqliteConfig(dir)); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestBackend_PersistenceAcrossRestarts(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := sqliteConfig(tmpDir)

	b := NewBackend()
	if err := b.Attach(cfg); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := b.Put("abcd1234", types.Blob{"collection_name": "Hats", "nodes": []string{"Cap"}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := b.Put(types.ContractKey, types.Blob{"nftType": "HVYC"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := b.Delete(types.ContractKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	reopened := NewBackend()
	if err := reopened.Attach(cfg); err != nil {
		t.Fatalf("second Attach failed: %v", err)
	}
	defer reopened.Detach()

	keys, err := reopened.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "abcd1234" {
		t.Fatalf("expected [abcd1234], got %v", keys)
	}
	blob, err := reopened.Get("abcd1234")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if blob["collection_name"] != "Hats" {
		t.Errorf("collection_name = %v, want Hats", blob["collection_name"])
	}
}
