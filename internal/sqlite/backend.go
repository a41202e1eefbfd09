// Package sqlite implements the registry backend that survives restarts:
// SQLite is the query engine and registry.jsonl in DataDir is the source of
// truth, rewritten atomically after every mutation.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/nftmeta/internal/logging"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// dbFile is the scratch database rebuilt from registry.jsonl on Attach.
const dbFile = "registry.db"

// Backend implements types.Registry on SQLite plus a JSONL file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	log      zerolog.Logger
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{log: logging.For("sqlite")}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, rebuilds the SQLite schema and
// loads registry.jsonl into it.
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

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The JSONL file is authoritative; start from a fresh database.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := initJSONLFile(dataDir); err != nil {
		db.Close()
		return err
	}
	if err := loadJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.attached = true
	b.log.Debug().Str("data_dir", dataDir).Msg("attached")
	return nil
}

// Detach closes the SQLite connection. After Detach, all operations return
// ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Get returns the blob stored under key.
func (b *Backend) Get(key string) (types.Blob, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	var raw string
	err := b.db.QueryRow(`SELECT blob FROM entries WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", key, err)
	}
	return decodeBlob(raw)
}

// Put replaces the blob stored under key and rewrites registry.jsonl.
func (b *Backend) Put(key string, blob types.Blob) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if key == "" {
		return types.ErrEmptyKey
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = b.db.Exec(
		`INSERT INTO entries (key, revision, blob, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET revision = excluded.revision, blob = excluded.blob, updated_at = excluded.updated_at`,
		key, generateUUID(), string(raw), now,
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return b.persistLocked()
}

// Delete removes key and rewrites registry.jsonl. Absent keys succeed.
func (b *Backend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	res, err := b.db.Exec(`DELETE FROM entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return b.persistLocked()
}

// Keys returns every stored key in ascending order.
func (b *Backend) Keys() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	rows, err := b.db.Query(`SELECT key FROM entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Snapshot returns every stored blob.
func (b *Backend) Snapshot() (map[string]types.Blob, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	rows, err := b.db.Query(`SELECT key, blob FROM entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	defer rows.Close()

	out := make(map[string]types.Blob)
	for rows.Next() {
		var k, raw string
		if err := rows.Scan(&k, &raw); err != nil {
			return nil, err
		}
		blob, err := decodeBlob(raw)
		if err != nil {
			b.log.Warn().Err(err).Str("key", k).Msg("skipping unreadable entry")
			continue
		}
		out[k] = blob
	}
	return out, rows.Err()
}

// persistLocked rewrites registry.jsonl from the entries table.
// The caller must hold b.mu.
func (b *Backend) persistLocked() error {
	rows, err := b.db.Query(`SELECT key, revision, blob, updated_at FROM entries ORDER BY key`)
	if err != nil {
		return fmt.Errorf("reading entries: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var e entryRecord
		var raw string
		if err := rows.Scan(&e.Key, &e.Revision, &raw, &e.UpdatedAt); err != nil {
			return err
		}
		e.Blob = json.RawMessage(raw)
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding entry %s: %w", e.Key, err)
		}
		records = append(records, line)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.dataDir, registryJSONL), records)
}

func decodeBlob(raw string) (types.Blob, error) {
	var blob types.Blob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return nil, fmt.Errorf("decoding blob: %w", err)
	}
	return blob, nil
}

// generateUUID generates a UUID v7 revision id for a stored entry.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
