// This file implements JSONL loading for startup.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// loadJSONL reads registry.jsonl from dataDir and inserts every entry into
// the entries table. Loading is transactional: all succeed or the database
// remains empty. Malformed lines and entries without a key are skipped;
// unknown fields are ignored.
func loadJSONL(db *sql.DB, dataDir string) error {
	records, err := readJSONL(filepath.Join(dataDir, registryJSONL))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO entries (key, revision, blob, updated_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert for entries: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var e entryRecord
		if err := json.Unmarshal(rec, &e); err != nil {
			continue
		}
		if e.Key == "" || len(e.Blob) == 0 || !json.Valid(e.Blob) {
			continue
		}
		if e.Revision == "" {
			e.Revision = generateUUID()
		}
		if _, err := stmt.Exec(e.Key, e.Revision, string(e.Blob), e.UpdatedAt); err != nil {
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}
