package sqlite

// Schema DDL for the registry store.
const (
	createEntries = `CREATE TABLE entries (
    key TEXT PRIMARY KEY,
    revision TEXT NOT NULL,
    blob TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxEntriesUpdated = `CREATE INDEX idx_entries_updated ON entries(updated_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createEntries,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxEntriesUpdated,
}
