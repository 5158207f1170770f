package db

import "database/sql"

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(). When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Key-value namespace (completed pickups live under one key)
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Domain events (best-effort audit trail)
CREATE TABLE IF NOT EXISTS domain_events (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	amount REAL NOT NULL DEFAULT 0,
	occurred_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_domain_events_name ON domain_events(name);
CREATE INDEX IF NOT EXISTS idx_domain_events_occurred ON domain_events(occurred_at);
`

// InitSchema creates the database schema on conn
func InitSchema(conn *sql.DB) error {
	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		// schema_version table exists - run any pending migrations
		return RunMigrations(conn)
	}

	// Fresh install - create modern schema directly
	if _, err := conn.Exec(SchemaSQL); err != nil {
		return err
	}
	if _, err := conn.Exec(schemaVersionSQL); err != nil {
		return err
	}
	// Mark all migrations as applied for fresh installs
	for _, m := range migrations {
		if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
