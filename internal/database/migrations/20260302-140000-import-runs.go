package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260302-140000",
		Description: "Import run audit log",
		Up: []string{
			// id is a ULID; input_hash is the hex BLAKE2b-256 digest of the input artifact
			`CREATE TABLE IF NOT EXISTS import_runs (
				id TEXT PRIMARY KEY,
				source TEXT NOT NULL,
				country_id INTEGER REFERENCES countries(id),
				input_path TEXT NOT NULL,
				input_hash TEXT,
				records INTEGER NOT NULL DEFAULT 0,
				skipped INTEGER NOT NULL DEFAULT 0,
				started_at TEXT NOT NULL,
				completed_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_import_runs_source ON import_runs(source)`,
			`CREATE INDEX IF NOT EXISTS idx_import_runs_started_at ON import_runs(started_at)`,
		},
	})
}
