package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260301-090000",
		Description: "Initial schema",
		Up: []string{
			// Countries - one row per schedule, created lazily by importers
			`CREATE TABLE IF NOT EXISTS countries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT UNIQUE NOT NULL,
				iso_code TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_countries_iso_code ON countries(iso_code)`,

			// HS codes - one tariff line per (code, country)
			// extra_info is a JSON object or NULL
			`CREATE TABLE IF NOT EXISTS hscodes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				code TEXT NOT NULL,
				description TEXT,
				country_id INTEGER NOT NULL REFERENCES countries(id),
				duty TEXT,
				extra_info TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_hscodes_code ON hscodes(code)`,
			`CREATE INDEX IF NOT EXISTS idx_hscodes_country_id ON hscodes(country_id)`,

			// Customs clearance requirements (China schedule)
			`CREATE TABLE IF NOT EXISTS customs_clearance_requirements (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				hscode_id INTEGER NOT NULL REFERENCES hscodes(id) ON DELETE CASCADE,
				customs_code TEXT,
				supervision_documents_name TEXT,
				issuing_authority TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_customs_requirements_hscode_id ON customs_clearance_requirements(hscode_id)`,

			// CIQ inspection and quarantine requirements (China schedule)
			`CREATE TABLE IF NOT EXISTS ciq_inspection_requirements (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				hscode_id INTEGER NOT NULL REFERENCES hscodes(id) ON DELETE CASCADE,
				ciq_inspection_code TEXT,
				ciq_supervision_mode TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_ciq_requirements_hscode_id ON ciq_inspection_requirements(hscode_id)`,
		},
	})
}
