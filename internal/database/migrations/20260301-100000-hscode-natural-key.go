package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260301-100000",
		Description: "Collapse duplicate hscodes onto (code, country_id) and enforce uniqueness",
		Up: []string{
			// Databases written by older importers may hold several rows per
			// (code, country_id). Those importers only appended, so the highest
			// id carries the latest import; keep it and move child rows onto it.
			`UPDATE customs_clearance_requirements
				SET hscode_id = (
					SELECT MAX(k.id) FROM hscodes k
					JOIN hscodes d ON d.code = k.code AND d.country_id = k.country_id
					WHERE d.id = customs_clearance_requirements.hscode_id
				)`,
			`UPDATE ciq_inspection_requirements
				SET hscode_id = (
					SELECT MAX(k.id) FROM hscodes k
					JOIN hscodes d ON d.code = k.code AND d.country_id = k.country_id
					WHERE d.id = ciq_inspection_requirements.hscode_id
				)`,
			`DELETE FROM hscodes
				WHERE id NOT IN (SELECT MAX(id) FROM hscodes GROUP BY code, country_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_hscodes_code_country ON hscodes(code, country_id)`,
		},
	})
}
