package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per run of the capture loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			camera_id INTEGER NOT NULL,
			static_image INTEGER NOT NULL DEFAULT 0,
			max_hands INTEGER NOT NULL,
			detection_confidence REAL NOT NULL,
			tracking_confidence REAL NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Finger events table - a row each time a hand's finger vector changes
		`CREATE TABLE IF NOT EXISTS finger_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			hand_index INTEGER NOT NULL,
			handedness TEXT NOT NULL DEFAULT '',
			fingers TEXT NOT NULL,
			raised INTEGER NOT NULL,
			fps INTEGER NOT NULL,
			recorded_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_finger_events_session_id ON finger_events(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
