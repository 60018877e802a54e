package store

import (
	"database/sql"
	"time"
)

// Event is a recorded change of one hand's finger vector.
type Event struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Frame      uint64    `json:"frame"`
	HandIndex  int       `json:"hand_index"`
	Handedness string    `json:"handedness"`
	Fingers    string    `json:"fingers"` // e.g. "01100"; empty when the hand was lost
	Raised     int       `json:"raised"`
	FPS        int       `json:"fps"`
	RecordedAt time.Time `json:"recorded_at"`
}

// EventRepository provides access to finger events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append inserts an event and sets its ID.
func (r *EventRepository) Append(e *Event) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO finger_events (session_id, frame, hand_index, handedness, fingers, raised, fps, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, int64(e.Frame), e.HandIndex, e.Handedness, e.Fingers, e.Raised, e.FPS, e.RecordedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// ListBySession returns the events of a session in recording order.
func (r *EventRepository) ListBySession(sessionID string) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, frame, hand_index, handedness, fingers, raised, fps, recorded_at
		 FROM finger_events
		 WHERE session_id = ?
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var frame int64
		if err := rows.Scan(&e.ID, &e.SessionID, &frame, &e.HandIndex, &e.Handedness,
			&e.Fingers, &e.Raised, &e.FPS, &e.RecordedAt); err != nil {
			return nil, err
		}
		e.Frame = uint64(frame)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
