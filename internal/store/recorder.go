package store

import (
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// Recorder writes gesture signals of one session, skipping frames where a
// hand's finger vector did not change.
type Recorder struct {
	events    *EventRepository
	sessionID string

	mu   sync.Mutex
	last map[int]string
}

// NewRecorder creates a Recorder for an existing session.
func NewRecorder(s *Store, sessionID string) *Recorder {
	return &Recorder{
		events:    s.Events(),
		sessionID: sessionID,
		last:      make(map[int]string),
	}
}

// SessionID returns the session the recorder writes to.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Publish implements gesture.Publisher.
func (r *Recorder) Publish(sig gesture.Signal) error {
	fingers := sig.Fingers.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.last[sig.Hand]; ok && prev == fingers {
		return nil
	}
	// nothing to record until a hand has been seen
	if _, ok := r.last[sig.Hand]; !ok && fingers == "" {
		return nil
	}

	err := r.events.Append(&Event{
		SessionID:  r.sessionID,
		Frame:      sig.Frame,
		HandIndex:  sig.Hand,
		Handedness: sig.Handedness,
		Fingers:    fingers,
		Raised:     sig.Fingers.Count(),
		FPS:        sig.FPS,
		RecordedAt: sig.Timestamp,
	})
	if err != nil {
		return err
	}

	r.last[sig.Hand] = fingers
	return nil
}
