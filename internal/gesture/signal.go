package gesture

import "time"

// Signal is the gesture observed for one hand in one frame.
type Signal struct {
	SessionID  string    `json:"session_id"`
	Frame      uint64    `json:"frame"`
	Hand       int       `json:"hand"`
	Handedness string    `json:"handedness"`
	Fingers    Vector    `json:"fingers"`
	Raised     int       `json:"raised"`
	FPS        int       `json:"fps"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher receives signals from the capture loop.
// Publish is called on the loop goroutine and must not block for long.
type Publisher interface {
	Publish(sig Signal) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(sig Signal) error

// Publish calls f(sig).
func (f PublisherFunc) Publish(sig Signal) error {
	return f(sig)
}
