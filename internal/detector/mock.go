package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []Hand
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands ...Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return NewResult(m.hands...), nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// OpenPalm returns a right hand with all five fingers raised.
// The thumb points towards smaller x, the other fingertips sit above their PIP joints.
func OpenPalm() Hand {
	hand := Hand{Handedness: "Right", Score: 0.97}

	hand.Landmarks[Wrist] = Landmark{X: 0.50, Y: 0.80}

	hand.Landmarks[ThumbCMC] = Landmark{X: 0.45, Y: 0.75, Z: -0.01}
	hand.Landmarks[ThumbMCP] = Landmark{X: 0.40, Y: 0.70, Z: -0.02}
	hand.Landmarks[ThumbIP] = Landmark{X: 0.35, Y: 0.65, Z: -0.02}
	hand.Landmarks[ThumbTip] = Landmark{X: 0.30, Y: 0.60, Z: -0.03}

	setFinger(&hand, IndexMCP, 0.45, 0.55, 0.45, 0.38, 0.32)
	setFinger(&hand, MiddleMCP, 0.50, 0.54, 0.43, 0.35, 0.28)
	setFinger(&hand, RingMCP, 0.55, 0.55, 0.45, 0.38, 0.32)
	setFinger(&hand, PinkyMCP, 0.60, 0.58, 0.50, 0.45, 0.40)

	return hand
}

// Fist returns a right hand with every finger folded.
func Fist() Hand {
	hand := Hand{Handedness: "Right", Score: 0.95}

	hand.Landmarks[Wrist] = Landmark{X: 0.50, Y: 0.80}

	hand.Landmarks[ThumbCMC] = Landmark{X: 0.45, Y: 0.75, Z: -0.01}
	hand.Landmarks[ThumbMCP] = Landmark{X: 0.42, Y: 0.70, Z: -0.02}
	hand.Landmarks[ThumbIP] = Landmark{X: 0.44, Y: 0.64, Z: -0.03}
	hand.Landmarks[ThumbTip] = Landmark{X: 0.48, Y: 0.62, Z: -0.03}

	setFinger(&hand, IndexMCP, 0.45, 0.55, 0.50, 0.56, 0.60)
	setFinger(&hand, MiddleMCP, 0.50, 0.54, 0.49, 0.55, 0.59)
	setFinger(&hand, RingMCP, 0.55, 0.55, 0.50, 0.56, 0.60)
	setFinger(&hand, PinkyMCP, 0.60, 0.58, 0.54, 0.59, 0.62)

	return hand
}

// PointingUp returns a fist with only the index finger raised.
func PointingUp() Hand {
	hand := Fist()
	hand.Score = 0.93
	setFinger(&hand, IndexMCP, 0.45, 0.55, 0.45, 0.38, 0.32)
	return hand
}

// setFinger places the four joints of a finger on a vertical line at x.
func setFinger(hand *Hand, mcp int, x, mcpY, pipY, dipY, tipY float64) {
	hand.Landmarks[mcp] = Landmark{X: x, Y: mcpY}
	hand.Landmarks[mcp+1] = Landmark{X: x, Y: pipY, Z: -0.01}
	hand.Landmarks[mcp+2] = Landmark{X: x, Y: dipY, Z: -0.02}
	hand.Landmarks[mcp+3] = Landmark{X: x, Y: tipY, Z: -0.03}
}
