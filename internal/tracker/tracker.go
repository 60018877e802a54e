// Package tracker bundles detection, landmark drawing, finger classification
// and frame-rate measurement behind one embeddable object.
package tracker

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/meter"
	"github.com/ayusman/mudra/internal/overlay"
)

// DefaultHand is the hand index used when a caller has no preference.
// No handedness disambiguation is done: it is whichever hand the model reported first.
const DefaultHand = 0

// PositionMarkerRadius is the radius of markers drawn by FindPosition.
const PositionMarkerRadius = 10

// ErrEmptyFrame is returned by Process for a nil or empty frame.
var ErrEmptyFrame = errors.New("empty frame")

// Tracker holds the most recent detection and the frame-rate state.
// It is not safe for concurrent use.
type Tracker struct {
	detector detector.Detector
	renderer *overlay.Renderer
	fps      *meter.FPS

	result detector.Result
	width  int
	height int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRenderer replaces the default renderer.
func WithRenderer(r *overlay.Renderer) Option {
	return func(t *Tracker) { t.renderer = r }
}

// WithMeter replaces the default wall-clock FPS meter.
func WithMeter(m *meter.FPS) Option {
	return func(t *Tracker) { t.fps = m }
}

// New creates a Tracker around d. The detector's configuration is fixed
// at its own construction; the tracker never changes it.
func New(d detector.Detector, opts ...Option) *Tracker {
	t := &Tracker{
		detector: d,
		renderer: overlay.NewRenderer(overlay.DefaultStyle()),
		fps:      meter.NewFPS(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Process runs detection on frame and keeps the result, replacing the previous one.
func (t *Tracker) Process(frame *gocv.Mat) (detector.Result, error) {
	t.result = detector.Result{}

	if frame == nil || frame.Empty() {
		return t.result, ErrEmptyFrame
	}
	t.width, t.height = frame.Cols(), frame.Rows()

	result, err := t.detector.Detect(frame)
	if err != nil {
		return t.result, fmt.Errorf("detect hands: %w", err)
	}

	t.result = result
	return result, nil
}

// Result returns the result of the last Process call.
func (t *Tracker) Result() detector.Result {
	return t.result
}

// DrawHandLandmarks draws the skeleton of every hand in result onto frame.
func (t *Tracker) DrawHandLandmarks(frame *gocv.Mat, result detector.Result) *gocv.Mat {
	t.renderer.DrawHands(frame, result)
	return frame
}

// FindPosition returns the pixel positions of the hand at handIndex in the last
// result, scaled to frame. It returns an empty slice when there is no such hand.
// When draw is true a marker is drawn on frame at every position.
func (t *Tracker) FindPosition(frame *gocv.Mat, handIndex int, draw bool) []detector.Position {
	hand, ok := t.result.Hand(handIndex)
	if !ok || frame == nil || frame.Empty() {
		return []detector.Position{}
	}

	positions := detector.PixelPositions(hand, frame.Cols(), frame.Rows())
	if draw {
		t.renderer.DrawMarkers(frame, positions, PositionMarkerRadius, overlay.Magenta)
	}
	return positions
}

// FingersUp classifies the hand at handIndex in the last result using the
// dimensions of the frame it was detected in. It returns an empty Vector when
// there is no such hand.
func (t *Tracker) FingersUp(handIndex int) gesture.Vector {
	hand, ok := t.result.Hand(handIndex)
	if !ok {
		return gesture.Vector{}
	}
	return gesture.Classify(hand, t.width, t.height)
}

// FPS ticks the frame-rate meter and returns the current frames per second.
func (t *Tracker) FPS() int {
	return t.fps.Tick()
}

// Close releases the detector.
func (t *Tracker) Close() error {
	return t.detector.Close()
}
