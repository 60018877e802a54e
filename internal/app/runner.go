// Package app runs the live capture loop: read a frame, detect hands, draw
// the overlay, publish finger vectors and show the result until the exit key
// is pressed.
package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/tracker"
)

// Display shows annotated frames and reports key presses.
// *gocv.Window satisfies it.
type Display interface {
	IMShow(img gocv.Mat)
	WaitKey(delay int) int
	Close() error
}

// FrameSink receives every annotated frame after drawing.
type FrameSink interface {
	Update(frame *gocv.Mat) error
}

// Config holds loop settings.
type Config struct {
	ExitKey        byte
	MarkerRadius   int // 0 disables the per-landmark markers
	PrintPositions bool
	Output         io.Writer
	SessionID      string
}

// DefaultConfig matches the plain live loop.
func DefaultConfig() Config {
	return Config{
		ExitKey:        'q',
		MarkerRadius:   25,
		PrintPositions: true,
		Output:         os.Stdout,
	}
}

// Runner owns the camera, the display and the tracker for one run of the loop.
type Runner struct {
	config     Config
	camera     capture.Camera
	display    Display
	tracker    *tracker.Tracker
	renderer   *overlay.Renderer
	publishers []gesture.Publisher
	sink       FrameSink
	frames     uint64
	prevHands  int
}

// Option configures a Runner.
type Option func(*Runner)

// WithPublisher adds a receiver of per-frame gesture signals.
func WithPublisher(p gesture.Publisher) Option {
	return func(r *Runner) { r.publishers = append(r.publishers, p) }
}

// WithFrameSink sets where annotated frames are copied to.
func WithFrameSink(s FrameSink) Option {
	return func(r *Runner) { r.sink = s }
}

// New creates a Runner. The runner takes ownership of camera, display and
// tracker and closes all three when Run returns.
func New(config Config, camera capture.Camera, display Display, t *tracker.Tracker, opts ...Option) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	r := &Runner{
		config:   config,
		camera:   camera,
		display:  display,
		tracker:  t,
		renderer: overlay.NewRenderer(overlay.DefaultStyle()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Frames returns how many frames have been processed.
func (r *Runner) Frames() uint64 {
	return r.frames
}

// Run executes the loop until the exit key is pressed or a capture or
// detection error occurs. Resources are released on every return path.
func (r *Runner) Run() error {
	defer func() {
		if err := r.tracker.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}()
	defer func() {
		if err := r.display.Close(); err != nil {
			log.Printf("Error closing display: %v", err)
		}
	}()

	if err := r.camera.Open(); err != nil {
		return err
	}
	defer func() {
		if err := r.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	log.Printf("Capture loop started (press %q to quit)", r.config.ExitKey)

	for {
		if err := r.step(); err != nil {
			return err
		}

		if r.display.WaitKey(1)&0xFF == int(r.config.ExitKey) {
			log.Printf("Capture loop stopped after %d frames", r.frames)
			return nil
		}
	}
}

// step processes and shows one frame.
func (r *Runner) step() error {
	frame, err := r.camera.ReadFrame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	result, err := r.tracker.Process(frame)
	if err != nil {
		return err
	}
	r.frames++

	for i := 0; i < result.Len(); i++ {
		positions := r.tracker.FindPosition(frame, i, false)
		if r.config.PrintPositions {
			for _, p := range positions {
				fmt.Fprintf(r.config.Output, "%d %d %d\n", p.ID, p.X, p.Y)
			}
		}
		if r.config.MarkerRadius > 0 {
			r.renderer.DrawMarkers(frame, positions, r.config.MarkerRadius, overlay.Magenta)
		}
	}
	r.tracker.DrawHandLandmarks(frame, result)

	fps := r.tracker.FPS()
	r.publish(result.Len(), fps)
	r.renderer.DrawFPS(frame, fps)

	if r.sink != nil {
		if err := r.sink.Update(frame); err != nil {
			log.Printf("Error updating frame sink: %v", err)
		}
	}

	r.display.IMShow(*frame)
	return nil
}

// publish sends one signal per detected hand and an empty signal for every
// hand index that was tracked on the previous frame but is gone now. With no
// hand at all the default hand always gets an empty signal.
func (r *Runner) publish(hands, fps int) {
	prev := r.prevHands
	r.prevHands = hands
	if len(r.publishers) == 0 {
		return
	}

	now := time.Now()
	empty := func(hand int) gesture.Signal {
		return gesture.Signal{
			SessionID: r.config.SessionID,
			Frame:     r.frames,
			Hand:      hand,
			Fingers:   gesture.Vector{},
			FPS:       fps,
			Timestamp: now,
		}
	}

	signals := make([]gesture.Signal, 0, max(hands, prev, 1))
	for i := 0; i < hands; i++ {
		hand, _ := r.tracker.Result().Hand(i)
		fingers := r.tracker.FingersUp(i)
		signals = append(signals, gesture.Signal{
			SessionID:  r.config.SessionID,
			Frame:      r.frames,
			Hand:       i,
			Handedness: hand.Handedness,
			Fingers:    fingers,
			Raised:     fingers.Count(),
			FPS:        fps,
			Timestamp:  now,
		})
	}
	if hands == 0 {
		signals = append(signals, empty(tracker.DefaultHand))
	}
	for i := max(hands, tracker.DefaultHand+1); i < prev; i++ {
		signals = append(signals, empty(i))
	}

	for _, sig := range signals {
		for _, p := range r.publishers {
			if err := p.Publish(sig); err != nil {
				log.Printf("Error publishing signal: %v", err)
			}
		}
	}
}
