package tracker

import (
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/meter"
)

func newFrame(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func TestTracker_Process(t *testing.T) {
	t.Run("stores the result", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetHands(detector.OpenPalm())
		tr := New(mock)

		frame := newFrame(720, 1280)
		defer frame.Close()

		result, err := tr.Process(&frame)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result.Len() != 1 || tr.Result().Len() != 1 {
			t.Errorf("expected 1 hand, got %d / %d", result.Len(), tr.Result().Len())
		}
	})

	t.Run("replaces the previous result", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetHands(detector.OpenPalm(), detector.Fist())
		tr := New(mock)

		frame := newFrame(480, 640)
		defer frame.Close()

		tr.Process(&frame)
		mock.SetHands()
		tr.Process(&frame)

		if !tr.Result().Empty() {
			t.Errorf("expected empty result, got %d hands", tr.Result().Len())
		}
	})

	t.Run("detector error clears the result", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetHands(detector.OpenPalm())
		tr := New(mock)

		frame := newFrame(480, 640)
		defer frame.Close()
		tr.Process(&frame)

		boom := errors.New("boom")
		mock.SetError(boom)
		_, err := tr.Process(&frame)
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped detector error, got %v", err)
		}
		if !tr.Result().Empty() {
			t.Error("result should be empty after a failed detection")
		}
		if got := tr.FingersUp(DefaultHand); len(got) != 0 {
			t.Errorf("FingersUp() = %v, want empty", got)
		}
	})

	t.Run("empty frame", func(t *testing.T) {
		mock := detector.NewMockDetector()
		tr := New(mock)

		if _, err := tr.Process(nil); !errors.Is(err, ErrEmptyFrame) {
			t.Errorf("expected ErrEmptyFrame, got %v", err)
		}
		if mock.Calls() != 0 {
			t.Error("detector should not be called for an empty frame")
		}
	})
}

func TestTracker_FingersUp(t *testing.T) {
	frame := newFrame(720, 1280)
	defer frame.Close()

	tests := []struct {
		name      string
		hands     []detector.Hand
		handIndex int
		want      gesture.Vector
	}{
		{"no hand", nil, DefaultHand, gesture.Vector{}},
		{"open palm", []detector.Hand{detector.OpenPalm()}, DefaultHand, gesture.Vector{1, 1, 1, 1, 1}},
		{"fist", []detector.Hand{detector.Fist()}, DefaultHand, gesture.Vector{0, 0, 0, 0, 0}},
		{"second hand", []detector.Hand{detector.Fist(), detector.PointingUp()}, 1, gesture.Vector{0, 1, 0, 0, 0}},
		{"index past detected hands", []detector.Hand{detector.OpenPalm()}, 1, gesture.Vector{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := detector.NewMockDetector()
			mock.SetHands(tt.hands...)
			tr := New(mock)

			if _, err := tr.Process(&frame); err != nil {
				t.Fatalf("Process() error = %v", err)
			}

			got := tr.FingersUp(tt.handIndex)
			if !got.Equal(tt.want) {
				t.Errorf("FingersUp(%d) = %v, want %v", tt.handIndex, got, tt.want)
			}
		})
	}

	t.Run("before any processing", func(t *testing.T) {
		tr := New(detector.NewMockDetector())
		if got := tr.FingersUp(DefaultHand); got == nil || len(got) != 0 {
			t.Errorf("FingersUp() = %#v, want empty non-nil vector", got)
		}
	})
}

func TestTracker_FindPosition(t *testing.T) {
	mock := detector.NewMockDetector()
	hand := detector.OpenPalm()
	hand.Landmarks[detector.Wrist] = detector.Landmark{X: 0.5, Y: 0.5}
	mock.SetHands(hand)
	tr := New(mock)

	frame := newFrame(720, 1280)
	defer frame.Close()
	tr.Process(&frame)

	t.Run("pixel positions of the frame", func(t *testing.T) {
		positions := tr.FindPosition(&frame, DefaultHand, false)
		if len(positions) != detector.NumLandmarks {
			t.Fatalf("expected %d positions, got %d", detector.NumLandmarks, len(positions))
		}
		wrist := positions[detector.Wrist]
		if wrist.X != 640 || wrist.Y != 360 {
			t.Errorf("wrist = (%d, %d), want (640, 360)", wrist.X, wrist.Y)
		}
	})

	t.Run("missing hand index", func(t *testing.T) {
		positions := tr.FindPosition(&frame, 1, true)
		if positions == nil || len(positions) != 0 {
			t.Errorf("expected empty slice, got %#v", positions)
		}
	})

	t.Run("draw marks the frame", func(t *testing.T) {
		canvas := newFrame(720, 1280)
		defer canvas.Close()

		tr.FindPosition(&canvas, DefaultHand, true)
		if px := canvas.GetVecbAt(360, 640); px[0] != 255 || px[2] != 255 {
			t.Errorf("expected magenta marker at wrist, got %v", px)
		}
	})

	t.Run("no draw leaves frame untouched", func(t *testing.T) {
		canvas := newFrame(720, 1280)
		defer canvas.Close()

		tr.FindPosition(&canvas, DefaultHand, false)
		if px := canvas.GetVecbAt(360, 640); px[0] != 0 {
			t.Errorf("expected untouched pixel, got %v", px)
		}
	})
}

func TestTracker_DrawHandLandmarks(t *testing.T) {
	tr := New(detector.NewMockDetector())
	frame := newFrame(480, 640)
	defer frame.Close()

	out := tr.DrawHandLandmarks(&frame, detector.Result{})
	if out != &frame {
		t.Error("expected the same frame back")
	}
}

func TestTracker_FPS(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := New(detector.NewMockDetector(), WithMeter(meter.NewFPSWithClock(func() time.Time { return now })))

	if got := tr.FPS(); got != 0 {
		t.Errorf("first FPS() = %d, want 0", got)
	}
	if got := tr.FPS(); got != 0 {
		t.Errorf("FPS() with identical timestamps = %d, want 0", got)
	}
	now = now.Add(time.Second)
	if got := tr.FPS(); got != 1 {
		t.Errorf("FPS() = %d, want 1", got)
	}
}

func TestTracker_Close(t *testing.T) {
	mock := detector.NewMockDetector()
	tr := New(mock)

	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.Closed() {
		t.Error("expected detector to be closed")
	}
}
