package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResult(t *testing.T) {
	t.Run("zero value has no hands", func(t *testing.T) {
		var r Result
		if !r.Empty() {
			t.Error("expected zero Result to be empty")
		}
		if r.Len() != 0 {
			t.Errorf("expected Len 0, got %d", r.Len())
		}
		if _, ok := r.Hand(0); ok {
			t.Error("expected no hand at index 0")
		}
		if r.Hands() != nil {
			t.Error("expected nil hands")
		}
	})

	t.Run("NewResult without hands is empty", func(t *testing.T) {
		if !NewResult().Empty() {
			t.Error("expected empty result")
		}
	})

	t.Run("hand lookup by index", func(t *testing.T) {
		r := NewResult(OpenPalm(), Fist())

		if r.Empty() || r.Len() != 2 {
			t.Fatalf("expected 2 hands, got %d", r.Len())
		}

		second, ok := r.Hand(1)
		if !ok {
			t.Fatal("expected hand at index 1")
		}
		if second != Fist() {
			t.Error("hand at index 1 should be the fist")
		}

		for _, i := range []int{-1, 2, 10} {
			if _, ok := r.Hand(i); ok {
				t.Errorf("expected no hand at index %d", i)
			}
		}
	})

	t.Run("Hands returns a copy", func(t *testing.T) {
		r := NewResult(OpenPalm())
		hands := r.Hands()
		hands[0].Score = 0

		h, _ := r.Hand(0)
		if h.Score == 0 {
			t.Error("mutating Hands() output changed the result")
		}
	})
}

func TestToPixel(t *testing.T) {
	tests := []struct {
		name          string
		lm            Landmark
		width, height int
		wantX, wantY  int
	}{
		{"center of 1280x720", Landmark{X: 0.5, Y: 0.5}, 1280, 720, 640, 360},
		{"origin", Landmark{}, 640, 480, 0, 0},
		{"far corner", Landmark{X: 1, Y: 1}, 640, 480, 640, 480},
		{"rounds up", Landmark{X: 0.0016, Y: 0.0026}, 1000, 1000, 2, 3},
		{"nearest pixel", Landmark{X: 0.1234, Y: 0.5678}, 100, 100, 12, 57},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ToPixel(tt.lm, tt.width, tt.height)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("ToPixel() = (%d, %d), want (%d, %d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestToPixel_StaysInsideImage(t *testing.T) {
	sizes := [][2]int{{640, 480}, {1280, 720}, {1, 1}, {1920, 1080}}

	for _, size := range sizes {
		w, h := size[0], size[1]
		for i := 0; i <= 20; i++ {
			for j := 0; j <= 20; j++ {
				lm := Landmark{X: float64(i) / 20, Y: float64(j) / 20}
				x, y := ToPixel(lm, w, h)
				if x < 0 || x > w || y < 0 || y > h {
					t.Fatalf("ToPixel(%v, %d, %d) = (%d, %d) outside image", lm, w, h, x, y)
				}
			}
		}
	}
}

func TestPixelPositions(t *testing.T) {
	hand := OpenPalm()
	positions := PixelPositions(hand, 1280, 720)

	if len(positions) != NumLandmarks {
		t.Fatalf("expected %d positions, got %d", NumLandmarks, len(positions))
	}

	for i, p := range positions {
		if p.ID != i {
			t.Errorf("position %d has ID %d", i, p.ID)
		}
		x, y := ToPixel(hand.Landmarks[i], 1280, 720)
		if p.X != x || p.Y != y {
			t.Errorf("position %d = (%d, %d), want (%d, %d)", i, p.X, p.Y, x, y)
		}
	}

	t.Run("uses the given frame size", func(t *testing.T) {
		small := PixelPositions(hand, 640, 360)
		if small[Wrist].X*2 != positions[Wrist].X || small[Wrist].Y*2 != positions[Wrist].Y {
			t.Errorf("wrist at half size = %+v, full size = %+v", small[Wrist], positions[Wrist])
		}
	})
}

func TestHandConnections(t *testing.T) {
	if len(HandConnections) != 21 {
		t.Errorf("expected 21 connections, got %d", len(HandConnections))
	}

	seen := make(map[Connection]bool)
	for _, c := range HandConnections {
		if c.From < 0 || c.From >= NumLandmarks || c.To < 0 || c.To >= NumLandmarks {
			t.Errorf("connection %+v out of range", c)
		}
		if seen[c] {
			t.Errorf("duplicate connection %+v", c)
		}
		seen[c] = true
	}

	// every fingertip hangs off its DIP joint
	for _, tip := range TipIDs {
		if !seen[Connection{tip - 1, tip}] {
			t.Errorf("missing bone into tip %d", tip)
		}
	}
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := DefaultConfig()
		if c.Mode != ModeVideo {
			t.Errorf("expected video mode, got %v", c.Mode)
		}
		if c.MaxHands != 2 {
			t.Errorf("expected MaxHands 2, got %d", c.MaxHands)
		}
		if c.MinDetectionConfidence != 0.5 || c.MinTrackingConfidence != 0.5 {
			t.Errorf("unexpected confidences: %+v", c)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero hands", func(c *Config) { c.MaxHands = 0 }},
		{"negative detection confidence", func(c *Config) { c.MinDetectionConfidence = -0.1 }},
		{"detection confidence above one", func(c *Config) { c.MinDetectionConfidence = 1.5 }},
		{"tracking confidence above one", func(c *Config) { c.MinTrackingConfidence = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMode_String(t *testing.T) {
	if ModeVideo.String() != "video" {
		t.Errorf("ModeVideo.String() = %q", ModeVideo.String())
	}
	if ModeStaticImage.String() != "static-image" {
		t.Errorf("ModeStaticImage.String() = %q", ModeStaticImage.String())
	}
}

func TestWriteFrame(t *testing.T) {
	t.Run("header then pixels", func(t *testing.T) {
		var buf bytes.Buffer
		pixels := make([]byte, 4*2*3)
		for i := range pixels {
			pixels[i] = byte(i)
		}

		if err := writeFrame(&buf, 4, 2, 3, pixels); err != nil {
			t.Fatalf("writeFrame() error = %v", err)
		}

		data := buf.Bytes()
		if len(data) != 12+len(pixels) {
			t.Fatalf("wrote %d bytes, want %d", len(data), 12+len(pixels))
		}
		if w := binary.BigEndian.Uint32(data[0:4]); w != 4 {
			t.Errorf("width = %d, want 4", w)
		}
		if h := binary.BigEndian.Uint32(data[4:8]); h != 2 {
			t.Errorf("height = %d, want 2", h)
		}
		if c := binary.BigEndian.Uint32(data[8:12]); c != 3 {
			t.Errorf("channels = %d, want 3", c)
		}
		if !bytes.Equal(data[12:], pixels) {
			t.Error("pixel payload mismatch")
		}
	})

	t.Run("rejects size mismatch", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeFrame(&buf, 4, 2, 3, make([]byte, 10)); err == nil {
			t.Error("expected error for short pixel buffer")
		}
		if buf.Len() != 0 {
			t.Error("nothing should be written on error")
		}
	})
}

func TestDecodeResponse(t *testing.T) {
	landmarks := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = `{"x":0.5,"y":0.25,"z":0}`
		}
		return "[" + strings.Join(parts, ",") + "]"
	}

	t.Run("no hands is an empty result", func(t *testing.T) {
		r, err := decodeResponse([]byte(`{"hands":[]}` + "\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Empty() {
			t.Error("expected empty result")
		}
	})

	t.Run("one hand", func(t *testing.T) {
		line := `{"hands":[{"landmarks":` + landmarks(NumLandmarks) + `,"handedness":"Left","score":0.8}]}`
		r, err := decodeResponse([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h, ok := r.Hand(0)
		if !ok {
			t.Fatal("expected a hand")
		}
		if h.Handedness != "Left" || h.Score != 0.8 {
			t.Errorf("unexpected hand metadata: %q %f", h.Handedness, h.Score)
		}
		if h.Landmarks[PinkyTip] != (Landmark{X: 0.5, Y: 0.25}) {
			t.Errorf("unexpected pinky tip %+v", h.Landmarks[PinkyTip])
		}
	})

	t.Run("short landmark list is rejected", func(t *testing.T) {
		line := `{"hands":[{"landmarks":` + landmarks(5) + `}]}`
		if _, err := decodeResponse([]byte(line)); err == nil {
			t.Error("expected error for 5 landmarks")
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`{"error":"bad frame"}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`{"hands":`)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestNewMediaPipeDetector(t *testing.T) {
	t.Run("missing script", func(t *testing.T) {
		_, err := NewMediaPipeDetector(DefaultConfig(), ServicePaths{
			Script: filepath.Join(t.TempDir(), "missing.py"),
		})
		if !errors.Is(err, ErrServiceNotFound) {
			t.Errorf("expected ErrServiceNotFound, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxHands = 0
		if _, err := NewMediaPipeDetector(cfg, ServicePaths{}); err == nil {
			t.Error("expected error for invalid config")
		}
	})

	t.Run("config is passed as arguments", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), ServiceScript)
		if err := os.WriteFile(script, []byte("# stub\n"), 0644); err != nil {
			t.Fatal(err)
		}

		cfg := Config{Mode: ModeStaticImage, MaxHands: 1, MinDetectionConfidence: 0.7, MinTrackingConfidence: 0.25}
		d, err := NewMediaPipeDetector(cfg, ServicePaths{Script: script, Python: "python3"})
		if err != nil {
			t.Fatalf("NewMediaPipeDetector() error = %v", err)
		}
		defer d.Close()

		if d.Config() != cfg {
			t.Errorf("Config() = %+v, want %+v", d.Config(), cfg)
		}

		want := []string{
			script,
			"--static-image-mode=true",
			"--max-num-hands=1",
			"--min-detection-confidence=0.7",
			"--min-tracking-confidence=0.25",
		}
		got := d.args()
		if strings.Join(got, " ") != strings.Join(want, " ") {
			t.Errorf("args() = %v, want %v", got, want)
		}
	})

	t.Run("nil frame is rejected before starting the service", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), ServiceScript)
		os.WriteFile(script, []byte("# stub\n"), 0644)

		d, err := NewMediaPipeDetector(DefaultConfig(), ServicePaths{Script: script})
		if err != nil {
			t.Fatalf("NewMediaPipeDetector() error = %v", err)
		}
		if _, err := d.Detect(nil); err == nil {
			t.Error("expected error for nil frame")
		}
		if d.started {
			t.Error("service should not start for an invalid frame")
		}
		if err := d.Close(); err != nil {
			t.Errorf("Close() on unstarted detector = %v", err)
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty result by default", func(t *testing.T) {
		mock := NewMockDetector()

		r, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !r.Empty() {
			t.Errorf("expected empty result, got %d hands", r.Len())
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands(OpenPalm(), Fist())

		r, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if r.Len() != 2 {
			t.Errorf("expected 2 hands, got %d", r.Len())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands(OpenPalm())
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		r, err := mock.Detect(nil)
		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if !r.Empty() {
			t.Error("expected empty result when error is set")
		}
	})

	t.Run("Close", func(t *testing.T) {
		mock := NewMockDetector()
		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() after Close")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestFixtures(t *testing.T) {
	t.Run("open palm fingertips above PIP joints", func(t *testing.T) {
		h := OpenPalm()
		for _, tip := range TipIDs[1:] {
			if h.Landmarks[tip].Y >= h.Landmarks[tip-2].Y {
				t.Errorf("tip %d should be above its PIP joint", tip)
			}
		}
		if h.Landmarks[ThumbTip].X >= h.Landmarks[ThumbIP].X {
			t.Error("thumb tip should be left of thumb IP")
		}
	})

	t.Run("fist fingertips below PIP joints", func(t *testing.T) {
		h := Fist()
		for _, tip := range TipIDs[1:] {
			if h.Landmarks[tip].Y <= h.Landmarks[tip-2].Y {
				t.Errorf("tip %d should be below its PIP joint", tip)
			}
		}
		if h.Landmarks[ThumbTip].X <= h.Landmarks[ThumbIP].X {
			t.Error("thumb tip should be right of thumb IP")
		}
	})

	t.Run("landmarks are normalized", func(t *testing.T) {
		for _, h := range []Hand{OpenPalm(), Fist(), PointingUp()} {
			for i, lm := range h.Landmarks {
				if lm.X < 0 || lm.X > 1 || lm.Y < 0 || lm.Y > 1 {
					t.Errorf("landmark %d out of range: %+v", i, lm)
				}
			}
		}
	})
}
