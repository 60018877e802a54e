package detector

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a BGR video frame and returns the detected hands.
	// Finding no hand is not an error; the Result is simply empty.
	Detect(frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Mode selects how the model treats consecutive frames.
type Mode int

const (
	// ModeVideo tracks hands across frames and only re-runs palm detection
	// when tracking confidence drops.
	ModeVideo Mode = iota
	// ModeStaticImage runs full detection on every frame.
	ModeStaticImage
)

func (m Mode) String() string {
	if m == ModeStaticImage {
		return "static-image"
	}
	return "video"
}

// Config holds configuration options for hand detection.
// It is bound to a detector at construction and cannot change afterwards.
type Config struct {
	// Mode is static-image or video-stream tracking (default: video).
	Mode Mode

	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinDetectionConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinDetectionConfidence float64

	// MinTrackingConfidence is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Mode:                   ModeVideo,
		MaxHands:               2,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.MaxHands < 1 {
		return fmt.Errorf("max hands must be at least 1, got %d", c.MaxHands)
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("min detection confidence must be between 0 and 1, got %f", c.MinDetectionConfidence)
	}
	if c.MinTrackingConfidence < 0 || c.MinTrackingConfidence > 1 {
		return fmt.Errorf("min tracking confidence must be between 0 and 1, got %f", c.MinTrackingConfidence)
	}
	return nil
}
