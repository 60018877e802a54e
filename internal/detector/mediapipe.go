package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// ServiceScript is the file name of the MediaPipe Hands bridge.
const ServiceScript = "hand_service.py"

// ErrServiceNotFound is returned when the MediaPipe bridge script cannot be located.
var ErrServiceNotFound = errors.New(ServiceScript + " not found")

// ServicePaths locates the MediaPipe bridge. Empty fields are discovered.
type ServicePaths struct {
	Script string
	Python string
}

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Each request is a 12-byte big-endian header (width, height, channels)
// followed by the raw RGB pixels; each response is one JSON line.
type MediaPipeDetector struct {
	config  Config
	script  string
	python  string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	mu      sync.Mutex
	started bool
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, paths ServicePaths) (*MediaPipeDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector config: %w", err)
	}

	script := paths.Script
	if script == "" {
		script = findServiceScript()
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, err)
	}

	python := paths.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
	}, nil
}

// Config returns the configuration the detector was built with.
func (d *MediaPipeDetector) Config() Config {
	return d.config
}

// Detect converts the frame to RGB, sends it to the service and returns the detected hands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (Result, error) {
	if frame == nil || frame.Empty() {
		return Result{}, errors.New("empty frame")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return Result{}, err
	}

	// The model expects RGB; capture delivers BGR.
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(*frame, &rgb, gocv.ColorBGRToRGB)

	if err := writeFrame(d.stdin, rgb.Cols(), rgb.Rows(), rgb.Channels(), rgb.ToBytes()); err != nil {
		return Result{}, err
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	return decodeResponse(line)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

// args builds the service command line from the bound configuration.
func (d *MediaPipeDetector) args() []string {
	return []string{
		d.script,
		"--static-image-mode=" + strconv.FormatBool(d.config.Mode == ModeStaticImage),
		"--max-num-hands=" + strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence=" + strconv.FormatFloat(d.config.MinDetectionConfidence, 'f', -1, 64),
		"--min-tracking-confidence=" + strconv.FormatFloat(d.config.MinTrackingConfidence, 'f', -1, 64),
	}
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	d.cmd = exec.Command(d.python, d.args()...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

// writeFrame writes one request: width, height and channels as big-endian
// uint32 followed by the pixel data.
func writeFrame(w io.Writer, width, height, channels int, pixels []byte) error {
	if want := width * height * channels; len(pixels) != want {
		return fmt.Errorf("frame has %d bytes, want %d for %dx%dx%d", len(pixels), want, width, height, channels)
	}

	header := make([]byte, 12)
	binary.BigEndian.PutUint32(header[0:4], uint32(width))
	binary.BigEndian.PutUint32(header[4:8], uint32(height))
	binary.BigEndian.PutUint32(header[8:12], uint32(channels))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(pixels); err != nil {
		return fmt.Errorf("write pixels: %w", err)
	}
	return nil
}

// jsonResponse is one line emitted by the service.
type jsonResponse struct {
	Hands []jsonHand `json:"hands"`
	Error string     `json:"error,omitempty"`
}

type jsonHand struct {
	Landmarks  []Landmark `json:"landmarks"`
	Handedness string     `json:"handedness"`
	Score      float64    `json:"score"`
}

func decodeResponse(line []byte) (Result, error) {
	var response jsonResponse
	if err := json.Unmarshal(line, &response); err != nil {
		return Result{}, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return Result{}, fmt.Errorf("mediapipe service: %s", response.Error)
	}

	hands := make([]Hand, 0, len(response.Hands))
	for i, h := range response.Hands {
		if len(h.Landmarks) != NumLandmarks {
			return Result{}, fmt.Errorf("hand %d has %d landmarks, want %d", i, len(h.Landmarks), NumLandmarks)
		}
		hand := Hand{Handedness: h.Handedness, Score: h.Score}
		copy(hand.Landmarks[:], h.Landmarks)
		hands = append(hands, hand)
	}

	return NewResult(hands...), nil
}

func findServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", ServiceScript),
		filepath.Join("..", "scripts", ServiceScript),
		filepath.Join(execDir, "scripts", ServiceScript),
		filepath.Join(os.Getenv("HOME"), ".mudra", "scripts", ServiceScript),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
