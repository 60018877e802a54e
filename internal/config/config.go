// Package config loads mudra settings from YAML or INI files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hook"
)

// Config holds all runtime settings.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Display  DisplayConfig  `yaml:"display"`
	Record   RecordConfig   `yaml:"record"`
	Server   ServerConfig   `yaml:"server"`
	Hooks    HooksConfig    `yaml:"hooks"`
}

// CameraConfig selects and tunes the capture device.
type CameraConfig struct {
	Device int `yaml:"device"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DetectorConfig is bound to the detector when it is built.
type DetectorConfig struct {
	StaticImage            bool    `yaml:"static_image"`
	MaxHands               int     `yaml:"max_hands"`
	MinDetectionConfidence float64 `yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence"`
	Script                 string  `yaml:"script"`
	Python                 string  `yaml:"python"`
}

// DisplayConfig controls the preview window.
type DisplayConfig struct {
	Title          string `yaml:"title"`
	ExitKey        string `yaml:"exit_key"`
	MarkerRadius   int    `yaml:"marker_radius"`
	PrintPositions bool   `yaml:"print_positions"`
}

// RecordConfig enables the SQLite signal recorder when Database is set.
type RecordConfig struct {
	Database string `yaml:"database"`
}

// ServerConfig enables the HTTP surface when Listen is set.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// HooksConfig lists commands to run on finger vector changes.
type HooksConfig struct {
	TimeoutMs int         `yaml:"timeout_ms"`
	Rules     []hook.Rule `yaml:"rules"`
}

// Default returns the settings of the plain live loop: camera 0, a window
// titled "Image", exit on 'q', no recording and no server.
func Default() Config {
	d := detector.DefaultConfig()
	return Config{
		Camera: CameraConfig{Device: capture.DefaultDevice},
		Detector: DetectorConfig{
			StaticImage:            d.Mode == detector.ModeStaticImage,
			MaxHands:               d.MaxHands,
			MinDetectionConfidence: d.MinDetectionConfidence,
			MinTrackingConfidence:  d.MinTrackingConfidence,
		},
		Display: DisplayConfig{
			Title:          "Image",
			ExitKey:        "q",
			MarkerRadius:   25,
			PrintPositions: true,
		},
		Hooks: HooksConfig{TimeoutMs: int(hook.DefaultTimeout / time.Millisecond)},
	}
}

// Load reads the file at path on top of the defaults. The format is chosen by
// extension: .yaml/.yml or .ini.
func Load(path string) (Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".ini":
		if err := loadINI(path, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadINI(path string, cfg *Config) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	camera := f.Section("camera")
	cfg.Camera.Device = camera.Key("device").MustInt(cfg.Camera.Device)
	cfg.Camera.Width = camera.Key("width").MustInt(cfg.Camera.Width)
	cfg.Camera.Height = camera.Key("height").MustInt(cfg.Camera.Height)

	det := f.Section("detector")
	cfg.Detector.StaticImage = det.Key("static_image").MustBool(cfg.Detector.StaticImage)
	cfg.Detector.MaxHands = det.Key("max_hands").MustInt(cfg.Detector.MaxHands)
	cfg.Detector.MinDetectionConfidence = det.Key("min_detection_confidence").MustFloat64(cfg.Detector.MinDetectionConfidence)
	cfg.Detector.MinTrackingConfidence = det.Key("min_tracking_confidence").MustFloat64(cfg.Detector.MinTrackingConfidence)
	cfg.Detector.Script = det.Key("script").MustString(cfg.Detector.Script)
	cfg.Detector.Python = det.Key("python").MustString(cfg.Detector.Python)

	display := f.Section("display")
	cfg.Display.Title = display.Key("title").MustString(cfg.Display.Title)
	cfg.Display.ExitKey = display.Key("exit_key").MustString(cfg.Display.ExitKey)
	cfg.Display.MarkerRadius = display.Key("marker_radius").MustInt(cfg.Display.MarkerRadius)
	cfg.Display.PrintPositions = display.Key("print_positions").MustBool(cfg.Display.PrintPositions)

	cfg.Record.Database = f.Section("record").Key("database").MustString(cfg.Record.Database)
	cfg.Server.Listen = f.Section("server").Key("listen").MustString(cfg.Server.Listen)

	cfg.Hooks.TimeoutMs = f.Section("hooks").Key("timeout_ms").MustInt(cfg.Hooks.TimeoutMs)
	for _, sec := range f.Sections() {
		name, ok := strings.CutPrefix(sec.Name(), "hook.")
		if !ok {
			continue
		}
		cfg.Hooks.Rules = append(cfg.Hooks.Rules, hook.Rule{
			Name:    name,
			Fingers: sec.Key("fingers").String(),
			Command: strings.Fields(sec.Key("command").String()),
		})
	}

	return nil
}

// Validate checks the settings for values the loop cannot use.
func (c Config) Validate() error {
	if c.Camera.Device < 0 {
		return fmt.Errorf("camera device must not be negative, got %d", c.Camera.Device)
	}
	if err := c.DetectorConfig().Validate(); err != nil {
		return err
	}
	if len(c.Display.ExitKey) != 1 || c.Display.ExitKey[0] > 127 {
		return fmt.Errorf("exit key must be a single ASCII character, got %q", c.Display.ExitKey)
	}
	if c.Display.MarkerRadius < 0 {
		return fmt.Errorf("marker radius must not be negative, got %d", c.Display.MarkerRadius)
	}
	for _, r := range c.Hooks.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DetectorConfig converts the detector section into a detector.Config.
func (c Config) DetectorConfig() detector.Config {
	mode := detector.ModeVideo
	if c.Detector.StaticImage {
		mode = detector.ModeStaticImage
	}
	return detector.Config{
		Mode:                   mode,
		MaxHands:               c.Detector.MaxHands,
		MinDetectionConfidence: c.Detector.MinDetectionConfidence,
		MinTrackingConfidence:  c.Detector.MinTrackingConfidence,
	}
}

// ServicePaths returns where to find the MediaPipe bridge.
func (c Config) ServicePaths() detector.ServicePaths {
	return detector.ServicePaths{Script: c.Detector.Script, Python: c.Detector.Python}
}

// CaptureOptions returns the camera tuning options.
func (c Config) CaptureOptions() capture.Options {
	return capture.Options{Width: c.Camera.Width, Height: c.Camera.Height}
}

// ExitKey returns the key code that stops the loop.
func (c Config) ExitKey() byte {
	return c.Display.ExitKey[0]
}

// HookTimeout returns the per-command timeout for hooks.
func (c Config) HookTimeout() time.Duration {
	return time.Duration(c.Hooks.TimeoutMs) * time.Millisecond
}
