package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tracker"
)

// Version is the application version.
const Version = "0.1.0"

var (
	configPath     string
	cameraID       int
	recordPath     string
	listenAddr     string
	printPositions bool
)

var rootCmd = &cobra.Command{
	Use:          "mudra",
	Short:        "Live hand landmark tracking with finger-up detection",
	Version:      Version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runLoop(cfg)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML or INI settings file")
	flags.IntVar(&cameraID, "camera", capture.DefaultDevice, "camera device index")
	flags.StringVar(&recordPath, "record", "", "SQLite file to record finger events to (disabled when empty)")
	flags.StringVar(&listenAddr, "listen", "", "HTTP address for the stream and signal API, e.g. :8080 (disabled when empty)")
	flags.BoolVar(&printPositions, "print-positions", true, "print 'id x y' for every landmark of every frame")
}

// loadConfig reads the settings file, if any, and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("camera") {
		cfg.Camera.Device = cameraID
	}
	if flags.Changed("record") {
		cfg.Record.Database = recordPath
	}
	if flags.Changed("listen") {
		cfg.Server.Listen = listenAddr
	}
	if flags.Changed("print-positions") {
		cfg.Display.PrintPositions = printPositions
	}

	return cfg, cfg.Validate()
}

func runLoop(cfg config.Config) error {
	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig(), cfg.ServicePaths())
	if err != nil {
		return fmt.Errorf("failed to create hand detector: %w", err)
	}
	log.Printf("Using MediaPipe hand detection (%s mode, max %d hands)", det.Config().Mode, det.Config().MaxHands)

	loopCfg := app.Config{
		ExitKey:        cfg.ExitKey(),
		MarkerRadius:   cfg.Display.MarkerRadius,
		PrintPositions: cfg.Display.PrintPositions,
		Output:         os.Stdout,
	}
	var opts []app.Option

	var st *store.Store
	if cfg.Record.Database != "" {
		if st, err = openStore(cfg.Record.Database); err != nil {
			det.Close()
			return err
		}
		defer st.Close()

		sess := &store.Session{
			CameraID:            cfg.Camera.Device,
			StaticImage:         cfg.Detector.StaticImage,
			MaxHands:            cfg.Detector.MaxHands,
			DetectionConfidence: cfg.Detector.MinDetectionConfidence,
			TrackingConfidence:  cfg.Detector.MinTrackingConfidence,
		}
		if err := st.Sessions().Create(sess); err != nil {
			det.Close()
			return fmt.Errorf("failed to create session: %w", err)
		}
		defer func() {
			if err := st.Sessions().End(sess.ID); err != nil {
				log.Printf("Failed to end session %s: %v", sess.ID, err)
			}
		}()

		loopCfg.SessionID = sess.ID
		opts = append(opts, app.WithPublisher(store.NewRecorder(st, sess.ID)))
		log.Printf("Recording session %s to %s", sess.ID, st.Path())
	}

	if len(cfg.Hooks.Rules) > 0 {
		hooks, err := hook.NewDispatcher(cfg.Hooks.Rules, hook.NewExecutor(cfg.HookTimeout()))
		if err != nil {
			det.Close()
			return err
		}
		defer hooks.Close()
		opts = append(opts, app.WithPublisher(hooks))
		log.Printf("Loaded %d gesture hooks", len(cfg.Hooks.Rules))
	}

	if cfg.Server.Listen != "" {
		hub := server.NewHub()
		defer hub.Close()
		frames := server.NewFrameBuffer()
		opts = append(opts, app.WithPublisher(hub), app.WithFrameSink(frames))

		srv := server.New(server.Config{Store: st, Frames: frames, Hub: hub})
		go func() {
			log.Printf("Starting server on %s", cfg.Server.Listen)
			if err := srv.ListenAndServe(cfg.Server.Listen); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	camera := capture.NewCamera(cfg.Camera.Device, cfg.CaptureOptions())
	window := gocv.NewWindow(cfg.Display.Title)

	runner := app.New(loopCfg, camera, window, tracker.New(det), opts...)
	return runner.Run()
}

// defaultDBPath returns ~/.mudra/mudra.db.
func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "mudra.db"
	}
	return filepath.Join(homeDir, ".mudra", "mudra.db")
}

// openStore opens the database at path, creating its directory if needed.
func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return st, nil
}
