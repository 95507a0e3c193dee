package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mocap-retarget/internal/capture"
	"mocap-retarget/internal/config"
	"mocap-retarget/internal/logging"
	"mocap-retarget/internal/preview"
	"mocap-retarget/internal/recorder"
	"mocap-retarget/internal/skeleton"
	"mocap-retarget/internal/store"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.toml or .json)")
	input := flag.String("input", "", "JSON-lines capture file")
	dbPath := flag.String("db", "", "SQLite recording store")
	recording := flag.String("recording", "", "Recording name in -db (loaded, or saved when -input is set)")
	outputDir := flag.String("output", "", "Output directory (default: out)")
	target := flag.String("to", "", "Single output path, e.g. out/Wave.java; sets output directory and name")
	name := flag.String("name", "", "Animation name (default: KinectAnimation)")
	renderer := flag.String("renderer", "", "Output format: alice or text")
	framesPerSegment := flag.Int("frames", 0, "Frames per segment (default: 25)")
	maxSegments := flag.Int("max-segments", 0, "Segment limit, negative for unlimited (default: 50)")
	start := flag.Int("start", 0, "First frame to export")
	end := flag.Int("end", -1, "Frame to stop before, negative for all")
	withPreview := flag.Bool("preview", false, "Also draw a preview image per segment")
	workers := flag.Int("workers", 0, "Preview worker goroutines (default: NumCPU)")
	watch := flag.Bool("watch", false, "Follow -input until interrupted, then export")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config file and environment
	cfg.Resolve(config.Flags{
		OutputDir:        *outputDir,
		AnimationName:    *name,
		FramesPerSegment: *framesPerSegment,
		MaxSegments:      *maxSegments,
		Renderer:         *renderer,
		LogLevel:         *logLevel,
		Preview:          *withPreview,
		Workers:          *workers,
	})
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *input == "" && (*dbPath == "" || *recording == "") {
		fmt.Fprintln(os.Stderr, "Error: need -input or -db with -recording.")
		flag.Usage()
		os.Exit(2)
	}
	if *watch && *input == "" {
		logging.Fatal("-watch needs -input")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	rec, err := newRecorder(cfg)
	if err != nil {
		logging.Fatal("setup failed", "err", err)
	}
	if *target != "" {
		rec.ConfigureOutput(*target)
	}
	var collector *preview.Collector
	if cfg.Preview {
		collector, err = newCollector(cfg, rec)
		if err != nil {
			logging.Fatal("preview setup failed", "err", err)
		}
		rec.OnSegment(collector.Observe)
	}

	// Capture frames
	switch {
	case *input != "" && *watch:
		logging.Info("following capture, interrupt to export", "input", *input)
		err := capture.Follow(ctx, *input, func(f skeleton.Frame) error {
			rec.Capture(f)
			return nil
		})
		if err != nil {
			logging.Fatal("follow failed", "input", *input, "err", err)
		}
		// Interrupted: export with a fresh context.
		stop()
		ctx = context.Background()
	case *input != "":
		if err := readInput(rec, *input); err != nil {
			logging.Fatal("read input failed", "input", *input, "err", err)
		}
	default:
		if err := loadRecording(ctx, rec, *dbPath, *recording); err != nil {
			logging.Fatal("load recording failed", "db", *dbPath, "recording", *recording, "err", err)
		}
	}
	logging.Info("frames captured", "count", rec.Len())

	if *input != "" && *dbPath != "" && *recording != "" {
		if err := saveRecording(ctx, rec, *dbPath, *recording); err != nil {
			logging.Fatal("save recording failed", "db", *dbPath, "recording", *recording, "err", err)
		}
	}

	// Export
	began := time.Now()
	m, err := rec.Export(ctx, *start, *end)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal("export failed", "err", err)
	}
	if m == nil {
		return
	}
	out := rec.Config().OutputDirectory
	logging.Info("export done",
		"animation", m.AnimationName,
		"segments", m.SegmentCount,
		"frames", m.FrameCount,
		"dropped", m.DroppedFrames,
		"dir", out,
		"elapsed", time.Since(began).Round(time.Millisecond))
	if err != nil {
		logging.Warn("export interrupted, partial animation written", "err", err)
	}

	if collector != nil {
		results := collector.Render(context.Background())
		if failed := preview.Failed(results); failed > 0 {
			for _, r := range results {
				if !r.Success {
					logging.Error("preview failed", "segment", r.Name, "err", r.Error)
				}
			}
			os.Exit(1)
		}
		logging.Info("previews written", "count", len(results), "dir", filepath.Join(out, "preview"))
	}
}

func newRecorder(cfg config.Config) (*recorder.Recorder, error) {
	h, err := cfg.Hierarchy()
	if err != nil {
		return nil, err
	}
	r, err := cfg.NewRenderer()
	if err != nil {
		return nil, err
	}
	ec, err := cfg.ExportConfig()
	if err != nil {
		return nil, err
	}
	rec := recorder.New(ec, r, h)
	rec.SkipInvalid = cfg.SkipInvalid
	return rec, nil
}

// newCollector draws previews into <output>/preview, named after the segments.
func newCollector(cfg config.Config, rec *recorder.Recorder) (*preview.Collector, error) {
	format, err := preview.ParseFormat(cfg.PreviewFormat)
	if err != nil {
		return nil, err
	}
	r, err := cfg.NewRenderer()
	if err != nil {
		return nil, err
	}
	view := preview.DefaultView()
	view.Size = cfg.PreviewSize
	view.Supersample = cfg.Supersample
	return preview.NewCollector(preview.Config{
		OutputDir: filepath.Join(rec.Config().OutputDirectory, "preview"),
		Format:    format,
		View:      view,
		Workers:   cfg.Workers,
	}, r.SegmentName), nil
}

func readInput(rec *recorder.Recorder, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	frames, err := capture.ReadAll(f)
	if err != nil {
		return err
	}
	for _, fr := range frames {
		rec.Capture(fr)
	}
	return nil
}

func loadRecording(ctx context.Context, rec *recorder.Recorder, dbPath, name string) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	frames, err := s.LoadRecording(ctx, name)
	if err != nil {
		return err
	}
	for _, f := range frames {
		rec.Capture(f)
	}
	return nil
}

func saveRecording(ctx context.Context, rec *recorder.Recorder, dbPath, name string) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.SaveRecording(ctx, name, rec.Frames()); err != nil {
		return err
	}
	logging.Info("recording saved", "db", dbPath, "recording", name, "frames", rec.Len())
	return nil
}
