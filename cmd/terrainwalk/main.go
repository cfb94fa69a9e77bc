// Package main is the entry point for terrainwalk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/samdwyer/terrainwalk/internal/config"
	"github.com/samdwyer/terrainwalk/internal/game"
	"github.com/samdwyer/terrainwalk/internal/gui"
	"github.com/samdwyer/terrainwalk/internal/observer"
	"github.com/samdwyer/terrainwalk/internal/palette"
	"github.com/samdwyer/terrainwalk/internal/recorder"
	"github.com/samdwyer/terrainwalk/internal/sim"
	"github.com/samdwyer/terrainwalk/internal/telemetry"
	"github.com/samdwyer/terrainwalk/internal/ui"
)

type options struct {
	configPath string
	seed       int64
	tileWidth  int
	probe      bool
	headless   bool
	steps      int
	gui        bool
	guiSize    int
	observe    string
	record     string
}

func parseFlags() (options, map[string]bool) {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML configuration file")
	flag.Int64Var(&o.seed, "seed", 0, "terrain seed (random when unset everywhere)")
	flag.IntVar(&o.tileWidth, "tile-width", sim.DefaultTileWidth, "tile side length in lattice units")
	flag.BoolVar(&o.probe, "probe", false, "recenter tiles on the ground under the follower")
	flag.BoolVar(&o.headless, "headless", false, "run without a terminal view")
	flag.IntVar(&o.steps, "steps", 2000, "steps to run in headless mode")
	flag.BoolVar(&o.gui, "gui", false, "open a pixel window (needs the ebiten build tag)")
	flag.IntVar(&o.guiSize, "gui-size", 240, "pixel window side in lattice points")
	flag.StringVar(&o.observe, "observe", "", "serve the websocket observer on this address, e.g. :8090")
	flag.StringVar(&o.record, "record", "", "write a compressed run log into this directory")
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set
}

func main() {
	opts, set := parseFlags()
	if err := run(opts, set); err != nil {
		log.Fatal(err)
	}
}

// run owns every resource of a run. It returns instead of exiting so the
// recorder, observer and tracer are always closed.
func run(opts options, set map[string]bool) error {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}
	setupOTelEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()

	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx, runID)
		if err != nil {
			log.Printf("Warning: telemetry setup failed: %v", err)
			log.Printf("Running without observability")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Printf("Error shutting down telemetry: %v", err)
				}
			}()
		}
	}

	cfg, err := config.Load(sim.DefaultConfig(), config.Sources{
		File:     opts.configPath,
		EnvFiles: []string{".env"},
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	applyFlags(&cfg, opts, set)
	if err := cfg.Validate(); err != nil {
		return err
	}

	pal, err := palette.Default()
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}

	logger := log.New(os.Stderr, "[terrainwalk] ", log.LstdFlags)
	var backends sim.Backends

	var screen *ui.Screen
	var renderer *ui.Renderer
	if !opts.headless && !opts.gui {
		screen, err = ui.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		// The terminal owns stdout and stderr from here on.
		logger.SetOutput(discardUnlessRecording(opts.record))
		renderer = ui.NewRenderer(screen, pal)
		backends = append(backends, renderer)
	}

	var painter *gui.Painter
	if opts.gui {
		painter = gui.NewPainter(pal)
		backends = append(backends, painter)
	}

	if opts.record != "" {
		rec := recorder.New(opts.record, runID, logger)
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Printf("close recording: %v", err)
			}
		}()
		backends = append(backends, rec)
	}

	if opts.observe != "" {
		hub := observer.NewHub(runID, cfg.Seed, cfg.TileWidth, logger)
		defer hub.Close()
		backends = append(backends, hub)
		srv := serveObserver(opts.observe, hub, logger)
		defer srv.Close()
	}

	s, err := sim.New(ctx, cfg, backends, logger)
	if err != nil {
		if screen != nil {
			screen.Close()
		}
		return fmt.Errorf("start simulation: %w", err)
	}

	switch {
	case opts.gui:
		err = gui.Run(ctx, s, painter, opts.guiSize, opts.guiSize, 3)
	case opts.headless:
		err = runHeadless(ctx, s, opts.steps, opts.observe != "")
		printSummary(runID, s)
	default:
		err = game.New(screen, renderer, s, logger).Run(ctx)
	}
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	return nil
}

// applyFlags lets explicitly set flags override every other layer.
func applyFlags(cfg *sim.Config, o options, set map[string]bool) {
	if set["seed"] {
		cfg.Seed = o.seed
	} else if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	// A new tile width also re-centres the start tile on the origin.
	if set["tile-width"] {
		cfg.TileWidth = o.tileWidth
		cfg.StartTile.X = -o.tileWidth / 2
		cfg.StartTile.Y = -o.tileWidth / 2
	}
	if set["probe"] {
		cfg.ProbeRecenter = o.probe
	}
}

// runHeadless runs n steps. With observers attached it keeps real time so
// they can follow along.
func runHeadless(ctx context.Context, s *sim.Simulation, n int, paced bool) error {
	if !paced {
		for i := 0; i < n && ctx.Err() == nil; i++ {
			if err := s.Step(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	ticker := time.NewTicker(s.Config().StepInterval)
	defer ticker.Stop()
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Step(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func printSummary(runID string, s *sim.Simulation) {
	pos := s.Follower().Position
	fmt.Printf("run      %s\n", runID)
	fmt.Printf("seed     %d\n", s.Config().Seed)
	fmt.Printf("steps    %d\n", s.Steps())
	fmt.Printf("nodes    %d\n", s.Nodes())
	fmt.Printf("tiles    %d resident, active %s\n", s.Store().Len(), s.ActiveTile())
	fmt.Printf("follower (%.2f, %.2f, %.2f)\n", pos.X, pos.Y, pos.Z)
}

func serveObserver(addr string, hub *observer.Hub, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("observer server: %v", err)
		}
	}()
	logger.Printf("observer listening on %s/ws", addr)
	return srv
}

// discardUnlessRecording keeps log output off the terminal while tcell owns
// it. Logs go next to the recording when there is one.
func discardUnlessRecording(dir string) *os.File {
	if dir == "" {
		null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return os.Stderr
		}
		return null
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.Stderr
	}
	f, err := os.OpenFile(filepath.Join(dir, "terrainwalk.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr
	}
	return f
}

// setupOTelEnv points the OTLP exporter at TERRAINWALK_TRACES_URL, sending
// TERRAINWALK_TRACES_TOKEN as a bearer token. Explicit OTEL_* settings win.
func setupOTelEnv() {
	url := os.Getenv("TERRAINWALK_TRACES_URL")
	if url == "" || telemetry.Enabled() {
		return
	}
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", url)
	if token := os.Getenv("TERRAINWALK_TRACES_TOKEN"); token != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer "+token)
	}
}
