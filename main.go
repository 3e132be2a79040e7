package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/game"
	"github.com/pthm-cable/swarm/renderer"
	"github.com/pthm-cable/swarm/stream"
	"github.com/pthm-cable/swarm/ui"
)

const controlsLegend = "LMB: rally | RMB: spawn | Wheel: zoom | MMB: pan | R: next stage | C: collisions | Space: dismiss | Tab: panel | P: perf"

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files, written at every stage reset")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call in headless mode")
	streamAddr := flag.String("stream-addr", "", "Serve websocket frames on this address, e.g. :8080 (empty = off)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Config:         cfg,
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pub *publisher
	if *streamAddr != "" {
		var err error
		pub, err = startStream(ctx, *streamAddr, cfg)
		if err != nil {
			slog.Error("failed to start stream", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
	}

	var err error
	if *headless {
		err = runHeadless(ctx, opts, *maxTicks, pub)
	} else {
		err = runGraphical(ctx, opts, cfg, *maxTicks, pub)
	}
	if err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless steps the simulation as fast as possible. Pure CPU, no raylib.
func runHeadless(ctx context.Context, opts game.Options, maxTicks int, pub *publisher) error {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for ctx.Err() == nil {
		g.UpdateHeadless()
		pub.Maybe(g)

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return nil
		}
	}
	slog.Info("interrupted", "tick", g.Tick())
	return nil
}

// runGraphical runs one tick per frame in a raylib window.
func runGraphical(ctx context.Context, opts game.Options, cfg *config.Config, maxTicks int, pub *publisher) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Swarm")
	if !rl.IsWindowReady() {
		return errors.New("opening window: no rendering backend available")
	}
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	worldW, worldH := g.WorldSize()
	cam := camera.New(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()), worldW, worldH)
	world := renderer.NewWorldRenderer(cam, cfg.Harvest.CellSize)
	panel := ui.NewControlsPanel(10, 40, 220)
	input := ui.NewInput(cam, panel, cfg.World.Width == 0 && cfg.World.Height == 0)
	hud := ui.NewHUD()
	perf := ui.NewPerfPanel(250, 40)
	showPerf := false

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		input.Handle(g)
		if rl.IsKeyPressed(rl.KeyP) {
			showPerf = !showPerf
		}

		g.Update()
		pub.Maybe(g)

		data := ui.HUDData{
			Progress:     g.Progress(),
			Palette:      g.Palette(),
			Tick:         g.Tick(),
			FPS:          rl.GetFPS(),
			ScreenWidth:  int32(rl.GetScreenWidth()),
			ScreenHeight: int32(rl.GetScreenHeight()),
		}

		rl.BeginDrawing()
		world.Draw(g)
		hud.Draw(data)
		hud.DrawStatus(data)
		hud.DrawControls(data.ScreenHeight, controlsLegend)
		hud.DrawNotice(g.Notice(), data.ScreenWidth, data.ScreenHeight)
		panel.Draw(g, cam)
		if showPerf {
			perf.Draw(g.PerfStats())
		}
		rl.EndDrawing()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return nil
}

// publisher sends a frame to spectators every few ticks.
type publisher struct {
	hub         *stream.Hub
	server      *http.Server
	every       int32
	maxEntities int
	last        int32
}

func startStream(ctx context.Context, addr string, cfg *config.Config) (*publisher, error) {
	hub := stream.NewHub()
	go hub.Run(ctx)

	srv := stream.NewServer(addr, hub)
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// Surface an immediate bind failure.
	select {
	case err := <-errc:
		return nil, err
	case <-time.After(100 * time.Millisecond):
	}
	slog.Info("stream listening", "addr", addr, "path", "/ws")

	return &publisher{
		hub:         hub,
		server:      srv,
		every:       int32(max(1, cfg.Stream.EveryTicks)),
		maxEntities: cfg.Stream.MaxEntities,
	}, nil
}

// Maybe publishes a frame when enough ticks have passed. Safe on a nil publisher.
func (p *publisher) Maybe(g *game.Game) {
	if p == nil || g.Tick()-p.last < p.every {
		return
	}
	p.last = g.Tick()
	if p.hub.Clients() == 0 {
		return
	}

	data, err := stream.NewFrame(g.Snapshot(), p.maxEntities).Encode()
	if err != nil {
		slog.Error("failed to encode frame", "error", err)
		return
	}
	p.hub.Publish(data)
}

func (p *publisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.server.Shutdown(ctx); err != nil {
		slog.Error("failed to stop stream server", "error", err)
	}
}
