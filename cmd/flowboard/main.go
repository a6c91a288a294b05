package main

import (
	"bufio"
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tiohsa/flowboard/internal/datasource"
	"github.com/tiohsa/flowboard/pkg/board"
	"github.com/tiohsa/flowboard/pkg/config"
	"github.com/tiohsa/flowboard/pkg/model"
	"github.com/tiohsa/flowboard/pkg/version"
	"github.com/tiohsa/flowboard/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	snapshotPath := flag.String("snapshot", "", "Path to a snapshot file (.json, .db); discovered from the board directory if empty")
	sourceName := flag.String("source", "", "Named source from the config file")
	outPath := flag.String("out", "board.png", "Output image path (.png or .svg)")
	width := flag.Float64("width", 1280, "Viewport width in pixels")
	height := flag.Float64("height", 800, "Viewport height in pixels")
	fitWidth := flag.Bool("fit", false, "Scale the board down to fit the viewport width")
	showSubtasks := flag.Bool("show-subtasks", true, "Expand sub-item rows on cards")
	watchFlag := flag.Bool("watch", false, "Re-render whenever the snapshot file changes")
	eventsPath := flag.String("events", "", "Replay pointer events from a JSONL file and print emitted commands")
	checkSources := flag.Bool("check-sources", false, "Compare all discovered sources and report inconsistencies")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: flowboard [options]")
		fmt.Println("\nRenders a kanban board snapshot to an image and replays pointer input against it.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("flowboard %s\n", version.Version)
		os.Exit(0)
	}

	appCfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		appCfg = config.DefaultConfig()
	}

	if *checkSources {
		runCheckSources()
		return
	}

	path := *snapshotPath
	if path == "" && *sourceName != "" {
		src := appCfg.FindSource(*sourceName)
		if src == nil {
			fmt.Fprintf(os.Stderr, "Unknown source %q in config\n", *sourceName)
			os.Exit(1)
		}
		path = src.ResolvedPath()
	}

	snap, path, err := loadSnapshot(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading board: %v\n", err)
		os.Exit(1)
	}

	flags := board.ViewFlags{
		ShowSubtasks: *showSubtasks,
		FitWidth:     *fitWidth || appCfg.View.FitWidth,
	}
	if !flagWasSet("show-subtasks") && !appCfg.View.ShowSubtasks {
		flags.ShowSubtasks = false
	}

	metrics := applyMetrics(board.DefaultMetrics(), appCfg.Metrics)
	renderer := board.NewRenderer(applyTheme(board.DefaultTheme(), appCfg.Theme))
	renderer.Aging = resolveAging(appCfg.Aging, snap)

	sink := func(cmd board.Command) {
		out, err := json.Marshal(cmd)
		if err != nil {
			return
		}
		fmt.Println(string(out))
	}

	engine := board.NewEngine(renderer, metrics, flags, sink)
	if err := engine.SetSnapshot(snap); err != nil {
		fmt.Fprintf(os.Stderr, "Error building board: %v\n", err)
		os.Exit(1)
	}
	engine.Resize(*width, *height)

	if *eventsPath != "" {
		if err := replayEvents(engine, *eventsPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error replaying events: %v\n", err)
			os.Exit(1)
		}
	}

	if err := writeOutput(engine, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outPath, err)
		os.Exit(1)
	}

	if *watchFlag {
		if err := watchAndRender(engine, path, *outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadSnapshot loads from an explicit path, or discovers the freshest
// valid source in the current directory.
func loadSnapshot(path string) (*model.BoardSnapshot, string, error) {
	if path != "" {
		snap, err := datasource.LoadSnapshot(path)
		return snap, path, err
	}
	snap, src, err := datasource.LoadBest("")
	if err != nil {
		return nil, "", err
	}
	return snap, src.Path, nil
}

func runCheckSources() {
	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
		ValidateAfterDiscovery: true,
		IncludeInvalid:         true,
		Verbose:                true,
		Logger:                 func(msg string) { fmt.Fprintln(os.Stderr, msg) },
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
		os.Exit(1)
	}
	diffs, err := datasource.CheckAllSourcesConsistent(sources, datasource.DefaultDiffOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Comparison failed: %v\n", err)
		os.Exit(1)
	}
	if len(diffs) == 0 {
		fmt.Println("All sources consistent")
		return
	}
	for _, d := range diffs {
		fmt.Print(d.Summary())
	}
	os.Exit(1)
}

// pointerEvent is one line in a replay file.
type pointerEvent struct {
	Type string  `json:"type"` // down, move, up, cancel, wheel, resize
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	DX   float64 `json:"dx,omitempty"`
	DY   float64 `json:"dy,omitempty"`
	W    float64 `json:"w,omitempty"`
	H    float64 `json:"h,omitempty"`
}

// replayEvents feeds a JSONL pointer trace through the engine. Emitted
// commands appear on stdout via the engine's sink.
func replayEvents(engine *board.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var ev pointerEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		switch ev.Type {
		case "down":
			engine.PointerDown(board.Point{X: ev.X, Y: ev.Y})
		case "move":
			engine.PointerMove(board.Point{X: ev.X, Y: ev.Y})
		case "up":
			engine.PointerUp(board.Point{X: ev.X, Y: ev.Y})
		case "cancel":
			engine.PointerCancel()
		case "wheel":
			engine.Wheel(ev.DX, ev.DY)
		case "resize":
			engine.Resize(ev.W, ev.H)
		default:
			return fmt.Errorf("line %d: unknown event type %q", lineNo, ev.Type)
		}
	}
	return scanner.Err()
}

// writeOutput renders the board to outPath, dispatching on extension.
func writeOutput(engine *board.Engine, outPath string) error {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".svg":
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return engine.PaintSVG(f)
	case ".png":
		img := engine.Paint()
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return png.Encode(f, img)
	default:
		return fmt.Errorf("unsupported output format %q (use .png or .svg)", filepath.Ext(outPath))
	}
}

// watchAndRender re-renders the output whenever the snapshot file
// changes, until interrupted.
func watchAndRender(engine *board.Engine, snapshotPath, outPath string) error {
	w, err := watcher.Start(snapshotPath, watcher.Options{})
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintf(os.Stderr, "Watching %s (mode=%s)\n", snapshotPath, w.Mode())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			return nil
		case err := <-w.Errors():
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		case <-w.Events():
			snap, err := datasource.LoadSnapshot(snapshotPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
				continue
			}
			if err := engine.SetSnapshot(snap); err != nil {
				fmt.Fprintf(os.Stderr, "Reload rejected: %v\n", err)
				continue
			}
			if err := writeOutput(engine, outPath); err != nil {
				fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
				continue
			}
			fmt.Fprintf(os.Stderr, "Re-rendered %s\n", outPath)
		}
	}
}

func applyMetrics(m board.Metrics, overrides config.MetricsConfig) board.Metrics {
	if overrides.ColumnWidth > 0 {
		m.ColumnWidth = overrides.ColumnWidth
	}
	if overrides.CardBaseHeight > 0 {
		m.CardBaseHeight = overrides.CardBaseHeight
	}
	if overrides.LaneLabelWidth > 0 {
		m.LaneLabelWidth = overrides.LaneLabelWidth
	}
	if overrides.DragThreshold > 0 {
		m.DragThreshold = overrides.DragThreshold
	}
	return m
}

func applyTheme(t board.Theme, overrides config.ThemeConfig) board.Theme {
	if c, err := board.ParseHex(overrides.Background); err == nil && overrides.Background != "" {
		t.Background = c
	}
	if c, err := board.ParseHex(overrides.CardFill); err == nil && overrides.CardFill != "" {
		t.CardFill = c
	}
	if c, err := board.ParseHex(overrides.Accent); err == nil && overrides.Accent != "" {
		t.Accent = c
	}
	if c, err := board.ParseHex(overrides.WIPOver); err == nil && overrides.WIPOver != "" {
		t.WIPOver = c
	}
	for name, hex := range overrides.Categories {
		c, err := board.ParseHex(hex)
		if err != nil {
			continue
		}
		if t.Categories == nil {
			t.Categories = map[string]color.RGBA{}
		}
		t.Categories[name] = c
	}
	return t
}

func resolveAging(cfg config.AgingConfig, snap *model.BoardSnapshot) board.AgingTiers {
	if cfg.Adaptive {
		now := snap.GeneratedAt
		if now.IsZero() {
			now = time.Now()
		}
		return board.AdaptiveAgingTiers(snap.Cards, now)
	}
	tiers := board.FixedAgingTiers()
	if cfg.WarnAfter > 0 {
		tiers.WarnAfter = cfg.WarnAfter
	}
	if cfg.LateAfter > 0 {
		tiers.LateAfter = cfg.LateAfter
	}
	return tiers
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
