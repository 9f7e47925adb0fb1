// tweenflow CLI — headless scene playback, scrubbing and journal queries.
//
// Usage:
//
//	tweenflow <command> [flags]
//
// Commands:
//
//	scrub     Print widget snapshots at a timeline position
//	diff      Diff widget snapshots between two positions
//	run       Play a scene headless and journal every write
//	sessions  List journal sessions
//	writes    List the writes of a session
//	analyze   Run churn/hotspot/trend analysis on a session
//	version   Print version information
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/Mr-Dark-debug/tweenflow/internal/analysis"
	"github.com/Mr-Dark-debug/tweenflow/internal/config"
	"github.com/Mr-Dark-debug/tweenflow/internal/database"
	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/journal"
	"github.com/Mr-Dark-debug/tweenflow/internal/scene"
	"github.com/Mr-Dark-debug/tweenflow/pkg/jsonutil"
	"github.com/Mr-Dark-debug/tweenflow/pkg/timeutil"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch os.Args[1] {
	case "scrub":
		cmdScrub(cfg)
	case "diff":
		cmdDiff(cfg)
	case "run":
		cmdRun(cfg)
	case "sessions":
		cmdSessions(cfg)
	case "writes":
		cmdWrites(cfg)
	case "analyze":
		cmdAnalyze(cfg)
	case "version":
		fmt.Printf("tweenflow v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tweenflow — widget animation and flow synchronization

Usage:
  tweenflow <command> [flags]

Commands:
  scrub      Print widget snapshots at a timeline position
  diff       Diff widget snapshots between two positions
  run        Play a scene headless and journal every write
  sessions   List journal sessions
  writes     List the writes of a session
  analyze    Run churn, hotspot and trend analysis on a session
  version    Print version information

Run 'tweenflow <command> --help' for details on each command.`)
}

// openScene builds a scene into a fresh runtime backed by the in-memory
// flow evaluator.
func openScene(path string, obs engine.Observer, logger *log.Logger) (*scene.Scene, error) {
	f, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	return buildScene(f, obs, logger)
}

func buildScene(f *scene.File, obs engine.Observer, logger *log.Logger) (*scene.Scene, error) {
	ev := flow.NewEvaluator()
	rt := engine.New(engine.Config{
		Evaluator: ev,
		Assigner:  ev,
		Observer:  obs,
		Logger:    logger,
	})
	return scene.Build(f, rt)
}

func requireScene(fs *flag.FlagSet, path string) {
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: --scene is required (or set scene.path in the config)")
		fs.Usage()
		os.Exit(1)
	}
}

// replayBindings runs every binding once so snapshots include flow
// values, not only animated geometry.
func replayBindings(rt *engine.Runtime) {
	for _, t := range rt.Bindings() {
		rt.Enqueue(t)
	}
	rt.ReplayUpdateTasks()
}

// cmdScrub evaluates every timeline at one position and prints the
// resulting widget state.
func cmdScrub(cfg config.Config) {
	fs := flag.NewFlagSet("scrub", flag.ExitOnError)
	scenePath := fs.String("scene", cfg.Scene.Path, "Scene file (TOML)")
	at := fs.Float64("at", 0, "Timeline position in seconds")
	bind := fs.Bool("bind", false, "Also replay bindings once")
	name := fs.String("widget", "", "Print only this widget")
	fs.Parse(os.Args[2:])
	requireScene(fs, *scenePath)

	s, err := openScene(*scenePath, nil, nil)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	s.Seek(*at)
	if *bind {
		replayBindings(s.Runtime())
	}

	if *name != "" {
		w, ok := s.Widget(*name)
		if !ok {
			log.Fatalf("Unknown widget %q", *name)
		}
		fmt.Println(jsonutil.MustMarshalIndent(w.Snapshot()))
		return
	}
	fmt.Println(jsonutil.MustMarshalIndent(s.Snapshot()))
}

// cmdDiff prints what changes between two timeline positions.
func cmdDiff(cfg config.Config) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	scenePath := fs.String("scene", cfg.Scene.Path, "Scene file (TOML)")
	from := fs.Float64("from", 0, "First position in seconds")
	to := fs.Float64("to", 1, "Second position in seconds")
	base := fs.String("base", "", "Compare against a saved scrub output instead of --from")
	outputFormat := fs.String("format", "text", "Output format: text, json")
	fs.Parse(os.Args[2:])
	requireScene(fs, *scenePath)

	s, err := openScene(*scenePath, nil, nil)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	var diffs []jsonutil.JSONDiff
	label := timeutil.FormatPosition(*from)
	if *base != "" {
		saved, err := os.ReadFile(*base)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *base, err)
		}
		s.Seek(*to)
		diffs, err = jsonutil.ComputeJSONDiff(string(saved), jsonutil.MustMarshal(s.Snapshot()))
		if err != nil {
			log.Fatalf("Failed to diff against %s: %v", *base, err)
		}
		label = filepath.Base(*base)
	} else {
		s.Seek(*from)
		before := s.Snapshot()
		s.Seek(*to)
		diffs = jsonutil.DiffMaps(before, s.Snapshot())
	}

	switch *outputFormat {
	case "json":
		fmt.Println(jsonutil.MustMarshalIndent(diffs))
	case "text":
		fmt.Printf("%s → %s: %d changes\n", label, timeutil.FormatPosition(*to), len(diffs))
		for _, d := range diffs {
			switch d.Type {
			case "add":
				fmt.Printf("+ %s: %s\n", d.Path, d.NewValue)
			case "delete":
				fmt.Printf("- %s: %s\n", d.Path, d.OldValue)
			default:
				fmt.Printf("~ %s: %s → %s\n", d.Path, d.OldValue, d.NewValue)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *outputFormat)
		os.Exit(1)
	}
}

// cmdRun plays a scene for a fixed number of ticks, journaling every
// write and diagnostic.
func cmdRun(cfg config.Config) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	scenePath := fs.String("scene", cfg.Scene.Path, "Scene file (TOML)")
	ticks := fs.Int("ticks", 0, "Ticks to run (default: one loop of the timeline)")
	fps := fs.Int("fps", cfg.Player.FPS, "Ticks per second of timeline time")
	duration := fs.Float64("duration", cfg.Player.Duration, "Loop length in seconds (0 = last keyframe end)")
	loop := fs.Bool("loop", cfg.Player.Loop, "Wrap positions at the loop length")
	realtime := fs.Bool("realtime", false, "Sleep between ticks")
	dbPath := fs.String("db", cfg.Journal.Path, "Path to SQLite journal")
	record := fs.Bool("journal", cfg.Journal.Enabled, "Record the run into the journal")
	batch := fs.Int("batch", cfg.Journal.BatchSize, "Journal batch size before flush")
	quiet := fs.Bool("quiet", false, "Silence [WARN] diagnostics on stderr")
	fs.Parse(os.Args[2:])
	requireScene(fs, *scenePath)

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if *quiet {
		logger = log.New(io.Discard, "", 0)
	}

	f, err := scene.Load(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	var rec *journal.Recorder
	var obs engine.Observer
	if *record {
		if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
			log.Fatalf("Failed to create journal directory: %v", err)
		}
		store, err := database.NewDBService(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer store.Close()

		rec, err = journal.NewRecorder(store, journal.Config{
			Scene:     f.Name,
			BatchSize: *batch,
			Metadata: map[string]string{
				"scene_path": *scenePath,
				"fps":        strconv.Itoa(*fps),
			},
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("Failed to start journal session: %v", err)
		}
		obs = rec
	}

	s, err := buildScene(f, obs, logger)
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}

	length := *duration
	if length <= 0 {
		length = s.Duration()
	}
	n := *ticks
	if n <= 0 {
		n = int(length*float64(*fps)) + 1
	}
	wrap := 0.0
	if *loop {
		wrap = length
	}
	interval := timeutil.FrameInterval(*fps)
	dt := interval.Seconds()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ticker *time.Ticker
	if *realtime {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	start := time.Now()
	rt := s.Runtime()
	for i := 0; i < n && ctx.Err() == nil; i++ {
		if i > 0 {
			s.Root.Advance(dt, wrap)
		}
		rt.Tick(s.Root)
		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
			}
		}
	}

	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Printf("[WARN] Journal close: %v", err)
		}
	}

	st := rt.Stats()
	fmt.Println()
	fmt.Printf("  Scene:            %s\n", s.Name)
	fmt.Printf("  Ticks:            %d (playhead at %s)\n", st.Ticks, timeutil.FormatPosition(s.Root.TimelinePosition()))
	fmt.Printf("  Timeline writes:  %d\n", st.TimelineWrites)
	fmt.Printf("  Task writes:      %d\n", st.TaskWrites)
	fmt.Printf("  Forwarded edits:  %d\n", st.Forwarded)
	fmt.Printf("  Rejected:         %d\n", st.Rejected)
	fmt.Printf("  Failed:           %d\n", st.Failed+st.Stale)
	fmt.Printf("  Elapsed:          %s\n", timeutil.FormatDuration(time.Since(start).Milliseconds()))
	if rec != nil {
		fmt.Printf("  Session:          %s\n", rec.SessionID())
	}
	fmt.Println()
}

func openJournal(path string) *database.DBService {
	store, err := database.NewDBService(path)
	if err != nil {
		log.Fatalf("Failed to open journal at %s: %v", path, err)
	}
	return store
}

// cmdSessions lists recorded sessions.
func cmdSessions(cfg config.Config) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	dbPath := fs.String("db", cfg.Journal.Path, "Path to SQLite journal")
	sceneName := fs.String("scene", "", "Filter by scene name")
	status := fs.String("status", "", "Filter by status: running, completed")
	since := fs.Duration("since", 0, "Only sessions started within this window (e.g. 1h)")
	limit := fs.Int("limit", 20, "Maximum results")
	outputFormat := fs.String("format", "table", "Output format: table, json")
	fs.Parse(os.Args[2:])

	store := openJournal(*dbPath)
	defer store.Close()

	filter := database.SessionFilter{Limit: *limit}
	if *sceneName != "" {
		filter.Scene = sceneName
	}
	if *status != "" {
		filter.Status = status
	}
	if *since > 0 {
		from := timeutil.NowNano() - since.Nanoseconds()
		filter.Since = &from
	}

	sessions, err := store.QuerySessions(filter)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	if *outputFormat == "json" {
		b, _ := json.MarshalIndent(sessions, "", "  ")
		fmt.Println(string(b))
		return
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return
	}
	fmt.Printf("%-36s  %-16s  %-10s  %-23s  %s\n", "SESSION", "SCENE", "STATUS", "STARTED", "DURATION")
	for _, sess := range sessions {
		dur := "-"
		if sess.EndedAt != nil {
			dur = timeutil.FormatDuration((*sess.EndedAt - sess.StartedAt) / int64(time.Millisecond))
		}
		fmt.Printf("%-36s  %-16s  %-10s  %-23s  %s (%s)\n",
			sess.SessionID,
			jsonutil.TruncateString(sess.Scene, 16),
			sess.Status,
			timeutil.FormatTimestampFull(sess.StartedAt),
			dur,
			timeutil.RelativeTime(sess.StartedAt),
		)
	}
}

// cmdWrites lists the writes of a session, optionally narrowed to one
// property.
func cmdWrites(cfg config.Config) {
	fs := flag.NewFlagSet("writes", flag.ExitOnError)
	dbPath := fs.String("db", cfg.Journal.Path, "Path to SQLite journal")
	sessionID := fs.String("session", "", "Session ID (required)")
	target := fs.String("target", "", "Filter by widget name")
	property := fs.String("property", "", "Filter by property name")
	source := fs.String("source", "", "Filter by source: timeline, task")
	fromTick := fs.Int64("from", -1, "First tick")
	toTick := fs.Int64("to", -1, "Last tick")
	limit := fs.Int("limit", 100, "Maximum results (0 = all)")
	outputFormat := fs.String("format", "table", "Output format: table, json")
	fs.Parse(os.Args[2:])

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "Error: --session is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openJournal(*dbPath)
	defer store.Close()

	filter := database.WriteFilter{Limit: *limit}
	if *target != "" {
		filter.Target = target
	}
	if *property != "" {
		filter.Property = property
	}
	if *source != "" {
		filter.Source = source
	}
	if *fromTick >= 0 {
		filter.FromTick = fromTick
	}
	if *toTick >= 0 {
		filter.ToTick = toTick
	}

	writes, err := store.QueryWrites(*sessionID, filter)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	if *outputFormat == "json" {
		b, _ := json.MarshalIndent(writes, "", "  ")
		fmt.Println(string(b))
		return
	}
	for _, w := range writes {
		fmt.Printf("%s  #%-6d %s  %-8s %s.%s  %s → %s\n",
			timeutil.FormatTimestamp(w.RecordedAt),
			w.Tick,
			timeutil.FormatPosition(w.Position),
			w.Source,
			w.Target,
			w.Property,
			jsonutil.TruncateString(deref(w.OldValue), 24),
			jsonutil.TruncateString(deref(w.NewValue), 24),
		)
	}
	fmt.Printf("%d writes\n", len(writes))
}

func deref(s *string) string {
	if s == nil {
		return "∅"
	}
	return *s
}

// cmdAnalyze runs the full analysis suite on a session and outputs a report.
func cmdAnalyze(cfg config.Config) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	sessionID := fs.String("session", "", "Session ID to analyze (required)")
	dbPath := fs.String("db", cfg.Journal.Path, "Path to SQLite journal")
	outputFormat := fs.String("format", "markdown", "Output format: markdown, json")
	fs.Parse(os.Args[2:])

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "Error: --session is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openJournal(*dbPath)
	defer store.Close()

	analyzer := analysis.NewAnalyzer(store)
	report, err := analyzer.FullAnalysis(*sessionID)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	switch *outputFormat {
	case "json":
		b, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(b))
	case "markdown":
		fmt.Print(analyzer.FormatReport(report))
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *outputFormat)
		os.Exit(1)
	}
}
