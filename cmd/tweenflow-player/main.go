// tweenflow player — interactive terminal playback of a scene.
//
// Usage:
//
//	tweenflow-player [flags] [scene.toml]
//
// Flags:
//
//	--db          Path to SQLite journal (default: ~/.tweenflow/journal.db)
//	--journal     Record the session into the journal
//	--fps         Frames per second
//	--loop        Wrap playback at the end of the timeline
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Mr-Dark-debug/tweenflow/internal/config"
	"github.com/Mr-Dark-debug/tweenflow/internal/database"
	"github.com/Mr-Dark-debug/tweenflow/internal/engine"
	"github.com/Mr-Dark-debug/tweenflow/internal/flow"
	"github.com/Mr-Dark-debug/tweenflow/internal/journal"
	"github.com/Mr-Dark-debug/tweenflow/internal/scene"
	"github.com/Mr-Dark-debug/tweenflow/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbPath := flag.String("db", cfg.Journal.Path, "Path to SQLite journal")
	record := flag.Bool("journal", cfg.Journal.Enabled, "Record the session into the journal")
	fps := flag.Int("fps", cfg.Player.FPS, "Frames per second")
	duration := flag.Float64("duration", cfg.Player.Duration, "Loop length in seconds (0 = last keyframe end)")
	loop := flag.Bool("loop", cfg.Player.Loop, "Wrap playback at the end of the timeline")
	flag.Parse()

	scenePath := cfg.Scene.Path
	if flag.NArg() > 0 {
		scenePath = flag.Arg(0)
	}
	if scenePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: tweenflow-player [flags] <scene.toml>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := scene.Load(scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	// The alt screen owns the terminal; diagnostics go to the journal pane.
	quiet := log.New(io.Discard, "", 0)

	var next engine.Observer
	var rec *journal.Recorder
	if *record {
		if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
			log.Fatalf("Failed to create journal directory: %v", err)
		}
		store, err := database.NewDBService(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open journal at %s: %v", *dbPath, err)
		}
		defer store.Close()

		rec, err = journal.NewRecorder(store, journal.Config{
			Scene:     f.Name,
			BatchSize: cfg.Journal.BatchSize,
			Metadata: map[string]string{
				"scene_path": scenePath,
				"fps":        strconv.Itoa(*fps),
				"player":     "interactive",
			},
			Logger: quiet,
		})
		if err != nil {
			log.Fatalf("Failed to start journal session: %v", err)
		}
		next = rec
	}

	feed := tui.NewFeed(next, 0)
	ev := flow.NewEvaluator()
	rt := engine.New(engine.Config{
		Evaluator: ev,
		Assigner:  ev,
		Observer:  feed,
		Logger:    quiet,
	})

	s, err := scene.Build(f, rt)
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}

	model := tui.NewModel(s, tui.Options{
		Feed: feed,
		// Reset reads the file again so edits show up without restarting.
		Load: func(rt *engine.Runtime) (*scene.Scene, error) {
			return scene.Open(scenePath, rt)
		},
		FPS:      *fps,
		Duration: *duration,
		Loop:     *loop,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, runErr := p.Run()

	if rec != nil {
		if err := rec.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Journal close: %v\n", err)
		} else {
			fmt.Printf("Session %s recorded to %s\n", rec.SessionID(), *dbPath)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running player: %v\n", runErr)
		os.Exit(1)
	}
}
