// Package tui implements the tweenflow scene player.
//
// The player is the tick host: a BubbleTea frame timer advances the
// root flow state and calls engine.Tick once per frame. Built with
// Charmbracelet's BubbleTea, Lipgloss and Bubbles libraries.
//
// Component architecture:
//
//	model.go     — root model, frame loop, key routing, Init/Update/View
//	keys.go      — key bindings (bubbles/key)
//	feed.go      — engine observer that keeps recent writes for display
//	theme.go     — centralized color + style definitions
//	header.go    — top bar with playback state, footer with key hints
//	stage.go     — widget boxes drawn at their animated geometry
//	inspector.go — widget tree, live properties and runtime counters
//	timeline.go  — one keyframe lane per animated widget with playheads
//	journal.go   — most recent property writes and diagnostics
//	helpers.go   — widget tree building, truncation, etc.
package tui
