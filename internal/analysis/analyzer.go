// Package analysis provides lightweight, deterministic analysis of
// recorded journal sessions. All analysis uses simple statistics over
// the write history.
//
// Key capabilities:
//   - Property churn and oscillation detection (write/notify loops)
//   - Write hotspot detection via Z-score analysis
//   - Write-rate trend analysis via linear regression
//   - Diagnostic summary per task kind
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/tweenflow/internal/database"
)

// Analyzer performs analysis on journal data.
type Analyzer struct {
	store database.Store
}

// NewAnalyzer creates a new analysis engine backed by the given store.
func NewAnalyzer(store database.Store) *Analyzer {
	return &Analyzer{store: store}
}

// ============================================================
// Property Churn
// ============================================================

// PropertyChurn describes how often one property of one target was
// written and how often the written value changed direction.
type PropertyChurn struct {
	Target      string  `json:"target"`
	Property    string  `json:"property"`
	Writes      int     `json:"writes"`
	TicksActive int     `json:"ticks_active"`
	Reversals   int     `json:"reversals"`
	WriteRatio  float64 `json:"write_ratio"` // share of session ticks with a write
	Oscillating bool    `json:"oscillating"`
}

// AnalyzeChurn computes per-property churn for a session. A property
// written on more than half of the session's ticks that reversed
// direction at least three times is flagged as oscillating; that is the
// signature of two writers fighting over one value.
func (a *Analyzer) AnalyzeChurn(sessionID string) ([]PropertyChurn, error) {
	writes, err := a.store.QueryWrites(sessionID, database.WriteFilter{})
	if err != nil {
		return nil, fmt.Errorf("querying writes for churn analysis: %w", err)
	}
	stats, err := a.store.GetSessionStats(sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying stats for churn analysis: %w", err)
	}

	type key struct{ target, property string }
	groups := make(map[key][]*database.WriteRecord)
	var order []key
	for _, w := range writes {
		k := key{w.Target, w.Property}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], w)
	}

	churn := make([]PropertyChurn, 0, len(order))
	for _, k := range order {
		ws := groups[k]
		ticks := make(map[int64]bool)
		for _, w := range ws {
			ticks[w.Tick] = true
		}
		c := PropertyChurn{
			Target:      k.target,
			Property:    k.property,
			Writes:      len(ws),
			TicksActive: len(ticks),
			Reversals:   countReversals(ws),
		}
		if stats.Ticks > 0 {
			c.WriteRatio = math.Round(float64(c.TicksActive)/float64(stats.Ticks)*1000) / 1000
		}
		c.Oscillating = c.WriteRatio > 0.5 && c.Reversals >= 3
		churn = append(churn, c)
	}

	sort.SliceStable(churn, func(i, j int) bool {
		return churn[i].Writes > churn[j].Writes
	})
	return churn, nil
}

// countReversals counts direction changes in a write history. Numeric
// values reverse when the sign of the step flips; other values reverse
// when a write restores the value seen two writes earlier.
func countReversals(ws []*database.WriteRecord) int {
	vals := make([]string, 0, len(ws))
	for _, w := range ws {
		if w.NewValue != nil {
			vals = append(vals, *w.NewValue)
		}
	}

	reversals := 0
	lastDir := 0
	for i := 1; i < len(vals); i++ {
		prev, perr := strconv.ParseFloat(vals[i-1], 64)
		cur, cerr := strconv.ParseFloat(vals[i], 64)
		if perr != nil || cerr != nil {
			if i >= 2 && vals[i] == vals[i-2] && vals[i] != vals[i-1] {
				reversals++
			}
			continue
		}
		dir := 0
		switch {
		case cur > prev:
			dir = 1
		case cur < prev:
			dir = -1
		}
		if dir == 0 {
			continue
		}
		if lastDir != 0 && dir != lastDir {
			reversals++
		}
		lastDir = dir
	}
	return reversals
}

// ============================================================
// Write Hotspot Detection
// ============================================================

// WriteHotspot identifies a target receiving abnormally many writes.
type WriteHotspot struct {
	Target   string  `json:"target"`
	Writes   int     `json:"writes"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"` // "low", "medium", "high"
}

// DetectWriteHotspots calculates the Z-score of write counts across all
// targets in a session.
//
// A Z-score > 2.0 is considered a hotspot ("medium" severity).
// A Z-score > 3.0 is a significant hotspot ("high" severity).
func (a *Analyzer) DetectWriteHotspots(sessionID string) ([]WriteHotspot, error) {
	writes, err := a.store.QueryWrites(sessionID, database.WriteFilter{})
	if err != nil {
		return nil, fmt.Errorf("querying writes for hotspot analysis: %w", err)
	}

	counts := make(map[string]int)
	var targets []string
	for _, w := range writes {
		if _, ok := counts[w.Target]; !ok {
			targets = append(targets, w.Target)
		}
		counts[w.Target]++
	}

	if len(targets) < 2 {
		// Not enough data for meaningful Z-score analysis
		return nil, nil
	}

	var sum, sumSq float64
	for _, t := range targets {
		c := float64(counts[t])
		sum += c
		sumSq += c * c
	}

	n := float64(len(targets))
	mean := sum / n
	variance := (sumSq / n) - (mean * mean)
	stddev := math.Sqrt(variance)

	if stddev == 0 {
		return nil, nil
	}

	var hotspots []WriteHotspot
	for _, t := range targets {
		zScore := (float64(counts[t]) - mean) / stddev

		if zScore > 1.5 {
			severity := "low"
			if zScore > 3.0 {
				severity = "high"
			} else if zScore > 2.0 {
				severity = "medium"
			}

			hotspots = append(hotspots, WriteHotspot{
				Target:   t,
				Writes:   counts[t],
				ZScore:   math.Round(zScore*100) / 100,
				Severity: severity,
			})
		}
	}

	sort.Slice(hotspots, func(i, j int) bool {
		return hotspots[i].ZScore > hotspots[j].ZScore
	})

	return hotspots, nil
}

// ============================================================
// Write-Rate Trend
// ============================================================

// WriteTrendReport contains the regression of writes per tick.
type WriteTrendReport struct {
	SessionID         string  `json:"session_id"`
	Ticks             int64   `json:"ticks"`
	TotalWrites       int     `json:"total_writes"`
	MeanPerTick       float64 `json:"mean_per_tick"`
	Slope             float64 `json:"slope"`     // writes per tick, per tick
	Intercept         float64 `json:"intercept"` // writes at tick 0
	RSquared          float64 `json:"r_squared"`
	Prediction100Tick int     `json:"prediction_100_ticks"` // predicted writes per tick 100 ticks ahead
	IsGrowing         bool    `json:"is_growing"`
	IsSettled         bool    `json:"is_settled"` // last tenth of the session wrote nothing
}

// dataPoint represents a single observation for regression analysis.
type dataPoint struct {
	x float64
	y float64
}

// AnalyzeWriteTrend performs linear regression on the number of writes
// per tick. A healthy animation settles once its keyframes end and its
// bindings agree with the flow; a steadily rising rate means something
// keeps writing.
func (a *Analyzer) AnalyzeWriteTrend(sessionID string) (*WriteTrendReport, error) {
	writes, err := a.store.QueryWrites(sessionID, database.WriteFilter{})
	if err != nil {
		return nil, fmt.Errorf("querying writes for trend analysis: %w", err)
	}
	stats, err := a.store.GetSessionStats(sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying stats for trend analysis: %w", err)
	}

	report := &WriteTrendReport{
		SessionID:   sessionID,
		Ticks:       stats.Ticks,
		TotalWrites: len(writes),
	}
	if stats.Ticks < 2 {
		return report, nil
	}

	perTick := make([]float64, stats.Ticks+1)
	for _, w := range writes {
		if w.Tick >= 1 && w.Tick <= stats.Ticks {
			perTick[w.Tick]++
		}
	}

	points := make([]dataPoint, 0, stats.Ticks)
	for tick := int64(1); tick <= stats.Ticks; tick++ {
		points = append(points, dataPoint{x: float64(tick), y: perTick[tick]})
	}

	slope, intercept, rSquared := linearRegression(points)
	prediction := slope*float64(stats.Ticks+100) + intercept

	tail := stats.Ticks / 10
	if tail < 1 {
		tail = 1
	}
	settled := true
	for tick := stats.Ticks - tail + 1; tick <= stats.Ticks; tick++ {
		if perTick[tick] > 0 {
			settled = false
			break
		}
	}

	report.MeanPerTick = math.Round(float64(len(writes))/float64(stats.Ticks)*100) / 100
	report.Slope = math.Round(slope*1000) / 1000
	report.Intercept = math.Round(intercept*100) / 100
	report.RSquared = math.Round(rSquared*1000) / 1000
	report.Prediction100Tick = int(math.Max(0, prediction))
	report.IsGrowing = slope > 0.1 && rSquared > 0.7
	report.IsSettled = settled
	return report, nil
}

// linearRegression computes ordinary least squares regression.
// Returns slope (m), intercept (b), and R-squared goodness of fit.
func linearRegression(points []dataPoint) (slope, intercept, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.x
		sumY += p.y
		sumXY += p.x * p.y
		sumX2 += p.x * p.x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		predicted := slope*p.x + intercept
		ssRes += (p.y - predicted) * (p.y - predicted)
		ssTot += (p.y - meanY) * (p.y - meanY)
	}

	if ssTot == 0 {
		rSquared = 1.0
	} else {
		rSquared = 1 - ssRes/ssTot
	}

	return slope, intercept, rSquared
}

// ============================================================
// Diagnostics Summary
// ============================================================

// DiagnosticCount aggregates diagnostics of one kind and outcome.
type DiagnosticCount struct {
	Kind      string `json:"kind"`
	Outcome   string `json:"outcome"`
	Count     int    `json:"count"`
	FirstTick int64  `json:"first_tick"`
	Example   string `json:"example"`
}

// SummarizeDiagnostics groups the diagnostics of a session.
func (a *Analyzer) SummarizeDiagnostics(sessionID string) ([]DiagnosticCount, error) {
	diags, err := a.store.QueryDiagnostics(sessionID, math.MaxInt32)
	if err != nil {
		return nil, fmt.Errorf("querying diagnostics for summary: %w", err)
	}

	index := make(map[string]int)
	var out []DiagnosticCount
	for _, d := range diags {
		k := d.Kind + "/" + d.Outcome
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, DiagnosticCount{Kind: d.Kind, Outcome: d.Outcome, FirstTick: d.Tick, Example: d.Message})
			i = len(out) - 1
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// ============================================================
// Full Analysis Report
// ============================================================

// AnalysisReport is the complete output of `tweenflow analyze`.
type AnalysisReport struct {
	SessionID     string                 `json:"session_id"`
	GeneratedAt   string                 `json:"generated_at"`
	Stats         *database.SessionStats `json:"stats"`
	Churn         []PropertyChurn        `json:"churn"`
	WriteHotspots []WriteHotspot         `json:"write_hotspots"`
	WriteTrend    *WriteTrendReport      `json:"write_trend"`
	Diagnostics   []DiagnosticCount      `json:"diagnostics"`
	Warnings      []string               `json:"warnings"`
}

// FullAnalysis runs all analysis passes and generates a comprehensive report.
func (a *Analyzer) FullAnalysis(sessionID string) (*AnalysisReport, error) {
	report := &AnalysisReport{
		SessionID:   sessionID,
		GeneratedAt: time.Now().Format(time.RFC3339),
	}

	stats, err := a.store.GetSessionStats(sessionID)
	if err != nil {
		return nil, fmt.Errorf("gathering session stats: %w", err)
	}
	report.Stats = stats

	churn, err := a.AnalyzeChurn(sessionID)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Churn analysis failed: %v", err))
	} else {
		report.Churn = churn
	}

	hotspots, err := a.DetectWriteHotspots(sessionID)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Write hotspot analysis failed: %v", err))
	} else {
		report.WriteHotspots = hotspots
	}

	trend, err := a.AnalyzeWriteTrend(sessionID)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Write trend analysis failed: %v", err))
	} else {
		report.WriteTrend = trend
	}

	diags, err := a.SummarizeDiagnostics(sessionID)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Diagnostic summary failed: %v", err))
	} else {
		report.Diagnostics = diags
	}

	for _, c := range churn {
		if c.Oscillating {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("⚠ OSCILLATION: %s.%s written on %.0f%% of ticks with %d reversals. "+
					"Check for competing writers or a forwarding loop.",
					c.Target, c.Property, c.WriteRatio*100, c.Reversals))
		}
	}

	if trend != nil && trend.IsGrowing {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("⚠ GROWING WRITE RATE (slope=%.3f writes/tick², R²=%.3f).",
				trend.Slope, trend.RSquared))
	}

	for _, h := range hotspots {
		if h.Severity == "high" {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("⚠ WRITE HOTSPOT: %s received %d writes (Z-score: %.2f).",
					h.Target, h.Writes, h.ZScore))
		}
	}

	return report, nil
}

// FormatReport generates a human-readable markdown report.
func (a *Analyzer) FormatReport(report *AnalysisReport) string {
	var b strings.Builder

	b.WriteString("# tweenflow Session Report\n\n")
	b.WriteString(fmt.Sprintf("**Session ID:** `%s`\n", report.SessionID))
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt))

	if report.Stats != nil {
		st := report.Stats
		b.WriteString("## Session Summary\n\n")
		b.WriteString("| Metric | Value |\n")
		b.WriteString("|--------|-------|\n")
		b.WriteString(fmt.Sprintf("| Ticks | %d |\n", st.Ticks))
		b.WriteString(fmt.Sprintf("| Total Writes | %d |\n", st.TotalWrites))
		b.WriteString(fmt.Sprintf("| Timeline Writes | %d |\n", st.TimelineWrites))
		b.WriteString(fmt.Sprintf("| Task Writes | %d |\n", st.TaskWrites))
		b.WriteString(fmt.Sprintf("| Targets | %d |\n", st.Targets))
		b.WriteString(fmt.Sprintf("| Properties | %d |\n", st.Properties))
		b.WriteString(fmt.Sprintf("| Diagnostics | %d |\n", st.Diagnostics))
		b.WriteString(fmt.Sprintf("| Rejected Writes | %d |\n\n", st.Rejected))
	}

	if len(report.Churn) > 0 {
		b.WriteString("## Property Churn\n\n")
		b.WriteString("| Property | Writes | Ticks | Reversals | Oscillating |\n")
		b.WriteString("|----------|--------|-------|-----------|-------------|\n")
		for _, c := range report.Churn {
			osc := ""
			if c.Oscillating {
				osc = "yes"
			}
			b.WriteString(fmt.Sprintf("| %s.%s | %d | %d | %d | %s |\n",
				c.Target, c.Property, c.Writes, c.TicksActive, c.Reversals, osc))
		}
		b.WriteString("\n")
	}

	if len(report.WriteHotspots) > 0 {
		b.WriteString("## Write Hotspots\n\n")
		b.WriteString("| Target | Writes | Z-Score | Severity |\n")
		b.WriteString("|--------|--------|---------|----------|\n")
		for _, h := range report.WriteHotspots {
			b.WriteString(fmt.Sprintf("| %s | %d | %.2f | %s |\n",
				h.Target, h.Writes, h.ZScore, h.Severity))
		}
		b.WriteString("\n")
	}

	if report.WriteTrend != nil {
		wt := report.WriteTrend
		b.WriteString("## Write-Rate Trend\n\n")
		b.WriteString(fmt.Sprintf("- **Mean Writes/Tick:** %.2f\n", wt.MeanPerTick))
		b.WriteString(fmt.Sprintf("- **Slope:** %.3f\n", wt.Slope))
		b.WriteString(fmt.Sprintf("- **R² Fit:** %.3f\n", wt.RSquared))
		b.WriteString(fmt.Sprintf("- **Prediction (+100 ticks):** %d writes/tick\n", wt.Prediction100Tick))
		if wt.IsSettled {
			b.WriteString("- Settled: no writes in the last tenth of the session\n")
		}
		if wt.IsGrowing {
			b.WriteString("- **⚠ WARNING:** Write rate is growing!\n")
		}
		b.WriteString("\n")
	}

	if len(report.Diagnostics) > 0 {
		b.WriteString("## Diagnostics\n\n")
		b.WriteString("| Kind | Outcome | Count | First Tick | Example |\n")
		b.WriteString("|------|---------|-------|------------|---------|\n")
		for _, d := range report.Diagnostics {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s |\n",
				d.Kind, d.Outcome, d.Count, d.FirstTick, d.Example))
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return b.String()
}
