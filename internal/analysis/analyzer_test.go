package analysis

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/Mr-Dark-debug/tweenflow/internal/database"
)

func TestLinearRegression(t *testing.T) {
	// Perfect linear: y = 2x + 1
	points := []dataPoint{
		{0, 1}, {1, 3}, {2, 5}, {3, 7}, {4, 9},
	}

	slope, intercept, rSquared := linearRegression(points)

	if math.Abs(slope-2.0) > 0.001 {
		t.Errorf("expected slope=2.0, got %.3f", slope)
	}
	if math.Abs(intercept-1.0) > 0.001 {
		t.Errorf("expected intercept=1.0, got %.3f", intercept)
	}
	if math.Abs(rSquared-1.0) > 0.001 {
		t.Errorf("expected R²=1.0, got %.3f", rSquared)
	}
}

func TestLinearRegressionNoisy(t *testing.T) {
	// Noisy linear data
	points := []dataPoint{
		{0, 1.1}, {1, 2.9}, {2, 5.2}, {3, 6.8}, {4, 9.1},
	}

	slope, _, rSquared := linearRegression(points)

	// Should be approximately slope=2.0 with high R²
	if slope < 1.5 || slope > 2.5 {
		t.Errorf("expected slope ≈ 2.0, got %.3f", slope)
	}
	if rSquared < 0.95 {
		t.Errorf("expected R² > 0.95, got %.3f", rSquared)
	}
}

func TestLinearRegressionConstant(t *testing.T) {
	// All same y values — flat line
	points := []dataPoint{
		{0, 5}, {1, 5}, {2, 5}, {3, 5},
	}

	slope, intercept, rSquared := linearRegression(points)

	if math.Abs(slope) > 0.001 {
		t.Errorf("expected slope=0, got %.3f", slope)
	}
	if math.Abs(intercept-5.0) > 0.001 {
		t.Errorf("expected intercept=5.0, got %.3f", intercept)
	}
	// R² should be 1.0 for a perfect fit (even if slope=0)
	if rSquared < 0.99 {
		t.Errorf("expected R²=1.0, got %.3f", rSquared)
	}
}

func TestLinearRegressionSinglePoint(t *testing.T) {
	points := []dataPoint{{0, 5}}
	slope, _, _ := linearRegression(points)

	if slope != 0 {
		t.Errorf("expected slope=0 for single point, got %.3f", slope)
	}
}

func newStore(t *testing.T) *database.DBService {
	t.Helper()
	svc, err := database.NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	if err := svc.InsertSession(&database.Session{SessionID: "s1", Scene: "test", StartedAt: 1, Status: "completed"}); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	return svc
}

func record(id int, tick int64, target, property, value string) *database.WriteRecord {
	v := value
	return &database.WriteRecord{
		WriteID:   fmt.Sprintf("w%d", id),
		SessionID: "s1",
		Tick:      tick,
		Source:    "task",
		Target:    target,
		Property:  property,
		NewValue:  &v,
	}
}

func TestAnalyzeChurnFlagsOscillation(t *testing.T) {
	store := newStore(t)
	var writes []*database.WriteRecord
	for tick := int64(1); tick <= 10; tick++ {
		v := "0"
		if tick%2 == 0 {
			v = "10"
		}
		writes = append(writes, record(len(writes), tick, "slider", "value", v))
	}
	writes = append(writes, record(len(writes), 3, "label", "text", "hello"))
	if err := store.BatchInsertWrites(writes); err != nil {
		t.Fatalf("BatchInsertWrites failed: %v", err)
	}

	churn, err := NewAnalyzer(store).AnalyzeChurn("s1")
	if err != nil {
		t.Fatalf("AnalyzeChurn failed: %v", err)
	}
	if len(churn) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(churn))
	}
	top := churn[0]
	if top.Target != "slider" || top.Writes != 10 || top.Reversals != 8 || !top.Oscillating {
		t.Errorf("unexpected slider churn %+v", top)
	}
	if churn[1].Oscillating {
		t.Errorf("single write should not oscillate: %+v", churn[1])
	}
}

func TestCountReversalsText(t *testing.T) {
	ws := []*database.WriteRecord{
		record(0, 1, "l", "text", "a"),
		record(1, 2, "l", "text", "b"),
		record(2, 3, "l", "text", "a"),
		record(3, 4, "l", "text", "c"),
	}
	if got := countReversals(ws); got != 1 {
		t.Errorf("expected 1 reversal, got %d", got)
	}
}

func TestDetectWriteHotspots(t *testing.T) {
	store := newStore(t)
	var writes []*database.WriteRecord
	for _, target := range []string{"a", "b", "c", "d", "e"} {
		writes = append(writes, record(len(writes), 1, target, "x", "1"))
	}
	for i := 0; i < 20; i++ {
		writes = append(writes, record(len(writes), int64(i+1), "hot", "x", fmt.Sprint(i)))
	}
	if err := store.BatchInsertWrites(writes); err != nil {
		t.Fatalf("BatchInsertWrites failed: %v", err)
	}

	hotspots, err := NewAnalyzer(store).DetectWriteHotspots("s1")
	if err != nil {
		t.Fatalf("DetectWriteHotspots failed: %v", err)
	}
	if len(hotspots) != 1 || hotspots[0].Target != "hot" || hotspots[0].Severity != "medium" {
		t.Errorf("unexpected hotspots %+v", hotspots)
	}
}

func TestAnalyzeWriteTrendGrowing(t *testing.T) {
	store := newStore(t)
	var writes []*database.WriteRecord
	for tick := int64(1); tick <= 10; tick++ {
		for i := int64(0); i < tick; i++ {
			writes = append(writes, record(len(writes), tick, fmt.Sprintf("w%d", i), "x", "1"))
		}
	}
	if err := store.BatchInsertWrites(writes); err != nil {
		t.Fatalf("BatchInsertWrites failed: %v", err)
	}

	trend, err := NewAnalyzer(store).AnalyzeWriteTrend("s1")
	if err != nil {
		t.Fatalf("AnalyzeWriteTrend failed: %v", err)
	}
	if math.Abs(trend.Slope-1.0) > 0.001 || !trend.IsGrowing || trend.IsSettled {
		t.Errorf("unexpected trend %+v", trend)
	}
	if trend.TotalWrites != 55 || trend.Ticks != 10 {
		t.Errorf("unexpected totals %+v", trend)
	}
}

func TestFullAnalysisReport(t *testing.T) {
	store := newStore(t)
	if err := store.BatchInsertDiagnostics([]*database.DiagnosticRecord{
		{DiagID: "d1", SessionID: "s1", Tick: 2, Kind: "spinbox-value", Outcome: "rejected", Target: "spin", Message: "out of range"},
		{DiagID: "d2", SessionID: "s1", Tick: 3, Kind: "spinbox-value", Outcome: "rejected", Target: "spin", Message: "out of range"},
	}); err != nil {
		t.Fatalf("BatchInsertDiagnostics failed: %v", err)
	}

	a := NewAnalyzer(store)
	report, err := a.FullAnalysis("s1")
	if err != nil {
		t.Fatalf("FullAnalysis failed: %v", err)
	}
	if len(report.Diagnostics) != 1 || report.Diagnostics[0].Count != 2 || report.Diagnostics[0].FirstTick != 2 {
		t.Errorf("unexpected diagnostic summary %+v", report.Diagnostics)
	}
	md := a.FormatReport(report)
	for _, want := range []string{"# tweenflow Session Report", "## Diagnostics", "spinbox-value"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
