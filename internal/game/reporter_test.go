package game

import (
	"strings"
	"testing"
)

func TestFrameReporter_LatestAndHistory(t *testing.T) {
	ts := NewTestSim(WithSeed(2), WithRenderDistance(1))
	ts.RunTicks(50)

	r := ts.Reporter
	if got := len(r.History()); got != 50 {
		t.Fatalf("history holds %d reports, want 50", got)
	}
	latest := r.Latest()
	if latest == nil || latest.Tick != 50 {
		t.Fatalf("latest report = %+v, want tick 50", latest)
	}
}

func TestFrameReporter_WindowAggregation(t *testing.T) {
	ts := NewTestSim(WithSeed(2), WithRenderDistance(1))
	ts.RunTicks(100)

	wr := ts.Reporter.WindowSummary()
	if wr == nil {
		t.Fatal("no window summary after 100 ticks")
	}
	if wr.ToTick != 100 {
		t.Fatalf("window ends at tick %d, want 100", wr.ToTick)
	}
	// The first nine ticks build the 3x3 ring; the window must count them.
	if wr.ChunksBuilt != 9 {
		t.Fatalf("window counted %d builds, want 9", wr.ChunksBuilt)
	}
	if wr.MinActive < 1 || wr.MaxActive != 9 {
		t.Fatalf("resident range %d..%d, want up to 9", wr.MinActive, wr.MaxActive)
	}
}

func TestWindowReport_Format(t *testing.T) {
	wr := &WindowReport{FromTick: 10, ToTick: 20, ChunksBuilt: 3, MinActive: 5, MaxActive: 9}
	s := wr.Format()
	for _, want := range []string{"[10..20]", "built=3", "5/9"} {
		if !strings.Contains(s, want) {
			t.Errorf("format missing %q:\n%s", want, s)
		}
	}
}

func TestSimLog_FilterAndCount(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "chunk", "build", "built", "", 1)
	sl.Add(2, "player", "state", "underwater", "yes", 0)
	sl.Add(3, "player", "state", "underwater", "no", 0)
	sl.AddVerbose(4, "player", "state", "grounded", "yes", 0) // dropped: not verbose

	if n := sl.CountCategory("state", "underwater"); n != 2 {
		t.Errorf("counted %d underwater entries, want 2", n)
	}
	if n := len(sl.Entries()); n != 3 {
		t.Errorf("log holds %d entries, want 3 (verbose entry dropped)", n)
	}
	if e, ok := sl.LastOf("state", "underwater"); !ok || e.Value != "no" {
		t.Errorf("LastOf returned %+v", e)
	}
	if !sl.HasEntry("state", "underwater", "yes") {
		t.Error("HasEntry missed the underwater=yes entry")
	}
	if sl.HasEntry("state", "grounded", "") {
		t.Error("verbose entry leaked into a non-verbose log")
	}
}

func TestSimLogEntry_String(t *testing.T) {
	e := SimLogEntry{Tick: 42, Subject: "player", Category: "state", Key: "underwater", Value: "yes"}
	s := e.String()
	if !strings.HasPrefix(s, "[T=0042]") {
		t.Errorf("entry prefix wrong: %q", s)
	}
	if !strings.Contains(s, "underwater") || !strings.Contains(s, "yes") {
		t.Errorf("entry missing fields: %q", s)
	}
}
