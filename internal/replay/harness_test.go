package replay

import (
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
)

// 1. Seeded replay: first pushed record resolves the load-time prediction.
func TestReplay_SeededFirstStepIsScored(t *testing.T) {
	records := outcome.FromSymbols(100, strings.Repeat("ttx", 10))
	config := DefaultReplayConfig()

	results, final := Replay(records, config)

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if !results[0].Scored || results[0].Session != 120 {
		t.Fatalf("expected session 120 scored, got %+v", results[0])
	}
	if final.Prediction.TargetSession != 130 {
		t.Fatalf("expected final target 130, got %d", final.Prediction.TargetSession)
	}
	if math.Abs(final.Weights.Sum()-1) > 1e-9 {
		t.Fatalf("final weights sum to %f", final.Weights.Sum())
	}
}

// 2. Unseeded replay: the very first push has nothing to resolve and no
// weight update; updates start once three records precede the outcome.
func TestReplay_Unseeded(t *testing.T) {
	config := DefaultReplayConfig()
	config.Seed = 0
	records := outcome.FromSymbols(1, "txtxtx")

	results, _ := Replay(records, config)
	sum := Summarize(results, FinalState{})

	if results[0].Scored {
		t.Fatal("first push has no pending prediction")
	}
	if sum.Scored != 5 {
		t.Fatalf("expected 5 scored steps, got %d", sum.Scored)
	}
	if sum.Updates != 3 {
		t.Fatalf("expected 3 updates, got %d", sum.Updates)
	}
}

// 3. Seed larger than the stream: everything is loaded, nothing is pushed.
func TestReplay_SeedCoversAll(t *testing.T) {
	config := DefaultReplayConfig()
	config.Seed = 100
	records := outcome.FromSymbols(1, strings.Repeat("t", 25))

	results, final := Replay(records, config)

	if len(results) != 0 {
		t.Fatalf("expected no pushes, got %d", len(results))
	}
	if final.Stats.ActivePatterns != 1 {
		t.Fatalf("expected one pending prediction, got %+v", final.Stats)
	}
}

// 4. Summarize counts wins and losses.
func TestSummarize(t *testing.T) {
	results := []ReplayResult{
		{Scored: true, Hit: true, Updated: true},
		{Scored: true, Hit: false, Updated: true},
		{Scored: true, Hit: true},
		{Scored: false},
	}

	s := Summarize(results, FinalState{})

	if s.TotalSteps != 4 || s.Scored != 3 || s.Wins != 2 || s.Losses != 1 || s.Updates != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if math.Abs(s.WinRate()-200.0/3.0) > 1e-9 {
		t.Fatalf("expected 66.67%%, got %f", s.WinRate())
	}
	if (ReplaySummary{}).WinRate() != 0 {
		t.Fatal("empty summary has zero win rate")
	}
}

// 5. Replays are deterministic.
func TestReplay_Deterministic(t *testing.T) {
	records := outcome.FromSymbols(1, "ttxtxxtttxtxxtxttxxtxtttxxtxtxttxtxttx")
	config := DefaultReplayConfig()

	r1, f1 := Replay(records, config)
	r2, f2 := Replay(records, config)

	for i := range r1 {
		if r1[i].Predicted != r2[i].Predicted || r1[i].Hit != r2[i].Hit {
			t.Fatalf("step %d differs", i)
		}
	}
	for id, w := range f1.Weights {
		if f2.Weights[id] != w {
			t.Fatalf("weight %s differs", id)
		}
	}
}
