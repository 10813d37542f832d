package ensemble

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
	"github.com/danielpatrickdp/txpredict/internal/predictor"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region helpers
func randomHistory(seed int64, n int) []outcome.Record {
	rng := rand.New(rand.NewSource(seed))
	out := make([]outcome.Record, n)
	for i := range out {
		dice := [3]int{rng.Intn(6) + 1, rng.Intn(6) + 1, rng.Intn(6) + 1}
		out[i] = outcome.New(int64(1000+i), dice, outcome.SideUnknown)
	}
	return out
}

func checkWeights(t *testing.T, w update.Weights, floor float64) {
	t.Helper()
	if math.Abs(w.Sum()-1) > 1e-9 {
		t.Fatalf("weights sum to %.12f", w.Sum())
	}
	for id, v := range w {
		if v < floor-1e-12 {
			t.Fatalf("weight %s = %g below floor", id, v)
		}
	}
}

func fixed(id predictor.ID, c outcome.Category) predictor.Predictor {
	return predictor.New(id, func([]outcome.Record, *pattern.Engine) (outcome.Category, bool) {
		return c, true
	})
}

func silent(id predictor.ID) predictor.Predictor {
	return predictor.New(id, func([]outcome.Record, *pattern.Engine) (outcome.Category, bool) {
		return "", false
	})
}

// #endregion helpers

// #region predict
func TestPredictEmptyHistory(t *testing.T) {
	e := NewDefault(DefaultConfig())
	p := e.Predict(nil)

	if p.Category != outcome.Tai || p.Confidence != 0.55 || !p.Fallback {
		t.Fatalf("expected fallback T at 0.55, got %+v", p)
	}
	if p.TargetSession != 0 {
		t.Fatalf("expected no target session, got %d", p.TargetSession)
	}
}

func TestPredictFallbackUsesFrequencyRule(t *testing.T) {
	e := New([]predictor.Predictor{silent("a"), silent("b")}, nil, DefaultConfig())
	p := e.Predict(outcome.FromSymbols(1, strings.Repeat("t", 20)))

	if p.Category != outcome.Xiu || p.Confidence != 0.55 || !p.Fallback {
		t.Fatalf("expected fallback X at 0.55, got %+v", p)
	}
	if p.TargetSession != 21 {
		t.Fatalf("expected target 21, got %d", p.TargetSession)
	}
}

func TestPredictConfidenceBounds(t *testing.T) {
	e := NewDefault(DefaultConfig())
	for seed := int64(0); seed < 5; seed++ {
		h := randomHistory(seed, 120)
		for n := 0; n <= len(h); n += 7 {
			p := e.Predict(h[:n])
			if !p.Category.Valid() {
				t.Fatalf("invalid category %q", p.Category)
			}
			if p.Confidence < 0.55 || p.Confidence > 0.98 {
				t.Fatalf("confidence %f out of bounds", p.Confidence)
			}
		}
	}
}

func TestPredictWeightedVote(t *testing.T) {
	e := New([]predictor.Predictor{fixed("a", outcome.Xiu), fixed("b", outcome.Tai), fixed("c", outcome.Tai)}, nil, DefaultConfig())
	p := e.Predict(outcome.FromSymbols(1, "tx"))

	if p.Category != outcome.Tai {
		t.Fatalf("expected T, got %s", p.Category)
	}
	if math.Abs(p.Confidence-2.0/3.0) > 1e-9 {
		t.Fatalf("expected 2/3 confidence, got %f", p.Confidence)
	}
}

func TestPredictTieGoesToFirstVote(t *testing.T) {
	e := New([]predictor.Predictor{fixed("a", outcome.Xiu), fixed("b", outcome.Tai)}, nil, DefaultConfig())
	p := e.Predict(outcome.FromSymbols(1, "t"))

	if p.Category != outcome.Xiu || p.Confidence != 0.55 {
		t.Fatalf("expected X at 0.55, got %+v", p)
	}
}

func TestPredictAlternationBreaks(t *testing.T) {
	e := NewDefault(DefaultConfig())
	p := e.Predict(outcome.FromSymbols(1, strings.Repeat("tx", 20)))

	if p.Category != outcome.Tai {
		t.Fatalf("expected a break of the alternation, got %s", p.Category)
	}
	if p.Confidence != 0.98 {
		t.Fatalf("expected unanimous vote clamped to 0.98, got %f", p.Confidence)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	seq := NewDefault(DefaultConfig())
	cfg := DefaultConfig()
	cfg.Parallel = true
	par := NewDefault(cfg)

	h := randomHistory(42, 80)
	a, b := seq.Evaluate(h), par.Evaluate(h)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("opinion %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// #endregion predict

// #region weights
func TestFitInitialShortWindowNoOp(t *testing.T) {
	e := NewDefault(DefaultConfig())
	e.FitInitial(randomHistory(1, 19))

	for id, w := range e.Weights() {
		if math.Abs(w-1.0/9.0) > 1e-12 {
			t.Fatalf("expected uniform weight for %s, got %f", id, w)
		}
	}
}

func TestFitInitialScoresPredictors(t *testing.T) {
	e := New([]predictor.Predictor{fixed("always-t", outcome.Tai), fixed("always-x", outcome.Xiu)}, nil, DefaultConfig())
	e.FitInitial(outcome.FromSymbols(1, strings.Repeat("t", 30)))

	w := e.Weights()
	// 20 correct calls: (20+1)/(21+1).
	if math.Abs(w["always-t"]-21.0/22.0) > 1e-9 {
		t.Fatalf("expected 21/22, got %f", w["always-t"])
	}
	checkWeights(t, w, 0.001)
}

func TestWeightInvariantsUnderUpdates(t *testing.T) {
	e := NewDefault(DefaultConfig())
	h := randomHistory(7, 140)
	e.FitInitial(h[:60])
	checkWeights(t, e.Weights(), 0.001)

	for i := 60; i < len(h); i++ {
		e.UpdateWithOutcome(h[:i], h[i].Category)
		checkWeights(t, e.Weights(), 0.001)
	}
}

func TestWeightsIsACopy(t *testing.T) {
	e := NewDefault(DefaultConfig())
	w := e.Weights()
	w[predictor.Bridge] = 42

	if e.Weights()[predictor.Bridge] == 42 {
		t.Fatal("Weights must return a copy")
	}
}

func TestFloorHoldsForPersistentLoser(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinWeight = 0.05
	e := New([]predictor.Predictor{fixed("right", outcome.Tai), fixed("wrong", outcome.Xiu)}, nil, cfg)

	h := outcome.FromSymbols(1, "ttt")
	for i := 0; i < 2000; i++ {
		e.UpdateWithOutcome(h, outcome.Tai)
	}
	w := e.Weights()
	if math.Abs(w["wrong"]-0.05) > 1e-9 {
		t.Fatalf("expected the loser pinned at the floor, got %f", w["wrong"])
	}
	checkWeights(t, w, 0.05)
}

// #endregion weights
