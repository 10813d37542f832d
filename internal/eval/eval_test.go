package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/txpredict/internal/ensemble"
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/predictor"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

func okPrediction() ensemble.Prediction {
	return ensemble.Prediction{Category: outcome.Tai, Confidence: 0.7}
}

func TestEvalPassesOnUniformWeights(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	w := update.Uniform(predictor.IDs(predictor.All()))

	result := h.Run(w, okPrediction())

	if !result.Passed {
		t.Fatalf("expected pass on uniform weights, got fail: %s", result.Reason)
	}
	if len(result.Metrics) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(result.Metrics))
	}
}

func TestEvalFailsOnBadSum(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	w := update.Weights{predictor.Bridge: 0.6, predictor.Markov: 0.6}

	result := h.Run(w, okPrediction())

	if result.Passed {
		t.Fatal("expected fail on sum 1.2")
	}
	if !strings.Contains(result.Reason, "weight sum") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestEvalFailsOnFloorBreach(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	w := update.Weights{predictor.Bridge: 0.9995, predictor.Markov: 0.0005}

	result := h.Run(w, okPrediction())

	if result.Passed {
		t.Fatal("expected fail on floor breach")
	}
}

func TestEvalFailsOnConfidence(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	w := update.Uniform([]predictor.ID{predictor.Bridge, predictor.Markov})

	for _, p := range []ensemble.Prediction{
		{Category: outcome.Tai, Confidence: 0.5},
		{Category: outcome.Xiu, Confidence: 0.99},
		{Category: "", Confidence: 0.7},
	} {
		if h.Run(w, p).Passed {
			t.Fatalf("expected fail for %+v", p)
		}
	}
}

func TestEvalMultipleFailures(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	result := h.Run(update.Weights{}, ensemble.Prediction{})

	if result.Passed {
		t.Fatal("expected fail")
	}
	if !strings.Contains(result.Reason, "3 checks") {
		t.Fatalf("expected 3 failing checks, got %q", result.Reason)
	}
}

func TestEvalDominanceIsInformational(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	w := update.Weights{predictor.Bridge: 0.95, predictor.Markov: 0.05}

	result := h.Run(w, okPrediction())

	if !result.Passed {
		t.Fatalf("dominance must not fail eval: %s", result.Reason)
	}
	last := result.Metrics[len(result.Metrics)-1]
	if last.Name != "max_share" || last.Pass {
		t.Fatalf("expected failing max_share metric, got %+v", last)
	}
}
