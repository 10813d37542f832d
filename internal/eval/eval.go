package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/txpredict/internal/ensemble"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region eval-harness
// EvalHarness runs lightweight validation on the weight table and the
// prediction that came out of it.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks the weight invariants and the prediction bounds.
func (h *EvalHarness) Run(weights update.Weights, p ensemble.Prediction) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Weights sum to one
	sum := weights.Sum()
	sumPass := len(weights) > 0 && math.Abs(sum-1) <= h.config.SumTolerance
	metrics = append(metrics, EvalMetric{Name: "weight_sum", Value: sum, Pass: sumPass})
	if !sumPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("weight sum %.8f is not 1", sum))
	}

	// 2. Floor on every weight
	lowest := minWeight(weights)
	floorPass := lowest >= h.config.MinWeight-1e-12
	metrics = append(metrics, EvalMetric{Name: "weight_floor", Value: lowest, Pass: floorPass})
	if !floorPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("min weight %.6f below floor %.6f", lowest, h.config.MinWeight))
	}

	// 3. Confidence bounds and category
	confPass := p.Category.Valid() && p.Confidence >= h.config.MinConfidence && p.Confidence <= h.config.MaxConfidence
	metrics = append(metrics, EvalMetric{Name: "confidence_bounds", Value: p.Confidence, Pass: confPass})
	if !confPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("prediction %q at %.4f out of [%.2f, %.2f]", p.Category, p.Confidence, h.config.MinConfidence, h.config.MaxConfidence))
	}

	// 4. Dominance: informational only
	top := maxWeight(weights)
	metrics = append(metrics, EvalMetric{Name: "max_share", Value: top, Pass: top <= h.config.MaxShare})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func minWeight(w update.Weights) float64 {
	if len(w) == 0 {
		return 0
	}
	lo := math.Inf(1)
	for _, v := range w {
		lo = math.Min(lo, v)
	}
	return lo
}

func maxWeight(w update.Weights) float64 {
	var hi float64
	for _, v := range w {
		hi = math.Max(hi, v)
	}
	return hi
}

// #endregion helpers
