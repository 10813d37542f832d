package eval

// #region eval-config
// EvalConfig holds thresholds for post-update validation.
type EvalConfig struct {
	SumTolerance  float64 // max |sum(weights) - 1|
	MinWeight     float64 // every weight must be at least this
	MinConfidence float64
	MaxConfidence float64
	MaxShare      float64 // warn when one predictor holds more than this
}

// DefaultEvalConfig matches the ensemble defaults.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		SumTolerance:  1e-6,
		MinWeight:     0.001,
		MinConfidence: 0.55,
		MaxConfidence: 0.98,
		MaxShare:      0.9,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-update validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
