package update

import "github.com/danielpatrickdp/txpredict/internal/predictor"

// #region weights
// Weights maps each predictor to its share of the ensemble vote.
type Weights map[predictor.ID]float64

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for id, v := range w {
		out[id] = v
	}
	return out
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// #endregion weights

// #region decision
// Decision records what the update function decided.
type Decision struct {
	Action string // "commit" | "no_op"
	Reason string
}

// #endregion decision

// #region metrics
// Metrics captures telemetry from an update cycle.
type Metrics struct {
	Hits         []predictor.ID // predictors that called the outcome
	Misses       []predictor.ID // wrong or silent
	DeltaNorm    float64        // L2 distance between old and new weights
	UpdateTimeMs int64
}

// #endregion metrics

// #region update-config
// UpdateConfig holds the learning parameters for weight updates.
type UpdateConfig struct {
	Alpha   float64 // EMA blend toward the target (default 0.1)
	Reward  float64 // target multiplier when correct (default 1.05)
	Penalty float64 // target multiplier when wrong or silent (default 0.95)
	Floor   float64 // minimum weight after renormalization (default 0.001)
}

// DefaultUpdateConfig returns the stock learning parameters.
func DefaultUpdateConfig() UpdateConfig {
	return UpdateConfig{
		Alpha:   0.1,
		Reward:  1.05,
		Penalty: 0.95,
		Floor:   0.001,
	}
}

// #endregion update-config

// #region update-result
// UpdateResult bundles everything returned by Update().
type UpdateResult struct {
	Weights  Weights
	Decision Decision
	Metrics  Metrics
}

// #endregion update-result
