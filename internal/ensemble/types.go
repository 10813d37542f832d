package ensemble

import (
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region config
// Config holds construction-time ensemble parameters.
type Config struct {
	EMAAlpha      float64 // blend toward the per-outcome target
	MinWeight     float64 // floor for every weight
	HistoryWindow int     // records considered by FitInitial
	WarmupRecords int     // prefix length before FitInitial starts scoring
	MinFitRecords int     // FitInitial is a no-op below this window size
	MinConfidence float64
	MaxConfidence float64
	Parallel      bool // evaluate predictors on separate goroutines
}

// DefaultConfig returns the stock ensemble parameters.
func DefaultConfig() Config {
	return Config{
		EMAAlpha:      0.1,
		MinWeight:     0.001,
		HistoryWindow: 300,
		WarmupRecords: 10,
		MinFitRecords: 20,
		MinConfidence: 0.55,
		MaxConfidence: 0.98,
	}
}

func (c Config) updateConfig() update.UpdateConfig {
	u := update.DefaultUpdateConfig()
	u.Alpha = c.EMAAlpha
	u.Floor = c.MinWeight
	return u
}

// #endregion config

// #region prediction
// Prediction is the ensemble's call for the next record.
type Prediction struct {
	TargetSession int64                        `json:"target_session"`
	Category      outcome.Category             `json:"category"`
	Confidence    float64                      `json:"confidence"`
	Votes         map[outcome.Category]float64 `json:"votes,omitempty"`
	Fallback      bool                         `json:"fallback"` // no predictor had an opinion
}

// #endregion prediction
