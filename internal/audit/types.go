package audit

import (
	"time"

	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region run
// Run is one process lifetime of the engine.
type Run struct {
	RunID     string
	StartedAt time.Time
	Meta      string // free-form JSON supplied by the caller
}

// #endregion run

// #region prediction-row
// PredictionRow is a recorded prediction joined with its resolution.
type PredictionRow struct {
	EntryID       string
	TargetSession int64
	Predicted     string
	Confidence    float64
	CreatedAt     time.Time
	Actual        string // "" while pending
	Hit           bool
}

// #endregion prediction-row

// #region weight-snapshot
// WeightSnapshot is the weight table after one update.
type WeightSnapshot struct {
	Session   int64
	Weights   update.Weights
	Decision  string // "commit" | "no_op"
	Reason    string
	CreatedAt time.Time
}

// #endregion weight-snapshot

// #region summary
// Summary aggregates one run for inspection.
type Summary struct {
	Run           Run
	Predictions   int
	Resolved      int
	Wins          int
	LatestWeights *WeightSnapshot
}

// WinRate returns the resolved hit rate in percent.
func (s Summary) WinRate() float64 {
	if s.Resolved == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Resolved) * 100
}

// #endregion summary
