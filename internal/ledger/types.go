package ledger

import (
	"time"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
)

// #region entry
// Entry is one prediction awaiting, or holding, its actual outcome.
type Entry struct {
	ID            string            `json:"id"`
	TargetSession int64             `json:"target_session"`
	Predicted     outcome.Category  `json:"predicted"`
	Actual        *outcome.Category `json:"actual,omitempty"`
	Confidence    float64           `json:"confidence"`
	CreatedAt     time.Time         `json:"created_at"`
	ResolvedAt    time.Time         `json:"resolved_at,omitzero"`
}

// Resolved reports whether the actual outcome is known.
func (e Entry) Resolved() bool { return e.Actual != nil }

// Hit reports whether the entry was resolved and called correctly.
func (e Entry) Hit() bool { return e.Actual != nil && *e.Actual == e.Predicted }

// #endregion entry

// #region stats
// Stats is the ledger's running track record.
type Stats struct {
	TotalPredictions int    `json:"total_predictions"`
	TotalWins        int    `json:"total_wins"`
	TotalLosses      int    `json:"total_losses"`
	WinRate          string `json:"win_rate"`        // "NN.NN%"
	ActivePatterns   int    `json:"active_patterns"` // entries ever recorded and kept
}

// #endregion stats

// #region sink
// Sink receives a copy of every recorded and resolved entry.
type Sink interface {
	RecordPrediction(Entry) error
	RecordResolution(Entry) error
}

// #endregion sink
