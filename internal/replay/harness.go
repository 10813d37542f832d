package replay

import (
	"github.com/danielpatrickdp/txpredict/internal/ensemble"
	"github.com/danielpatrickdp/txpredict/internal/ledger"
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/session"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region types
// ReplayConfig bundles the session config and the seed size for a replay run.
type ReplayConfig struct {
	Session session.Config
	Seed    int // leading records passed to LoadInitial; the rest are pushed
}

// DefaultReplayConfig seeds with 20 records, enough for the initial fit.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		Session: session.DefaultConfig(),
		Seed:    20,
	}
}

// ReplayResult captures one pushed record.
type ReplayResult struct {
	Session    int64
	Actual     outcome.Category
	Scored     bool // a pending prediction existed for this session
	Predicted  outcome.Category
	Confidence float64
	Hit        bool
	Updated    bool
	Next       ensemble.Prediction
}

// FinalState is the session state after the last record.
type FinalState struct {
	Prediction ensemble.Prediction
	Weights    update.Weights
	Stats      ledger.Stats
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalSteps int
	Scored     int
	Wins       int
	Losses     int
	Updates    int
	Final      FinalState
}

// WinRate returns the scored hit rate in percent.
func (s ReplaySummary) WinRate() float64 {
	if s.Scored == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Scored) * 100
}

// #endregion types

// #region replay
// Replay runs records through a fresh in-memory session: the first
// config.Seed records go to LoadInitial, the rest are pushed one at a time.
// Records must be in ascending session order. Opts are passed to the
// session, e.g. an audit sink.
func Replay(records []outcome.Record, config ReplayConfig, opts ...session.Option) ([]ReplayResult, FinalState) {
	s := session.New(config.Session, opts...)
	defer s.Close()

	seed := min(max(config.Seed, 0), len(records))
	if seed > 0 {
		// A fresh session cannot be closed yet.
		_ = s.LoadInitial(records[:seed])
	}

	results := make([]ReplayResult, 0, len(records)-seed)
	for _, r := range records[seed:] {
		res, err := s.PushRecord(r)
		if err != nil {
			break
		}
		step := ReplayResult{
			Session: r.Session,
			Actual:  r.Category,
			Updated: res.Updated,
			Next:    res.Prediction,
		}
		if res.Resolved != nil {
			step.Scored = true
			step.Predicted = res.Resolved.Predicted
			step.Confidence = res.Resolved.Confidence
			step.Hit = res.Resolved.Hit()
		}
		results = append(results, step)
	}

	p, _ := s.Prediction()
	return results, FinalState{
		Prediction: p,
		Weights:    s.Weights(),
		Stats:      s.Stats(),
	}
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, final FinalState) ReplaySummary {
	s := ReplaySummary{
		TotalSteps: len(results),
		Final:      final,
	}
	for _, r := range results {
		if r.Updated {
			s.Updates++
		}
		if !r.Scored {
			continue
		}
		s.Scored++
		if r.Hit {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	return s
}

// #endregion replay
