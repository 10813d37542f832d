package session

import (
	"log"
	"sync"

	"github.com/danielpatrickdp/txpredict/internal/ensemble"
	"github.com/danielpatrickdp/txpredict/internal/eval"
	"github.com/danielpatrickdp/txpredict/internal/ledger"
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
	"github.com/danielpatrickdp/txpredict/internal/predictor"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region session-struct
// Session owns the history, the ensemble and the ledger. Record arrival is
// the only mutation path; readers may run concurrently with each other.
type Session struct {
	mu       sync.RWMutex
	config   Config
	history  []outcome.Record
	ens      *ensemble.Ensemble
	ledger   *ledger.Ledger
	harness  *eval.EvalHarness
	recorder WeightRecorder
	current  ensemble.Prediction
	closed   bool
}

// #endregion session-struct

// #region constructor
// New creates an empty session.
func New(config Config, opts ...Option) *Session {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.predictors == nil {
		o.predictors = predictor.All()
	}
	if o.engine == nil {
		o.engine = pattern.NewDefaultEngine()
	}

	s := &Session{
		config:   config,
		ens:      ensemble.New(o.predictors, o.engine, config.Ensemble),
		ledger:   ledger.New(o.sink),
		harness:  eval.NewEvalHarness(config.Eval),
		recorder: o.recorder,
	}
	s.current = s.ens.Predict(nil)
	return s
}

// #endregion constructor

// #region load-initial
// LoadInitial seeds the history with records (ascending by session),
// fits the ensemble on them, replays every outcome after the warmup through
// the weight update, and records the first prediction against the session
// after the newest record. Any previous history is replaced.
func (s *Session) LoadInitial(records []outcome.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.history = append([]outcome.Record(nil), records...)
	s.ens.FitInitial(s.history)

	var result update.UpdateResult
	replayed := 0
	for i := s.config.Ensemble.WarmupRecords; i < len(s.history); i++ {
		result = s.ens.UpdateWithOutcome(s.history[:i], s.history[i].Category)
		replayed++
	}

	s.current = s.ens.Predict(s.history)
	if len(s.history) == 0 {
		return nil
	}

	last := s.history[len(s.history)-1]
	if replayed > 0 {
		s.recordWeights(last.Session, result.Decision)
	}
	s.ledger.Record(s.current.TargetSession, s.current.Category, s.current.Confidence)
	s.check()

	log.Printf("[SESSION] loaded %d records (replayed %d), next=%d predict=%s conf=%.2f",
		len(s.history), replayed, s.current.TargetSession, s.current.Category, s.current.Confidence)
	return nil
}

// #endregion load-initial

// #region push-record
// PushRecord ingests one newly observed record: it resolves the pending
// prediction for that session, appends the record, learns from the outcome
// against the history that preceded it, and records a new prediction for
// the following session.
func (s *Session) PushRecord(r outcome.Record) (PushResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return PushResult{}, ErrClosed
	}

	var res PushResult
	if e, ok := s.ledger.Resolve(r.Session, r.Category); ok {
		res.Resolved = &e
	}

	prefix := s.history
	s.history = append(s.history, r)

	if len(prefix) >= s.config.MinUpdatePrefix {
		result := s.ens.UpdateWithOutcome(prefix, r.Category)
		s.recordWeights(r.Session, result.Decision)
		res.Updated = true
	}

	s.current = s.ens.Predict(s.history)
	s.ledger.Record(s.current.TargetSession, s.current.Category, s.current.Confidence)
	s.check()

	res.Prediction = s.current
	return res, nil
}

// #endregion push-record

// #region readers
// Prediction returns the current prediction. ok is false while the history
// is empty; the returned value is then the Tai fallback.
func (s *Session) Prediction() (ensemble.Prediction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, len(s.history) > 0
}

// Snapshot returns the current prediction together with the newest record
// it follows, read under one lock so the pair always agrees. ok is false
// while the history is empty.
func (s *Session) Snapshot() (ensemble.Prediction, outcome.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return s.current, outcome.Record{}, false
	}
	return s.current, s.history[len(s.history)-1], true
}

// Stats returns the ledger's running tallies.
func (s *Session) Stats() ledger.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Stats()
}

// History returns a copy of the history, oldest first.
func (s *Session) History() []outcome.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]outcome.Record(nil), s.history...)
}

// Recent returns up to n of the newest records, newest first.
func (s *Session) Recent(n int) []outcome.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tail := outcome.Last(s.history, n)
	out := make([]outcome.Record, len(tail))
	for i, r := range tail {
		out[len(tail)-1-i] = r
	}
	return out
}

// Last returns the newest record.
func (s *Session) Last() (outcome.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return outcome.Record{}, false
	}
	return s.history[len(s.history)-1], true
}

// Len returns the number of records in the history.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Weights returns a copy of the ensemble weights.
func (s *Session) Weights() update.Weights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ens.Weights()
}

// Opinions returns every predictor's call on the current history.
func (s *Session) Opinions() []predictor.Opinion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ens.Evaluate(s.history)
}

// Pending returns predictions still waiting for their outcome.
func (s *Session) Pending() []ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Pending()
}

// Close disposes of the session. Further mutations return ErrClosed;
// readers keep answering from the final state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// #endregion readers

// #region helpers
func (s *Session) recordWeights(session int64, d update.Decision) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordWeights(session, s.ens.Weights(), d); err != nil {
		log.Printf("[SESSION] record weights for %d: %v", session, err)
	}
}

// check logs eval failures. They indicate a bug, never bad input.
func (s *Session) check() {
	result := s.harness.Run(s.ens.Weights(), s.current)
	if !result.Passed {
		log.Printf("[SESSION] %s", result.Reason)
	}
}

// #endregion helpers
