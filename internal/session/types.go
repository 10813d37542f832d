package session

import (
	"errors"

	"github.com/danielpatrickdp/txpredict/internal/ensemble"
	"github.com/danielpatrickdp/txpredict/internal/eval"
	"github.com/danielpatrickdp/txpredict/internal/ledger"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
	"github.com/danielpatrickdp/txpredict/internal/predictor"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("session closed")

// #region config
// Config holds session parameters.
type Config struct {
	Ensemble        ensemble.Config
	Eval            eval.EvalConfig
	MinUpdatePrefix int // weights are only updated once this many records precede the outcome
}

// DefaultConfig returns the stock session parameters.
func DefaultConfig() Config {
	return Config{
		Ensemble:        ensemble.DefaultConfig(),
		Eval:            eval.DefaultEvalConfig(),
		MinUpdatePrefix: 3,
	}
}

// #endregion config

// #region recorder
// WeightRecorder receives the weight table after every update.
type WeightRecorder interface {
	RecordWeights(session int64, weights update.Weights, decision update.Decision) error
}

// #endregion recorder

// #region options
// Option customizes a Session.
type Option func(*options)

type options struct {
	predictors []predictor.Predictor
	engine     *pattern.Engine
	sink       ledger.Sink
	recorder   WeightRecorder
}

// WithPredictors replaces the built-in predictor set.
func WithPredictors(ps []predictor.Predictor) Option {
	return func(o *options) { o.predictors = ps }
}

// WithEngine replaces the default pattern engine.
func WithEngine(e *pattern.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithSink mirrors ledger entries to s.
func WithSink(s ledger.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithWeightRecorder reports every weight update to r.
func WithWeightRecorder(r WeightRecorder) Option {
	return func(o *options) { o.recorder = r }
}

// #endregion options

// #region push-result
// PushResult describes what one PushRecord did.
type PushResult struct {
	Resolved   *ledger.Entry // entry resolved by the record, if any
	Updated    bool          // weights were updated
	Prediction ensemble.Prediction
}

// #endregion push-result
