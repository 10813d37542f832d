package predictor

import (
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
)

// #region id
// ID identifies a predictor in the ensemble weight table.
type ID string

const (
	FreqRebalance ID = "freq-rebalance"
	Markov        ID = "markov-3"
	NeoPattern    ID = "neo-pattern"
	DeepAnalysis  ID = "deep-analysis"
	Bridge        ID = "bridge-predictor"
	BasicPattern  ID = "basic-pattern"
	Advanced      ID = "advanced-pattern"
	Adaptive      ID = "adaptive-pattern"
	MetaEnsemble  ID = "meta-ensemble"
)

// #endregion id

// #region interface
// Predictor maps a read-only history prefix to a category, or abstains.
// history holds only records strictly before the target session; the
// engine argument is ignored by predictors that do no motif matching.
// Implementations must not mutate history.
type Predictor interface {
	ID() ID
	Predict(history []outcome.Record, eng *pattern.Engine) (outcome.Category, bool)
}

// Func adapts a plain function to the Predictor interface.
type Func func(history []outcome.Record, eng *pattern.Engine) (outcome.Category, bool)

type funcPredictor struct {
	id ID
	fn Func
}

// New wraps fn as a Predictor with the given id.
func New(id ID, fn Func) Predictor {
	return funcPredictor{id: id, fn: fn}
}

func (p funcPredictor) ID() ID { return p.id }

func (p funcPredictor) Predict(history []outcome.Record, eng *pattern.Engine) (outcome.Category, bool) {
	return p.fn(history, eng)
}

// #endregion interface

// #region opinion
// Opinion is a single predictor's call on a history.
type Opinion struct {
	ID       ID
	Category outcome.Category
	OK       bool // false when the predictor abstained
}

// #endregion opinion
