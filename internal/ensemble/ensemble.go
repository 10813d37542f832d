package ensemble

import (
	"sync"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
	"github.com/danielpatrickdp/txpredict/internal/predictor"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region ensemble
// Ensemble keeps a learned weight per predictor and turns their opinions
// into a single weighted call. It is not safe for concurrent mutation; the
// session serializes access.
type Ensemble struct {
	predictors []predictor.Predictor
	engine     *pattern.Engine
	weights    update.Weights
	config     Config
}

// New creates an ensemble with uniform weights.
func New(predictors []predictor.Predictor, engine *pattern.Engine, config Config) *Ensemble {
	return &Ensemble{
		predictors: predictors,
		engine:     engine,
		weights:    update.Uniform(predictor.IDs(predictors)),
		config:     config,
	}
}

// NewDefault creates an ensemble over every built-in predictor.
func NewDefault(config Config) *Ensemble {
	return New(predictor.All(), pattern.NewDefaultEngine(), config)
}

// Weights returns a copy of the current weight table.
func (e *Ensemble) Weights() update.Weights {
	return e.weights.Clone()
}

// #endregion ensemble

// #region evaluate
// Evaluate asks every predictor for its call on history, in predictor order.
func (e *Ensemble) Evaluate(history []outcome.Record) []predictor.Opinion {
	out := make([]predictor.Opinion, len(e.predictors))
	if !e.config.Parallel {
		for i, p := range e.predictors {
			c, ok := p.Predict(history, e.engine)
			out[i] = predictor.Opinion{ID: p.ID(), Category: c, OK: ok}
		}
		return out
	}

	var wg sync.WaitGroup
	for i, p := range e.predictors {
		wg.Add(1)
		go func(i int, p predictor.Predictor) {
			defer wg.Done()
			c, ok := p.Predict(history, e.engine)
			out[i] = predictor.Opinion{ID: p.ID(), Category: c, OK: ok}
		}(i, p)
	}
	wg.Wait()
	return out
}

// #endregion evaluate

// #region fit
// FitInitial replaces the weights with a backtest over the most recent
// window: every predictor is scored on each prefix from WarmupRecords on,
// and weight is one plus its number of correct calls, normalized.
// Windows shorter than MinFitRecords leave the weights untouched.
func (e *Ensemble) FitInitial(history []outcome.Record) {
	window := outcome.Last(history, e.config.HistoryWindow)
	if len(window) < e.config.MinFitRecords {
		return
	}

	scores := make(map[predictor.ID]int, len(e.predictors))
	for i := e.config.WarmupRecords; i < len(window); i++ {
		actual := window[i].Category
		for _, op := range e.Evaluate(window[:i]) {
			if op.OK && op.Category == actual {
				scores[op.ID]++
			}
		}
	}

	raw := make(update.Weights, len(e.predictors))
	for _, p := range e.predictors {
		raw[p.ID()] = float64(scores[p.ID()] + 1)
	}
	e.weights = update.Normalize(raw, e.config.MinWeight)
}

// UpdateWithOutcome nudges every weight toward reward or penalty depending
// on whether the predictor called actual correctly from prefix.
func (e *Ensemble) UpdateWithOutcome(prefix []outcome.Record, actual outcome.Category) update.UpdateResult {
	result := update.Update(e.weights, e.Evaluate(prefix), actual, e.config.updateConfig())
	e.weights = result.Weights
	return result
}

// #endregion fit

// #region predict
// Predict runs every predictor on history and returns the weighted call.
// It always answers: with no opinions at all it falls back to the
// frequency rule, then to Tai, at MinConfidence.
func (e *Ensemble) Predict(history []outcome.Record) Prediction {
	p := Prediction{}
	if n := len(history); n > 0 {
		p.TargetSession = history[n-1].Session + 1
	}

	votes := make(map[outcome.Category]float64, 2)
	var order []outcome.Category
	for _, op := range e.Evaluate(history) {
		if !op.OK {
			continue
		}
		if _, seen := votes[op.Category]; !seen {
			order = append(order, op.Category)
		}
		votes[op.Category] += e.weights[op.ID]
	}

	if len(order) == 0 {
		c, ok := predictor.FreqRebalanceFunc(history, e.engine)
		if !ok {
			c = outcome.Tai
		}
		p.Category = c
		p.Confidence = e.config.MinConfidence
		p.Fallback = true
		return p
	}

	var total float64
	best := order[0]
	for _, c := range order {
		total += votes[c]
		if votes[c] > votes[best] {
			best = c
		}
	}

	conf := e.config.MinConfidence
	if total > 0 {
		conf = votes[best] / total
	}
	p.Category = best
	p.Confidence = clamp(conf, e.config.MinConfidence, e.config.MaxConfidence)
	p.Votes = votes
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion predict
