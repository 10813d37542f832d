package predictor

import (
	"math"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
)

// #region members
// Member is a predictor with a fixed vote weight inside the meta ensemble.
type Member struct {
	Predictor Predictor
	Weight    float64
}

// DefaultMetaMembers returns the seven static sub-voters.
func DefaultMetaMembers() []Member {
	return []Member{
		{New(FreqRebalance, FreqRebalanceFunc), 0.8},
		{New(Markov, MarkovFunc), 0.85},
		{New(NeoPattern, NeoPatternFunc), 0.95},
		{New(DeepAnalysis, DeepAnalysisFunc), 0.9},
		{New(Bridge, BridgeFunc), 0.9},
		{New(BasicPattern, BasicPatternFunc), 0.8},
		{New(Advanced, AdvancedPatternFunc), 0.85},
	}
}

// #endregion members

// #region meta
const (
	metaMinHistory = 45
	metaCommit     = 0.65
	metaCloseCall  = 0.15
	metaRecent     = 8
	metaSkew       = 1.5
)

// Meta is a static weighted sub-vote over other predictors. Its weights
// never learn; the adaptive ensemble learns a weight for Meta as a whole.
type Meta struct {
	members []Member
}

// NewMeta builds a meta predictor over members.
func NewMeta(members []Member) *Meta {
	return &Meta{members: members}
}

// ID implements Predictor.
func (m *Meta) ID() ID { return MetaEnsemble }

// Predict commits when one side holds more than 65% of the weighted vote.
// On a close call it leans against a skewed last eight.
func (m *Meta) Predict(history []outcome.Record, eng *pattern.Engine) (outcome.Category, bool) {
	if len(history) < metaMinHistory {
		return "", false
	}

	var tScore, xScore float64
	for _, mem := range m.members {
		c, ok := mem.Predictor.Predict(history, eng)
		if !ok {
			continue
		}
		if c == outcome.Tai {
			tScore += mem.Weight
		} else {
			xScore += mem.Weight
		}
	}
	total := tScore + xScore
	if total == 0 {
		return "", false
	}

	tRatio := tScore / total
	xRatio := xScore / total
	if tRatio > metaCommit {
		return outcome.Tai, true
	}
	if xRatio > metaCommit {
		return outcome.Xiu, true
	}

	if math.Abs(tRatio-xRatio) < metaCloseCall {
		recent := outcome.Last(history, metaRecent)
		t := float64(outcome.Count(recent, outcome.Tai))
		x := float64(outcome.Count(recent, outcome.Xiu))
		if t > x*metaSkew {
			return outcome.Xiu, true
		}
		if x > t*metaSkew {
			return outcome.Tai, true
		}
	}
	return "", false
}

// #endregion meta
