package predictor

import (
	"math"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
)

// #region freq-rebalance
const (
	freqMinHistory   = 20
	freqDominantRate = 0.6
	freqMinLead      = 0.15
	freqRecentWindow = 15
	freqRecentHeavy  = 10
)

// FreqRebalanceFunc bets on mean reversion. When one category holds more
// than 60% of the history with a lead over 15 points it predicts the other
// one; failing that, a heavy recent skew (10 of the last 15) is reversed.
func FreqRebalanceFunc(history []outcome.Record, _ *pattern.Engine) (outcome.Category, bool) {
	total := len(history)
	if total < freqMinHistory {
		return "", false
	}

	t := outcome.Count(history, outcome.Tai)
	tRatio := float64(t) / float64(total)
	xRatio := float64(total-t) / float64(total)

	if tRatio > freqDominantRate && tRatio-xRatio > freqMinLead {
		return outcome.Xiu, true
	}
	if xRatio > freqDominantRate && xRatio-tRatio > freqMinLead {
		return outcome.Tai, true
	}

	recent := outcome.Last(history, freqRecentWindow)
	if outcome.Count(recent, outcome.Tai) >= freqRecentHeavy {
		return outcome.Xiu, true
	}
	if outcome.Count(recent, outcome.Xiu) >= freqRecentHeavy {
		return outcome.Tai, true
	}
	return "", false
}

// #endregion freq-rebalance

// #region markov
const (
	markovOrder        = 3
	markovMinExtra     = 10
	markovMinObserved  = 5
	markovMinImbalance = 0.7
)

// MarkovFunc looks up what historically followed the last three categories.
func MarkovFunc(history []outcome.Record, _ *pattern.Engine) (outcome.Category, bool) {
	if len(history) < markovOrder+markovMinExtra {
		return "", false
	}
	sym := outcome.Symbols(history)

	type counts struct{ t, x int }
	transitions := make(map[string]*counts)
	for i := 0; i+markovOrder < len(sym); i++ {
		key := sym[i : i+markovOrder]
		c, ok := transitions[key]
		if !ok {
			c = &counts{}
			transitions[key] = c
		}
		if sym[i+markovOrder] == 't' {
			c.t++
		} else {
			c.x++
		}
	}

	c, ok := transitions[sym[len(sym)-markovOrder:]]
	if !ok {
		return "", false
	}
	total := c.t + c.x
	if total < markovMinObserved {
		return "", false
	}
	imbalance := math.Abs(float64(c.t-c.x)) / float64(total)
	if imbalance <= markovMinImbalance {
		return "", false
	}
	if c.t > c.x {
		return outcome.Tai, true
	}
	return outcome.Xiu, true
}

// #endregion markov
