package predictor

import (
	"github.com/danielpatrickdp/txpredict/internal/features"
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
)

// #region neo-pattern
const (
	neoMinHistory     = 25
	neoMotifThreshold = 0.7
	neoMinSimilarity  = 0.8
)

var neoTailLengths = []int{3, 4, 5, 6}

// NeoPatternFunc first trusts a strongly confident motif. Otherwise it
// compares the most recent window against every earlier window of the same
// length and lets sufficiently similar windows vote for the symbol that
// followed them, weighted by similarity. The tail length with the largest
// total similarity decides.
func NeoPatternFunc(history []outcome.Record, eng *pattern.Engine) (outcome.Category, bool) {
	n := len(history)
	if n < neoMinHistory {
		return "", false
	}
	sym := outcome.Symbols(history)

	if eng != nil {
		scan := eng.Detect(sym)
		if name, conf, ok := scan.MostConfident(); ok && conf > neoMotifThreshold {
			return scan.PredictNext(name)
		}
	}

	var best outcome.Category
	bestTotal := -1.0
	for _, l := range neoTailLengths {
		if n < l*2 {
			continue
		}
		target := sym[n-l:]
		var tScore, xScore, total float64
		for i := 0; i+l < n; i++ {
			score := features.Similarity(sym[i:i+l], target)
			if score < neoMinSimilarity {
				continue
			}
			if sym[i+l] == 't' {
				tScore += score
			} else {
				xScore += score
			}
			total += score
		}
		if total == 0 || tScore == xScore || total <= bestTotal {
			continue
		}
		bestTotal = total
		if tScore > xScore {
			best = outcome.Tai
		} else {
			best = outcome.Xiu
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}

// #endregion neo-pattern

// #region deep-analysis
const (
	deepMinHistory   = 50
	deepRecentTotals = 20
	deepHighRecent   = 12.5
	deepHighMean     = 12.0
	deepLowRecent    = 8.5
	deepLowMean      = 9.0
	deepRandomBits   = 0.95
	deepRecentWindow = 10
	deepRecentHeavy  = 6
	deepMinCycleHits = 4
	deepCycleHigh    = 0.75
	deepCycleLow     = 0.25
)

var deepCycleLengths = []int{8, 12}

// DeepAnalysisFunc combines total-drift reversion, a near-random fallback
// and exact cycle repetition.
func DeepAnalysisFunc(history []outcome.Record, _ *pattern.Engine) (outcome.Category, bool) {
	if len(history) < deepMinHistory {
		return "", false
	}
	f := features.Extract(history)

	recentAvg := features.MeanTotal(outcome.Last(history, deepRecentTotals))
	if recentAvg > deepHighRecent && f.MeanTotal > deepHighMean {
		return outcome.Xiu, true
	}
	if recentAvg < deepLowRecent && f.MeanTotal < deepLowMean {
		return outcome.Tai, true
	}

	if f.Entropy > deepRandomBits {
		last := outcome.Last(history, deepRecentWindow)
		if outcome.Count(last, outcome.Tai) >= deepRecentHeavy {
			return outcome.Xiu, true
		}
		if outcome.Count(last, outcome.Xiu) >= deepRecentHeavy {
			return outcome.Tai, true
		}
		return history[len(history)-1].Category.Opposite(), true
	}

	sym := outcome.Symbols(history)
	n := len(sym)
	for _, l := range deepCycleLengths {
		if n < l*2 {
			continue
		}
		target := sym[n-l:]
		var tAfter, xAfter int
		for i := 0; i+l < n; i++ {
			if sym[i:i+l] != target {
				continue
			}
			if sym[i+l] == 't' {
				tAfter++
			} else {
				xAfter++
			}
		}
		if tAfter+xAfter < deepMinCycleHits {
			continue
		}
		ratio := float64(tAfter) / float64(tAfter+xAfter)
		if ratio > deepCycleHigh {
			return outcome.Tai, true
		}
		if ratio < deepCycleLow {
			return outcome.Xiu, true
		}
	}
	return "", false
}

// #endregion deep-analysis
