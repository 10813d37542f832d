package predictor

import (
	"github.com/danielpatrickdp/txpredict/internal/features"
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
)

// #region advanced-pattern
const (
	advancedMinHistory = 30
	advancedThreshold  = 0.65
)

// AdvancedPatternFunc trusts the most confident non-basic motif currently
// matching the tail. Equal confidences keep detection order.
func AdvancedPatternFunc(history []outcome.Record, eng *pattern.Engine) (outcome.Category, bool) {
	if len(history) < advancedMinHistory || eng == nil {
		return "", false
	}
	scan := eng.DetectHistory(history)

	best := ""
	bestConf := -1.0
	for _, d := range scan.Detections() {
		if pattern.IsBasic(d.Motif) {
			continue
		}
		if c := scan.Confidence(d.Motif); c > bestConf {
			best = d.Motif
			bestConf = c
		}
	}
	if best == "" || bestConf <= advancedThreshold {
		return "", false
	}
	return scan.PredictNext(best)
}

// #endregion advanced-pattern

// #region adaptive-pattern
const (
	adaptiveMinHistory   = 35
	adaptiveWindow       = 20
	adaptiveVolatileRate = 0.75
	adaptiveRecent       = 5
	adaptiveRecentHeavy  = 4
	adaptiveMotifConf    = 0.6
)

// AdaptivePatternFunc only speaks in a volatile regime (more than 75% of
// the last 20 transitions are changes).
func AdaptivePatternFunc(history []outcome.Record, eng *pattern.Engine) (outcome.Category, bool) {
	if len(history) < adaptiveMinHistory {
		return "", false
	}

	window := outcome.Last(history, adaptiveWindow)
	rate := float64(features.Changes(window)) / float64(adaptiveWindow-1)
	if rate <= adaptiveVolatileRate {
		return "", false
	}

	recent := outcome.Last(history, adaptiveRecent)
	if outcome.Count(recent, outcome.Tai) >= adaptiveRecentHeavy {
		return outcome.Xiu, true
	}
	if outcome.Count(recent, outcome.Xiu) >= adaptiveRecentHeavy {
		return outcome.Tai, true
	}

	if eng == nil {
		return "", false
	}
	scan := eng.DetectHistory(history)
	if name, conf, ok := scan.MostConfident(); ok && conf > adaptiveMotifConf {
		return scan.PredictNext(name)
	}
	return "", false
}

// #endregion adaptive-pattern
