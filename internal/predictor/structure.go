package predictor

import (
	"strings"

	"github.com/danielpatrickdp/txpredict/internal/features"
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/pattern"
)

// #region bridge
const (
	bridgeMinRuns        = 3
	bridgeShortRunMin    = 2
	bridgeShortRunMax    = 5
	bridgeStableRuns     = 4
	bridgeBreakRun       = 6
	bridgeWindow         = 15
	bridgeMinWindow      = 10
	bridgeMinAlternation = 10
)

// BridgeFunc follows a stable short-run regime, breaks long runs, and breaks
// sustained alternation.
//
// A run of six or more is enough on its own to call a break, so that rule
// is checked before the minimum-runs gate.
func BridgeFunc(history []outcome.Record, _ *pattern.Engine) (outcome.Category, bool) {
	runs := features.Runs(history)
	if len(runs) == 0 {
		return "", false
	}
	last := runs[len(runs)-1]

	if last.Len >= bridgeBreakRun {
		return last.Category.Opposite(), true
	}
	if len(runs) < bridgeMinRuns {
		return "", false
	}

	if shortRun(last) && len(runs) >= bridgeStableRuns {
		stable := true
		for _, r := range runs[len(runs)-bridgeStableRuns:] {
			if !shortRun(r) {
				stable = false
				break
			}
		}
		if stable {
			return last.Category, true
		}
	}

	window := outcome.Last(history, bridgeWindow)
	if len(window) >= bridgeMinWindow && features.Changes(window) >= bridgeMinAlternation {
		return window[len(window)-1].Category.Opposite(), true
	}
	return "", false
}

func shortRun(r features.Run) bool {
	return r.Len >= bridgeShortRunMin && r.Len <= bridgeShortRunMax
}

// #endregion bridge

// #region basic-pattern
const (
	basicMinHistory = 20
	basicTail       = 10
)

// BasicPatternFunc checks the last ten symbols for the textbook shapes:
// finished alternation, a four-long streak, a 2-2 block and a 3-3 block.
// The 3-3 check asks for two repeats inside a six-symbol window and so
// never fires; it is kept so the rule table stays complete.
func BasicPatternFunc(history []outcome.Record, _ *pattern.Engine) (outcome.Category, bool) {
	if len(history) < basicMinHistory {
		return "", false
	}
	tail := lastSymbols(outcome.Symbols(history), basicTail)

	last6 := lastSymbols(tail, 6)
	if repeats(last6, "tx", 3) || repeats(last6, "xt", 3) {
		return breakOf(tail[len(tail)-1]), true
	}

	last4 := lastSymbols(tail, 4)
	if repeats(last4, "t", 4) {
		return outcome.Tai, true
	}
	if repeats(last4, "x", 4) {
		return outcome.Xiu, true
	}

	last8 := lastSymbols(tail, 8)
	if repeats(last8, "ttxx", 2) || repeats(last8, "xxtt", 2) {
		if strings.HasSuffix(tail, "tt") {
			return outcome.Xiu, true
		}
		return outcome.Tai, true
	}

	if repeats(last6, "tttxxx", 2) || repeats(last6, "xxxttt", 2) {
		if strings.HasSuffix(tail, "ttt") {
			return outcome.Xiu, true
		}
		return outcome.Tai, true
	}
	return "", false
}

// #endregion basic-pattern

// #region helpers
// lastSymbols returns the final n bytes of s.
func lastSymbols(s string, n int) string {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// repeats reports whether s is exactly unit repeated at least times times.
func repeats(s, unit string, times int) bool {
	if unit == "" || len(s) < len(unit)*times || len(s)%len(unit) != 0 {
		return false
	}
	return s == strings.Repeat(unit, len(s)/len(unit))
}

// breakOf predicts the category opposite to a t/x symbol.
func breakOf(sym byte) outcome.Category {
	if sym == 't' {
		return outcome.Xiu
	}
	return outcome.Tai
}

// #endregion helpers
