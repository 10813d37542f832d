package features

import (
	"math"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
)

// #region types
// Run is a maximal block of identical consecutive categories.
type Run struct {
	Category outcome.Category
	Len      int
}

// Features summarizes a history for the predictors.
type Features struct {
	Counts    map[outcome.Category]int
	Runs      []Run
	MaxRun    int
	MeanTotal float64
	StdTotal  float64 // population standard deviation
	Entropy   float64 // bits
}

// #endregion types

// #region extract
// Extract computes frequency, run, total and entropy features. An empty
// history yields zeroed features.
func Extract(history []outcome.Record) Features {
	f := Features{Counts: make(map[outcome.Category]int, 2)}
	if len(history) == 0 {
		return f
	}

	totals := make([]float64, len(history))
	for i, r := range history {
		f.Counts[r.Category]++
		totals[i] = float64(r.Total)
	}

	f.Runs = Runs(history)
	for _, r := range f.Runs {
		if r.Len > f.MaxRun {
			f.MaxRun = r.Len
		}
	}

	f.MeanTotal = mean(totals)
	var sq float64
	for _, t := range totals {
		d := t - f.MeanTotal
		sq += d * d
	}
	f.StdTotal = math.Sqrt(sq / float64(len(totals)))
	f.Entropy = Entropy(outcome.Categories(history))

	return f
}

// #endregion extract

// #region helpers
// Runs merges consecutive equal categories into run-lengths.
func Runs(history []outcome.Record) []Run {
	if len(history) == 0 {
		return nil
	}
	runs := make([]Run, 0, 8)
	cur := Run{Category: history[0].Category, Len: 1}
	for _, r := range history[1:] {
		if r.Category == cur.Category {
			cur.Len++
			continue
		}
		runs = append(runs, cur)
		cur = Run{Category: r.Category, Len: 1}
	}
	return append(runs, cur)
}

// Entropy is the Shannon entropy, in bits, of a category sequence.
func Entropy(seq []outcome.Category) float64 {
	if len(seq) == 0 {
		return 0
	}
	freq := make(map[outcome.Category]int, 2)
	for _, c := range seq {
		freq[c]++
	}
	n := float64(len(seq))
	var e float64
	for _, k := range freq {
		p := float64(k) / n
		e -= p * math.Log2(p)
	}
	return e
}

// Similarity is the fraction of positions at which a and b agree.
// Strings of different length have similarity 0.
func Similarity(a, b string) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	m := 0
	for i := 0; i < len(a); i++ {
		if a[i] == b[i] {
			m++
		}
	}
	return float64(m) / float64(len(a))
}

// Changes counts adjacent positions whose categories differ.
func Changes(history []outcome.Record) int {
	n := 0
	for i := 1; i < len(history); i++ {
		if history[i].Category != history[i-1].Category {
			n++
		}
	}
	return n
}

// MeanTotal averages the dice totals of history (0 when empty).
func MeanTotal(history []outcome.Record) float64 {
	totals := make([]float64, len(history))
	for i, r := range history {
		totals[i] = float64(r.Total)
	}
	return mean(totals)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

// #endregion helpers
