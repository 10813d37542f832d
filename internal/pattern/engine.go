package pattern

import (
	"sort"
	"strings"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
)

// #region constants
const (
	defaultMotifWeight = 1.0
	lastSymbolBonus    = 1.5 // weight multiplier for a variant's final symbol
	ratioBonus         = 2.0 // weight multiplier for t/x imbalance within a variant
)

// #endregion constants

// #region engine
// Engine matches catalog motifs against the tail of a symbol string.
// It is immutable after construction; all per-call state lives in a Scan,
// so one Engine can serve concurrent predictors.
type Engine struct {
	motifs  []Motif
	index   map[string]int
	weights []float64
}

// NewEngine builds an engine over catalog. Empty variants are dropped.
func NewEngine(catalog []Motif) *Engine {
	e := &Engine{
		motifs:  make([]Motif, 0, len(catalog)),
		index:   make(map[string]int, len(catalog)),
		weights: make([]float64, 0, len(catalog)),
	}
	for _, m := range catalog {
		if _, dup := e.index[m.Name]; dup {
			continue
		}
		variants := make([]string, 0, len(m.Variants))
		for _, v := range m.Variants {
			if v != "" {
				variants = append(variants, strings.ToLower(v))
			}
		}
		e.index[m.Name] = len(e.motifs)
		e.motifs = append(e.motifs, Motif{Name: m.Name, Variants: variants})
		e.weights = append(e.weights, defaultMotifWeight)
	}
	return e
}

// NewDefaultEngine builds an engine over DefaultCatalog.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultCatalog())
}

// #endregion engine

// #region scan
// Detection is one motif whose variant is a suffix of the scanned string.
type Detection struct {
	Motif    string
	Variant  string
	Length   int
	Position int // index in the scanned string where the variant starts
}

// Scan is the result of a single Detect call: detected motifs plus the
// confidences evaluated within this call.
type Scan struct {
	engine     *Engine
	detections []Detection
	detected   map[string]struct{}
	confidence map[string]float64
}

// Detect tests every motif against the tail of symbols. For each motif only
// the first matching variant is kept. Detections are ordered by descending
// length; equal lengths keep catalog order. Every detected motif is then
// evaluated so the scan carries its confidence.
func (e *Engine) Detect(symbols string) *Scan {
	lower := strings.ToLower(symbols)
	s := &Scan{
		engine:     e,
		detected:   make(map[string]struct{}),
		confidence: make(map[string]float64),
	}

	for _, m := range e.motifs {
		for _, v := range m.Variants {
			if strings.HasSuffix(lower, v) {
				s.detections = append(s.detections, Detection{
					Motif:    m.Name,
					Variant:  v,
					Length:   len(v),
					Position: len(lower) - len(v),
				})
				s.detected[m.Name] = struct{}{}
				break
			}
		}
	}

	sort.SliceStable(s.detections, func(i, j int) bool {
		return s.detections[i].Length > s.detections[j].Length
	})

	for _, d := range s.detections {
		s.PredictNext(d.Motif)
	}
	return s
}

// DetectHistory is Detect over the symbol string of a history.
func (e *Engine) DetectHistory(history []outcome.Record) *Scan {
	return e.Detect(outcome.Symbols(history))
}

// Detections returns the detected motifs in ranked order.
func (s *Scan) Detections() []Detection {
	out := make([]Detection, len(s.detections))
	copy(out, s.detections)
	return out
}

// Has reports whether name was detected in this scan.
func (s *Scan) Has(name string) bool {
	_, ok := s.detected[name]
	return ok
}

// Confidence returns the stored confidence for name (0 if never evaluated).
func (s *Scan) Confidence(name string) float64 {
	return s.confidence[name]
}

// #endregion scan

// #region predict-next
// PredictNext scores the variants of a detected motif. Each variant of
// length >= 2 votes its final symbol, and the symbol that dominates the
// variant earns a bonus proportional to the imbalance. Ties go to Xiu.
func (s *Scan) PredictNext(name string) (outcome.Category, bool) {
	if !s.Has(name) {
		return "", false
	}
	idx := s.engine.index[name]
	w := s.engine.weights[idx]

	var tScore, xScore float64
	for _, v := range s.engine.motifs[idx].Variants {
		if len(v) < 2 {
			continue
		}
		switch v[len(v)-1] {
		case 't':
			tScore += w * lastSymbolBonus
		case 'x':
			xScore += w * lastSymbolBonus
		}

		n := float64(len(v))
		tRatio := float64(strings.Count(v, "t")) / n
		xRatio := float64(strings.Count(v, "x")) / n
		if tRatio > xRatio {
			tScore += w * (tRatio - xRatio) * ratioBonus
		} else {
			xScore += w * (xRatio - tRatio) * ratioBonus
		}
	}

	total := tScore + xScore
	conf := 0.0
	if total > 0 {
		conf = max(tScore, xScore) / total
	}
	s.confidence[name] = conf

	if tScore == 0 && xScore == 0 {
		return "", false
	}
	if tScore > xScore {
		return outcome.Tai, true
	}
	return outcome.Xiu, true
}

// #endregion predict-next

// #region most-confident
// MostConfident returns the evaluated motif with the highest confidence.
// Motifs are visited in catalog order and the first strictly greater value
// wins, so equal confidences resolve to the earlier catalog entry.
func (s *Scan) MostConfident() (string, float64, bool) {
	best := ""
	bestConf := 0.0
	for _, m := range s.engine.motifs {
		c, ok := s.confidence[m.Name]
		if !ok {
			continue
		}
		if c > bestConf {
			best = m.Name
			bestConf = c
		}
	}
	return best, bestConf, best != ""
}

// #endregion most-confident
