package pattern

// #region motif
// Motif is a named family of symbol templates over {t,x}.
type Motif struct {
	Name     string
	Variants []string
}

// #endregion motif

// #region basic
// Basic motif names. Predictors that look for structure beyond simple
// streaks and alternation skip these.
const (
	MotifAlternate = "1-1"
	MotifStreak    = "bet"
	MotifPairs     = "2-2"
	MotifTriples   = "3-3"
	MotifQuads     = "4-4"
)

// IsBasic reports whether name is one of the five basic motifs.
func IsBasic(name string) bool {
	switch name {
	case MotifAlternate, MotifStreak, MotifPairs, MotifTriples, MotifQuads:
		return true
	}
	return false
}

// #endregion basic

// #region catalog
// DefaultCatalog returns the built-in motif table. Order matters: it is the
// tie-break for detections of equal length and for equal confidences.
// Several families share variants on purpose.
func DefaultCatalog() []Motif {
	return []Motif{
		// basic
		{MotifAlternate, []string{"tx", "xt"}},
		{MotifStreak, []string{"tt", "xx"}},
		{MotifPairs, []string{"ttxx", "xxtt"}},
		{MotifTriples, []string{"tttxxx", "xxxttt"}},
		{MotifQuads, []string{"ttttxxxx", "xxxxtttt"}},

		// compound
		{"1-2-1", []string{"txxxt", "xtttx"}},
		{"2-1-2", []string{"ttxtt", "xxtxx"}},
		{"1-2-3", []string{"txxttt", "xttxxx"}},
		{"3-2-3", []string{"tttxttt", "xxxtxxx"}},
		{"4-2-4", []string{"ttttxxtttt", "xxxxttxxxx"}},
		{"1-3-1", []string{"txtttx", "xtxxxt"}},

		// zigzag
		{"zigzag", []string{"txt", "xtx"}},
		{"double_zigzag", []string{"txtxt", "xtxtx"}},
		{"triple_zigzag", []string{"txtxtxt", "xtxtxtx"}},

		// long cycles
		{"1-1-1-2", []string{"txttx", "xtxxt"}},
		{"2-1-1-1", []string{"ttxtx", "xxtxt"}},
		{"1-2-2-2", []string{"txxxtt", "xtttxx"}},

		// geometric
		{"triangle", []string{"txx", "xtt"}},
		{"square", []string{"ttxx", "xxtt"}},
		{"pentagon", []string{"tttxx", "xxxtt"}},

		// waves
		{"wave_2", []string{"ttxx", "xxtt"}},
		{"wave_3", []string{"tttxxx", "xxxttt"}},
		{"wave_4", []string{"ttttxxxx", "xxxxtttt"}},

		// reversals
		{"reverse_1", []string{"ttx", "xxt"}},
		{"reverse_2", []string{"ttxx", "xxtt"}},
		{"reverse_3", []string{"tttxxx", "xxxttt"}},

		// interlace
		{"interlace_1", []string{"txtxt", "xtxtx"}},
		{"interlace_2", []string{"ttxxtt", "xxttxx"}},

		// branch
		{"branch_1", []string{"ttxtx", "xxtxt"}},
		{"branch_2", []string{"ttxxttx", "xxttxx"}},

		// spiral
		{"spiral_1", []string{"txxxt", "xtttx"}},
		{"spiral_2", []string{"ttxxxtt", "xxtttxx"}},

		// symmetry
		{"symmetry_1", []string{"txt", "xtx"}},
		{"symmetry_2", []string{"ttxxtt", "xxttxx"}},
		{"symmetry_3", []string{"tttxxxttt", "xxxxttxxx"}},

		// repeats
		{"repeat_1", []string{"tt", "xx"}},
		{"repeat_2", []string{"tttt", "xxxx"}},
		{"repeat_3", []string{"tttttt", "xxxxxx"}},

		// fibonacci
		{"fibonacci_1", []string{"t", "x"}},
		{"fibonacci_2", []string{"tx", "xt"}},
		{"fibonacci_3", []string{"txt", "xtx"}},
		{"fibonacci_4", []string{"txttx", "xtxxt"}},
	}
}

// #endregion catalog
