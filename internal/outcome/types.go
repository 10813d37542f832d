package outcome

// #region category
// Category is the binary classification of a single game outcome.
type Category string

const (
	Tai Category = "T" // total >= 11
	Xiu Category = "X"
)

// Opposite returns the other category.
func (c Category) Opposite() Category {
	if c == Tai {
		return Xiu
	}
	return Tai
}

// Symbol returns the lowercase symbol used in pattern strings ("t" or "x").
func (c Category) Symbol() byte {
	if c == Tai {
		return 't'
	}
	return 'x'
}

// Valid reports whether c is one of the two known categories.
func (c Category) Valid() bool {
	return c == Tai || c == Xiu
}

// #endregion category

// #region side
// Side is the explicit upstream label that can override the threshold rule.
type Side int

const (
	SideUnknown Side = iota
	SideTai
	SideXiu
)

// #endregion side

// #region record
// Record is a normalized, immutable game result.
type Record struct {
	Session  int64    `json:"session"`
	Dice     [3]int   `json:"dice"`
	Total    int      `json:"total"`
	Category Category `json:"category"`
}

// TaiThreshold is the lowest dice total classified as Tai.
const TaiThreshold = 11

// #endregion record
