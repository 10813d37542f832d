package outcome

import "strings"

// #region constructor
// New builds a Record from three die faces. The category follows the total
// unless side carries an explicit upstream label.
func New(session int64, dice [3]int, side Side) Record {
	total := dice[0] + dice[1] + dice[2]
	return Record{
		Session:  session,
		Dice:     dice,
		Total:    total,
		Category: Classify(total, side),
	}
}

// Classify maps a dice total to a category, honoring an explicit side.
func Classify(total int, side Side) Category {
	switch side {
	case SideTai:
		return Tai
	case SideXiu:
		return Xiu
	}
	if total >= TaiThreshold {
		return Tai
	}
	return Xiu
}

// #endregion constructor

// #region views
// Categories extracts the category sequence of a history.
func Categories(history []Record) []Category {
	out := make([]Category, len(history))
	for i, r := range history {
		out[i] = r.Category
	}
	return out
}

// Symbols renders a history as a lowercase t/x string.
func Symbols(history []Record) string {
	var b strings.Builder
	b.Grow(len(history))
	for _, r := range history {
		b.WriteByte(r.Category.Symbol())
	}
	return b.String()
}

// Last returns the final n records (or all of them when shorter).
func Last(history []Record, n int) []Record {
	if n >= len(history) {
		return history
	}
	if n <= 0 {
		return history[len(history):]
	}
	return history[len(history)-n:]
}

// Count returns how many records in history carry category c.
func Count(history []Record, c Category) int {
	n := 0
	for _, r := range history {
		if r.Category == c {
			n++
		}
	}
	return n
}

// #endregion views

// #region synthetic
// FromSymbols builds a history from a t/x string, numbering sessions from
// start. Tai records roll 4-4-4, Xiu records 2-3-4, so totals stay close to
// the mean. Characters other than t/T/x/X are skipped.
func FromSymbols(start int64, symbols string) []Record {
	out := make([]Record, 0, len(symbols))
	session := start
	for _, ch := range symbols {
		var dice [3]int
		switch ch {
		case 't', 'T':
			dice = [3]int{4, 4, 4}
		case 'x', 'X':
			dice = [3]int{2, 3, 4}
		default:
			continue
		}
		out = append(out, New(session, dice, SideUnknown))
		session++
	}
	return out
}

// #endregion synthetic
