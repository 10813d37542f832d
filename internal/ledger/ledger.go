package ledger

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/google/uuid"
)

// #region ledger
// Ledger keys predictions by the session they target and scores them once
// the actual outcome arrives. Entries are never deleted. The ledger is not
// synchronized; its owner serializes mutations.
type Ledger struct {
	entries map[int64]*Entry
	wins    int
	losses  int
	sink    Sink
	now     func() time.Time
}

// New creates an empty ledger. sink may be nil.
func New(sink Sink) *Ledger {
	return &Ledger{
		entries: make(map[int64]*Entry),
		sink:    sink,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// #endregion ledger

// #region record
// Record stores a pending prediction for target. An unresolved entry for
// the same target is superseded; a resolved one is kept and Record returns
// it unchanged with ok=false.
func (l *Ledger) Record(target int64, predicted outcome.Category, confidence float64) (Entry, bool) {
	if cur, exists := l.entries[target]; exists && cur.Resolved() {
		return *cur, false
	}

	e := &Entry{
		ID:            uuid.New().String(),
		TargetSession: target,
		Predicted:     predicted,
		Confidence:    confidence,
		CreatedAt:     l.now(),
	}
	l.entries[target] = e

	if l.sink != nil {
		if err := l.sink.RecordPrediction(*e); err != nil {
			log.Printf("[LEDGER] sink record %d: %v", target, err)
		}
	}
	return *e, true
}

// Resolve marks the entry for session with its actual outcome. It returns
// false when no entry exists or the entry was already resolved; in both
// cases the tallies are untouched.
func (l *Ledger) Resolve(session int64, actual outcome.Category) (Entry, bool) {
	e, exists := l.entries[session]
	if !exists || e.Resolved() {
		return Entry{}, false
	}

	a := actual
	e.Actual = &a
	e.ResolvedAt = l.now()
	if e.Hit() {
		l.wins++
	} else {
		l.losses++
	}

	if l.sink != nil {
		if err := l.sink.RecordResolution(*e); err != nil {
			log.Printf("[LEDGER] sink resolve %d: %v", session, err)
		}
	}
	return *e, true
}

// #endregion record

// #region queries
// Stats returns the running tallies.
func (l *Ledger) Stats() Stats {
	total := l.wins + l.losses
	rate := 0.0
	if total > 0 {
		rate = float64(l.wins) / float64(total) * 100
	}
	return Stats{
		TotalPredictions: total,
		TotalWins:        l.wins,
		TotalLosses:      l.losses,
		WinRate:          fmt.Sprintf("%.2f%%", rate),
		ActivePatterns:   len(l.entries),
	}
}

// Entry returns the entry targeting session.
func (l *Ledger) Entry(session int64) (Entry, bool) {
	e, ok := l.entries[session]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Pending returns unresolved entries in ascending target order.
func (l *Ledger) Pending() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if !e.Resolved() {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetSession < out[j].TargetSession })
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// #endregion queries
