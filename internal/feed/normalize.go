package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
)

// #region decode
// Decode parses an upstream response body: a JSON array of payloads.
func Decode(r io.Reader) ([]Payload, error) {
	var out []Payload
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode payloads: %w", err)
	}
	return out, nil
}

// #endregion decode

// #region normalize
// Normalize turns upstream payloads into records in ascending session
// order. Entries with no session, a die outside 1..6, or a DiceSum that
// disagrees with the dice are dropped, as are repeated sessions after the
// first. A zero DiceSum is treated as absent.
func Normalize(payloads []Payload) []outcome.Record {
	seen := make(map[int64]struct{}, len(payloads))
	out := make([]outcome.Record, 0, len(payloads))
	for _, p := range payloads {
		if !valid(p) {
			continue
		}
		if _, dup := seen[p.SessionId]; dup {
			continue
		}
		seen[p.SessionId] = struct{}{}
		out = append(out, outcome.New(p.SessionId, [3]int{p.FirstDice, p.SecondDice, p.ThirdDice}, side(p.BetSide)))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Session < out[j].Session })
	return out
}

// After returns the records of batch with a session greater than last.
// batch must be ascending.
func After(batch []outcome.Record, last int64) []outcome.Record {
	i := sort.Search(len(batch), func(i int) bool { return batch[i].Session > last })
	return batch[i:]
}

func valid(p Payload) bool {
	if p.SessionId <= 0 {
		return false
	}
	for _, d := range []int{p.FirstDice, p.SecondDice, p.ThirdDice} {
		if d < 1 || d > 6 {
			return false
		}
	}
	return p.DiceSum == 0 || p.DiceSum == p.FirstDice+p.SecondDice+p.ThirdDice
}

func side(bs *int) outcome.Side {
	if bs == nil {
		return outcome.SideUnknown
	}
	switch *bs {
	case 0:
		return outcome.SideTai
	case 1:
		return outcome.SideXiu
	}
	return outcome.SideUnknown
}

// #endregion normalize
