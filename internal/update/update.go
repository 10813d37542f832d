package update

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/predictor"
)

// #region update-function
// Update is a pure function that computes the next weight table from the
// current one and the opinions the predictors gave before actual was seen.
// A predictor that abstained counts as wrong. Predictors missing from old
// start at the floor.
func Update(old Weights, opinions []predictor.Opinion, actual outcome.Category, config UpdateConfig) UpdateResult {
	start := time.Now()

	next := old.Clone()
	var hits, misses []predictor.ID
	for _, op := range opinions {
		current, ok := next[op.ID]
		if !ok {
			current = config.Floor
		}

		factor := config.Penalty
		if op.OK && op.Category == actual {
			factor = config.Reward
			hits = append(hits, op.ID)
		} else {
			misses = append(misses, op.ID)
		}

		target := current * factor
		blended := config.Alpha*target + (1-config.Alpha)*current
		next[op.ID] = math.Max(config.Floor, blended)
	}
	next = Normalize(next, config.Floor)

	var sumSq float64
	for id, v := range next {
		d := v - old[id]
		sumSq += d * d
	}
	deltaNorm := math.Sqrt(sumSq)

	decision := Decision{Action: "no_op", Reason: "no weight change"}
	if deltaNorm > 0 {
		decision = Decision{
			Action: "commit",
			Reason: fmt.Sprintf("hits: %v, delta norm: %.6f", hits, deltaNorm),
		}
	}

	return UpdateResult{
		Weights:  next,
		Decision: decision,
		Metrics: Metrics{
			Hits:         hits,
			Misses:       misses,
			DeltaNorm:    deltaNorm,
			UpdateTimeMs: time.Since(start).Milliseconds(),
		},
	}
}

// #endregion update-function

// #region normalize
// Normalize scales w to sum to 1 while keeping every weight at or above
// floor. Weights that would fall under the floor are pinned to it and the
// remaining mass is shared among the rest in proportion to their values.
// If the floor alone exceeds the available mass, every weight becomes 1/n.
func Normalize(w Weights, floor float64) Weights {
	n := len(w)
	if n == 0 {
		return Weights{}
	}
	if floor*float64(n) >= 1 {
		out := make(Weights, n)
		for id := range w {
			out[id] = 1 / float64(n)
		}
		return out
	}

	ids := make([]predictor.ID, 0, n)
	for id := range w {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return w[ids[i]] < w[ids[j]] })

	out := make(Weights, n)
	pinned := 0
	for {
		free := 1 - floor*float64(pinned)
		var rest float64
		for _, id := range ids[pinned:] {
			rest += math.Max(w[id], 0)
		}

		if rest <= 0 {
			for _, id := range ids[pinned:] {
				out[id] = free / float64(n-pinned)
			}
			break
		}

		// ids is ascending, so only the smallest free weight can breach.
		lowest := ids[pinned]
		if math.Max(w[lowest], 0)/rest*free < floor && pinned < n-1 {
			out[lowest] = floor
			pinned++
			continue
		}
		for _, id := range ids[pinned:] {
			out[id] = math.Max(w[id], 0) / rest * free
		}
		break
	}
	return out
}

// Uniform returns equal weights for ids.
func Uniform(ids []predictor.ID) Weights {
	w := make(Weights, len(ids))
	for _, id := range ids {
		w[id] = 1 / float64(len(ids))
	}
	return w
}

// #endregion normalize
