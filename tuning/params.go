// Package tuning implements hyperparameter search. Candidate
// assignments are enumerated from an ordered grid or sampled from a
// space, then ranked by cross-validated R² on the training partition.
package tuning

import (
	"math/rand/v2"
)

// Params is a single hyperparameter assignment keyed by parameter
// name.
type Params map[string]interface{}

// Axis is one dimension of a search space: a parameter name and the
// values it may take.
type Axis struct {
	Name   string
	Values []interface{}
}

// Grid is an ordered list of axes. Order matters: enumeration and
// sampling both follow it, so a fixed grid yields a fixed candidate
// sequence.
type Grid []Axis

// Size returns the number of combinations the grid spans. A grid with
// no axes, or with an empty axis, has size zero.
func (g Grid) Size() int {
	if len(g) == 0 {
		return 0
	}
	size := 1
	for _, axis := range g {
		size *= len(axis.Values)
	}
	return size
}

// Enumerate walks the cartesian product of all axes in order, with the
// last axis varying fastest.
func (g Grid) Enumerate() []Params {
	total := g.Size()
	if total == 0 {
		return nil
	}

	candidates := make([]Params, 0, total)
	counters := make([]int, len(g))
	for {
		p := make(Params, len(g))
		for i, axis := range g {
			p[axis.Name] = axis.Values[counters[i]]
		}
		candidates = append(candidates, p)

		i := len(g) - 1
		for i >= 0 {
			counters[i]++
			if counters[i] < len(g[i].Values) {
				break
			}
			counters[i] = 0
			i--
		}
		if i < 0 {
			break
		}
	}
	return candidates
}

// Sample draws n assignments, choosing each axis value independently
// with replacement from a seeded generator.
func (g Grid) Sample(n int, seed int64) []Params {
	if n <= 0 || g.Size() == 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	candidates := make([]Params, 0, n)
	for i := 0; i < n; i++ {
		p := make(Params, len(g))
		for _, axis := range g {
			p[axis.Name] = axis.Values[rng.IntN(len(axis.Values))]
		}
		candidates = append(candidates, p)
	}
	return candidates
}
