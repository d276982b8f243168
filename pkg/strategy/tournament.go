package strategy

import (
	"math"
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// DefaultTournamentSize is the number of aspirants per tournament.
const DefaultTournamentSize = 3

// Tournament picks each of the k winners as the best of Size uniform draws
// with replacement. On ties the earliest drawn aspirant wins.
type Tournament struct {
	Size int
}

func (t Tournament) Select(pop []*genome.Individual, k int, rng *rand.Rand) []*genome.Individual {
	if len(pop) == 0 {
		return nil
	}
	size := t.Size
	if size < 1 {
		size = DefaultTournamentSize
	}

	chosen := make([]*genome.Individual, k)
	for i := range chosen {
		best := pop[rng.IntN(len(pop))]
		for j := 1; j < size; j++ {
			aspirant := pop[rng.IntN(len(pop))]
			if aspirant.Fitness.Better(&best.Fitness) {
				best = aspirant
			}
		}
		chosen[i] = best
	}
	return chosen
}

// ReplaceInfinite swaps every individual with an infinite objective for a
// Replacement pick among the finite ones before delegating to Selector. The
// caller's slice is not modified. When no individual is finite the
// population is passed through untouched.
type ReplaceInfinite struct {
	Selector
	Replacement Selector
}

func (r ReplaceInfinite) Select(pop []*genome.Individual, k int, rng *rand.Rand) []*genome.Individual {
	var finite []*genome.Individual
	for _, ind := range pop {
		if !hasInfinite(ind) {
			finite = append(finite, ind)
		}
	}
	if len(finite) == 0 || len(finite) == len(pop) {
		return r.Selector.Select(pop, k, rng)
	}

	patched := make([]*genome.Individual, len(pop))
	for i, ind := range pop {
		if hasInfinite(ind) {
			patched[i] = r.Replacement.Select(finite, 1, rng)[0]
		} else {
			patched[i] = ind
		}
	}
	return r.Selector.Select(patched, k, rng)
}

func hasInfinite(ind *genome.Individual) bool {
	for _, v := range ind.Fitness.Values {
		if math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
