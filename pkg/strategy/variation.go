package strategy

import (
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// VarAnd clones the selected individuals, then mates consecutive pairs with
// probability cxpb and mutates each offspring with probability mutpb. Every
// offspring touched by an operator has its fitness invalidated. One uniform
// draw is made per pair and per individual regardless of the probabilities,
// so a zero probability leaves the offspring identical to their parents.
func VarAnd(selected []*genome.Individual, cx Crossover, mut Mutator, cxpb, mutpb float64, rng *rand.Rand) []*genome.Individual {
	offspring := make([]*genome.Individual, len(selected))
	for i, ind := range selected {
		offspring[i] = ind.Clone()
	}

	for i := 1; i < len(offspring); i += 2 {
		if rng.Float64() < cxpb {
			a, b := offspring[i-1], offspring[i]
			a.Genome, b.Genome = cx.Mate(a.Genome, b.Genome, rng)
			a.Fitness.Invalidate()
			b.Fitness.Invalidate()
		}
	}

	for _, ind := range offspring {
		if rng.Float64() < mutpb {
			ind.Genome = mut.Mutate(ind.Genome, rng)
			ind.Fitness.Invalidate()
		}
	}
	return offspring
}
