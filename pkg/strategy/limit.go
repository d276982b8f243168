package strategy

import (
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// StaticLimit guards a crossover against bloat: any offspring taller than
// MaxHeight is replaced by a copy of one of the untouched parents, chosen at
// random.
type StaticLimit struct {
	Crossover
	MaxHeight int
}

func (s StaticLimit) Mate(a, b genome.Genome, rng *rand.Rand) (genome.Genome, genome.Genome) {
	keep := [2]genome.Genome{a.Clone(), b.Clone()}
	c1, c2 := s.Crossover.Mate(a, b, rng)
	if c1.Height() > s.MaxHeight {
		c1 = keep[rng.IntN(2)].Clone()
	}
	if c2.Height() > s.MaxHeight {
		c2 = keep[rng.IntN(2)].Clone()
	}
	return c1, c2
}

// StaticLimitMutator is the mutation counterpart of StaticLimit; an oversized
// mutant is replaced by a copy of its original.
type StaticLimitMutator struct {
	Mutator
	MaxHeight int
}

func (s StaticLimitMutator) Mutate(g genome.Genome, rng *rand.Rand) genome.Genome {
	keep := g.Clone()
	m := s.Mutator.Mutate(g, rng)
	if m.Height() > s.MaxHeight {
		return keep
	}
	return m
}
