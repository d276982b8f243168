package strategy

import (
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// GaussianCrossover crosses the trees like OnePoint and blends the envelope
// parameters: each child draws A, B and C uniformly between the parents'
// values. A C that lands exactly on zero falls back to that child's own
// parent value. Genomes without an envelope only get the tree crossover.
type GaussianCrossover struct{}

func (GaussianCrossover) Mate(a, b genome.Genome, rng *rand.Rand) (genome.Genome, genome.Genome) {
	crossoverTrees(a, b, rng)

	ga, okA := a.(*genome.Gaussian)
	gb, okB := b.(*genome.Gaussian)
	if !okA || !okB {
		return a, b
	}

	pa := [3]float64{ga.A, ga.B, ga.C}
	pb := [3]float64{gb.A, gb.B, gb.C}
	ga.A, gb.A = blend(pa[0], pb[0], rng), blend(pa[0], pb[0], rng)
	ga.B, gb.B = blend(pa[1], pb[1], rng), blend(pa[1], pb[1], rng)
	ga.C, gb.C = blend(pa[2], pb[2], rng), blend(pa[2], pb[2], rng)
	if ga.C == 0 {
		ga.C = pa[2]
	}
	if gb.C == 0 {
		gb.C = pb[2]
	}
	return a, b
}

func blend(x, y float64, rng *rand.Rand) float64 {
	return x + rng.Float64()*(y-x)
}

// GaussianMutator applies Uniform to the tree and then, with probability
// one half, shifts one of A, B or C by one in a random direction. C steps
// over zero instead of landing on it.
type GaussianMutator struct {
	Uniform
}

func (m GaussianMutator) Mutate(g genome.Genome, rng *rand.Rand) genome.Genome {
	m.Uniform.Mutate(g, rng)

	gg, ok := g.(*genome.Gaussian)
	if !ok || rng.IntN(2) == 0 {
		return g
	}
	delta := float64(2*rng.IntN(2) - 1)
	switch rng.IntN(3) {
	case 0:
		gg.A += delta
	case 1:
		gg.B += delta
	default:
		gg.C += delta
		if gg.C == 0 {
			gg.C += delta
		}
	}
	return g
}
