package strategy

import (
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/pool"
)

// Uniform replaces a randomly chosen node, the root included, with a fresh
// full tree whose height is drawn from [MinHeight, MaxHeight].
type Uniform struct {
	Pool      pool.Pool
	MinHeight int
	MaxHeight int
}

func (u Uniform) Mutate(g genome.Genome, rng *rand.Rand) genome.Genome {
	mutateTree(g, u.Pool, u.MinHeight, u.MaxHeight, rng)
	return g
}

func mutateTree(g genome.Genome, p pool.Pool, minHeight, maxHeight int, rng *rand.Rand) {
	nodes, root := collectNodes(g.Tree())
	idx := rng.IntN(len(nodes))
	*nodes[idx] = pool.GenFull(p, rng, minHeight, maxHeight)
	g.SetTree(*root)
}
