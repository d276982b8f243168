package strategy

import (
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// OnePoint swaps one randomly chosen non-root subtree of each parent.
// A tree with fewer than two nodes has no non-root node, so such a pair is
// returned unchanged.
type OnePoint struct{}

func (OnePoint) Mate(a, b genome.Genome, rng *rand.Rand) (genome.Genome, genome.Genome) {
	crossoverTrees(a, b, rng)
	return a, b
}

func crossoverTrees(a, b genome.Genome, rng *rand.Rand) {
	nodesA, _ := collectNodes(a.Tree())
	nodesB, _ := collectNodes(b.Tree())
	if len(nodesA) < 2 || len(nodesB) < 2 {
		return
	}

	idxA := 1 + rng.IntN(len(nodesA)-1)
	idxB := 1 + rng.IntN(len(nodesB)-1)

	// Both slots live inside parent nodes, so swapping them rewires the trees.
	*nodesA[idxA], *nodesB[idxB] = *nodesB[idxB], *nodesA[idxA]
}
