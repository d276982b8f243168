package strategy

import (
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// Crossover mates two genomes. It may modify its arguments in place and
// returns the two offspring.
type Crossover interface {
	Mate(a, b genome.Genome, rng *rand.Rand) (genome.Genome, genome.Genome)
}

// Mutator mutates a genome. It may modify its argument in place and returns
// the mutant.
type Mutator interface {
	Mutate(g genome.Genome, rng *rand.Rand) genome.Genome
}

// Selector picks k individuals from a population without removing them.
// The returned slice may contain the same individual more than once.
type Selector interface {
	Select(pop []*genome.Individual, k int, rng *rand.Rand) []*genome.Individual
}

// Initializer produces the genomes of a starting population.
type Initializer interface {
	Initialize(n int, rng *rand.Rand) []genome.Genome
}

// collectNodes returns pointers to all node slots in pre-order; index 0 is
// the root slot, local to this call.
func collectNodes(root expr.ExprNode) ([]*expr.ExprNode, *expr.ExprNode) {
	var result []*expr.ExprNode
	collectNodesHelper(&root, &result)
	return result, result[0]
}

func collectNodesHelper(node *expr.ExprNode, result *[]*expr.ExprNode) {
	*result = append(*result, node)
	switch n := (*node).(type) {
	case *expr.UnaryNode:
		collectNodesHelper(&n.Child, result)
	case *expr.BinaryNode:
		collectNodesHelper(&n.Left, result)
		collectNodesHelper(&n.Right, result)
	}
}
