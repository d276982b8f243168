package experiment

import (
	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/model"
)

// Compare relates the genome recovered by removal to the original benign
// tree. For Gaussian genomes the structural checks look at the evolved
// perturbation tree only, since the base is the original by construction.
func Compare(original expr.ExprNode, created, recovered genome.Genome) model.Comparison {
	tree := recovered.Tree()
	return model.Comparison{
		OriginalSize:      original.NodeCount(),
		CreationSize:      created.Size(),
		RemovalSize:       recovered.Size(),
		ExactDuplicate:    recovered.String() == original.String(),
		OriginalContained: ContainsSubtree(tree, original),
		SimplifiedRemoval: expr.Simplify(tree.Clone()).String(),
	}
}

// ContainsSubtree reports whether any subtree of tree prints the same as sub.
func ContainsSubtree(tree, sub expr.ExprNode) bool {
	want := sub.String()
	found := false
	expr.Walk(tree, func(n expr.ExprNode) {
		if !found && n.String() == want {
			found = true
		}
	})
	return found
}
