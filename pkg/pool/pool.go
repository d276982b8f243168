package pool

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
)

// Pool provides random building blocks for constructing expression trees.
type Pool interface {
	Name() string
	RandomLeaf(rng *rand.Rand) expr.ExprNode
	RandomUnary(rng *rand.Rand) expr.UnaryOp
	RandomBinary(rng *rand.Rand) expr.BinaryOp
	// Counts returns how many unary operators, binary operators and
	// terminals the pool offers.
	Counts() (unary, binary, terminals int)
}

var registry = map[string]func() Pool{}

// Register adds a pool constructor to the registry.
func Register(name string, constructor func() Pool) {
	registry[name] = constructor
}

// Get returns a pool by name.
func Get(name string) (Pool, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pool: %s", name)
	}
	return ctor(), nil
}

// Names returns all registered pool names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// EphemeralConstant draws the baked-in constant leaf: an integer in {-1, 0, 1}.
func EphemeralConstant(rng *rand.Rand) expr.ExprNode {
	return &expr.ConstNode{Val: float64(rng.IntN(3) - 1)}
}

// GenFull builds a tree whose leaves all sit at the same height, drawn
// uniformly from [minHeight, maxHeight].
func GenFull(p Pool, rng *rand.Rand, minHeight, maxHeight int) expr.ExprNode {
	height := drawHeight(rng, minHeight, maxHeight)
	return generate(p, rng, 0, height, func(depth int) bool {
		return depth == height
	})
}

// GenGrow builds a tree of mixed branch lengths. Below minHeight every node is
// an operator; past it a node becomes a leaf with the pool's terminal ratio.
func GenGrow(p Pool, rng *rand.Rand, minHeight, maxHeight int) expr.ExprNode {
	height := drawHeight(rng, minHeight, maxHeight)
	ratio := terminalRatio(p)
	return generate(p, rng, 0, height, func(depth int) bool {
		return depth == height || (depth >= minHeight && rng.Float64() < ratio)
	})
}

// GenHalfAndHalf picks GenFull or GenGrow with equal probability.
func GenHalfAndHalf(p Pool, rng *rand.Rand, minHeight, maxHeight int) expr.ExprNode {
	if rng.IntN(2) == 0 {
		return GenGrow(p, rng, minHeight, maxHeight)
	}
	return GenFull(p, rng, minHeight, maxHeight)
}

func drawHeight(rng *rand.Rand, minHeight, maxHeight int) int {
	if minHeight < 0 {
		minHeight = 0
	}
	if maxHeight < minHeight {
		maxHeight = minHeight
	}
	return minHeight + rng.IntN(maxHeight-minHeight+1)
}

func terminalRatio(p Pool) float64 {
	u, b, t := p.Counts()
	return float64(t) / float64(t+u+b)
}

// generate is the shared recursive builder; leaf reports whether the node at
// the given depth must be a terminal.
func generate(p Pool, rng *rand.Rand, depth, height int, leaf func(depth int) bool) expr.ExprNode {
	if leaf(depth) {
		return p.RandomLeaf(rng)
	}
	u, b, _ := p.Counts()
	if rng.IntN(u+b) < u {
		return &expr.UnaryNode{
			Op:    p.RandomUnary(rng),
			Child: generate(p, rng, depth+1, height, leaf),
		}
	}
	op := p.RandomBinary(rng)
	left := generate(p, rng, depth+1, height, leaf)
	right := generate(p, rng, depth+1, height, leaf)
	return &expr.BinaryNode{Op: op, Left: left, Right: right}
}
