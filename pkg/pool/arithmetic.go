package pool

import (
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
)

func init() {
	Register("arithmetic", func() Pool { return &ArithmeticPool{} })
}

// ArithmeticPool offers add, sub, mul and neg only. Every tree it builds is a
// polynomial in x, so no protected operator is ever reached.
type ArithmeticPool struct{}

func (p *ArithmeticPool) Name() string { return "arithmetic" }

func (p *ArithmeticPool) RandomLeaf(rng *rand.Rand) expr.ExprNode {
	if rng.IntN(2) == 0 {
		return &expr.VarNode{}
	}
	return EphemeralConstant(rng)
}

func (p *ArithmeticPool) RandomUnary(rng *rand.Rand) expr.UnaryOp {
	return expr.OpNeg
}

var arithmeticBinary = []expr.BinaryOp{
	expr.OpAdd,
	expr.OpSub,
	expr.OpMul,
}

func (p *ArithmeticPool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return arithmeticBinary[rng.IntN(len(arithmeticBinary))]
}

func (p *ArithmeticPool) Counts() (int, int, int) {
	return 1, len(arithmeticBinary), 2
}
