package pool

import (
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
)

func init() {
	Register("trojan", func() Pool { return &TrojanPool{} })
}

// TrojanPool is the full primitive set: arithmetic, protected div and pow,
// negation, cos and sin over x and ephemeral constants in {-1, 0, 1}.
type TrojanPool struct{}

func (p *TrojanPool) Name() string { return "trojan" }

func (p *TrojanPool) RandomLeaf(rng *rand.Rand) expr.ExprNode {
	if rng.IntN(2) == 0 {
		return &expr.VarNode{}
	}
	return EphemeralConstant(rng)
}

var trojanUnary = []expr.UnaryOp{
	expr.OpNeg,
	expr.OpCos,
	expr.OpSin,
}

func (p *TrojanPool) RandomUnary(rng *rand.Rand) expr.UnaryOp {
	return trojanUnary[rng.IntN(len(trojanUnary))]
}

var trojanBinary = []expr.BinaryOp{
	expr.OpAdd,
	expr.OpSub,
	expr.OpMul,
	expr.OpDiv,
	expr.OpPow,
}

func (p *TrojanPool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return trojanBinary[rng.IntN(len(trojanBinary))]
}

func (p *TrojanPool) Counts() (int, int, int) {
	return len(trojanUnary), len(trojanBinary), 2
}
