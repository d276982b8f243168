package expr

import "math"

// DivByZeroFallback is the value protected division returns for a zero divisor.
const DivByZeroFallback = 1.0

// ProtectedDiv returns left/right, or DivByZeroFallback when right is zero.
func ProtectedDiv(left, right float64) float64 {
	if right == 0 {
		return DivByZeroFallback
	}
	return left / right
}

// ProtectedPow returns base^exponent. A zero base yields 0 for every exponent,
// and any result that is not a finite real (negative base with a fractional
// exponent, overflow) also yields 0.
func ProtectedPow(base, exponent float64) float64 {
	if base == 0 {
		return 0
	}
	r := math.Pow(base, exponent)
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0
	}
	return r
}

// EvalF64 for VarNode returns x.
func (v *VarNode) EvalF64(x float64) float64 {
	return x
}

// EvalF64 for ConstNode returns the constant value.
func (c *ConstNode) EvalF64(x float64) float64 {
	return c.Val
}

// EvalF64 for UnaryNode dispatches on op.
func (u *UnaryNode) EvalF64(x float64) float64 {
	child := u.Child.EvalF64(x)

	switch u.Op {
	case OpNeg:
		return -child
	case OpCos:
		return math.Cos(child)
	case OpSin:
		return math.Sin(child)
	default:
		return math.NaN()
	}
}

// EvalF64 for BinaryNode dispatches on op.
func (b *BinaryNode) EvalF64(x float64) float64 {
	left := b.Left.EvalF64(x)
	right := b.Right.EvalF64(x)

	switch b.Op {
	case OpAdd:
		return left + right
	case OpSub:
		return left - right
	case OpMul:
		return left * right
	case OpDiv:
		return ProtectedDiv(left, right)
	case OpPow:
		return ProtectedPow(left, right)
	default:
		return math.NaN()
	}
}

// Compile turns a tree into a callable function of x. The tree is cloned so
// later mutation of node does not change the compiled function.
func Compile(node ExprNode) func(float64) float64 {
	tree := node.Clone()
	return tree.EvalF64
}
