package expr

import (
	"fmt"
	"strconv"
)

var unaryOpNames = map[UnaryOp]string{
	OpNeg: "neg",
	OpCos: "cos",
	OpSin: "sin",
}

var binaryOpNames = map[BinaryOp]string{
	OpAdd: "add",
	OpSub: "sub",
	OpMul: "mul",
	OpDiv: "div",
	OpPow: "pow",
}

// Name returns the primitive name used in the canonical string form.
func (op UnaryOp) Name() string { return unaryOpNames[op] }

// Name returns the primitive name used in the canonical string form.
func (op BinaryOp) Name() string { return binaryOpNames[op] }

// String methods produce the canonical prefix form accepted by Parse.

func (v *VarNode) String() string {
	return "x"
}

func (c *ConstNode) String() string {
	return strconv.FormatFloat(c.Val, 'g', -1, 64)
}

func (u *UnaryNode) String() string {
	return fmt.Sprintf("%s(%s)", unaryOpNames[u.Op], u.Child.String())
}

func (b *BinaryNode) String() string {
	return fmt.Sprintf("%s(%s, %s)", binaryOpNames[b.Op], b.Left.String(), b.Right.String())
}

// LaTeX methods

func (v *VarNode) LaTeX() string {
	return "x"
}

func (c *ConstNode) LaTeX() string {
	return strconv.FormatFloat(c.Val, 'g', -1, 64)
}

func (u *UnaryNode) LaTeX() string {
	child := u.Child.LaTeX()
	switch u.Op {
	case OpNeg:
		return fmt.Sprintf("-{%s}", child)
	case OpSin:
		return fmt.Sprintf("\\sin{(%s)}", child)
	case OpCos:
		return fmt.Sprintf("\\cos{(%s)}", child)
	default:
		return child
	}
}

func (b *BinaryNode) LaTeX() string {
	left := b.Left.LaTeX()
	right := b.Right.LaTeX()
	switch b.Op {
	case OpAdd:
		return fmt.Sprintf("{%s} + {%s}", left, right)
	case OpSub:
		return fmt.Sprintf("{%s} - {%s}", left, right)
	case OpMul:
		return fmt.Sprintf("{%s} \\cdot {%s}", left, right)
	case OpDiv:
		return fmt.Sprintf("\\frac{%s}{%s}", left, right)
	case OpPow:
		return fmt.Sprintf("{%s}^{%s}", left, right)
	default:
		return ""
	}
}
