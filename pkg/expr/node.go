package expr

// ExprNode is the interface for all expression tree nodes.
type ExprNode interface {
	EvalF64(x float64) float64
	String() string
	LaTeX() string
	Clone() ExprNode
	NodeCount() int
	Depth() int
}

// UnaryOp identifies a unary operation.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpCos
	OpSin
)

// BinaryOp identifies a binary operation.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv // protected
	OpPow // protected
)

// VarNode represents the free variable x.
type VarNode struct{}

// ConstNode represents a constant baked into the tree.
type ConstNode struct {
	Val float64
}

// UnaryNode applies a unary operation to a child expression.
type UnaryNode struct {
	Op    UnaryOp
	Child ExprNode
}

// BinaryNode applies a binary operation to two child expressions.
type BinaryNode struct {
	Op          BinaryOp
	Left, Right ExprNode
}

// Height returns the number of edges on the longest root-to-leaf path.
// A single leaf has height 0.
func Height(node ExprNode) int {
	return node.Depth() - 1
}
