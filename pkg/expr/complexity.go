package expr

func (v *VarNode) NodeCount() int   { return 1 }
func (c *ConstNode) NodeCount() int { return 1 }
func (u *UnaryNode) NodeCount() int { return 1 + u.Child.NodeCount() }
func (b *BinaryNode) NodeCount() int {
	return 1 + b.Left.NodeCount() + b.Right.NodeCount()
}

func (v *VarNode) Depth() int   { return 1 }
func (c *ConstNode) Depth() int { return 1 }
func (u *UnaryNode) Depth() int { return 1 + u.Child.Depth() }
func (b *BinaryNode) Depth() int {
	ld := b.Left.Depth()
	rd := b.Right.Depth()
	if ld > rd {
		return 1 + ld
	}
	return 1 + rd
}

// Walk visits every node in pre-order.
func Walk(node ExprNode, fn func(ExprNode)) {
	fn(node)
	switch n := node.(type) {
	case *UnaryNode:
		Walk(n.Child, fn)
	case *BinaryNode:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	}
}

// ContainsVar reports whether the expression tree contains the variable x.
func ContainsVar(node ExprNode) bool {
	switch n := node.(type) {
	case *VarNode:
		return true
	case *UnaryNode:
		return ContainsVar(n.Child)
	case *BinaryNode:
		return ContainsVar(n.Left) || ContainsVar(n.Right)
	default:
		return false
	}
}
