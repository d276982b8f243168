package expr

import "math"

// Simplify applies rewrite rules to reduce an expression tree.
// It repeatedly applies rules until no further changes occur. Every rule
// preserves the protected semantics of EvalF64 for finite inputs.
func Simplify(node ExprNode) ExprNode {
	for i := 0; i < 20; i++ { // cap iterations
		next := simplifyOnce(node)
		if next.String() == node.String() {
			return next
		}
		node = next
	}
	return node
}

func simplifyOnce(node ExprNode) ExprNode {
	if !ContainsVar(node) {
		if _, ok := node.(*ConstNode); !ok {
			if v := node.EvalF64(0); !math.IsInf(v, 0) && !math.IsNaN(v) {
				return &ConstNode{Val: v}
			}
		}
	}

	switch n := node.(type) {
	case *VarNode, *ConstNode:
		return node

	case *UnaryNode:
		child := simplifyOnce(n.Child)

		// Double negation: neg(neg(e)) = e
		if n.Op == OpNeg {
			if inner, ok := child.(*UnaryNode); ok && inner.Op == OpNeg {
				return inner.Child
			}
		}

		return &UnaryNode{Op: n.Op, Child: child}

	case *BinaryNode:
		left := simplifyOnce(n.Left)
		right := simplifyOnce(n.Right)

		lc, lok := left.(*ConstNode)
		rc, rok := right.(*ConstNode)

		switch n.Op {
		case OpAdd:
			// e + 0 = e
			if rok && rc.Val == 0 {
				return left
			}
			// 0 + e = e
			if lok && lc.Val == 0 {
				return right
			}
			// e + (-k) = e - k
			if rok && rc.Val < 0 {
				return simplifyOnce(&BinaryNode{Op: OpSub, Left: left, Right: &ConstNode{Val: -rc.Val}})
			}
			// e + neg(f) = e - f
			if ru, ok := right.(*UnaryNode); ok && ru.Op == OpNeg {
				return simplifyOnce(&BinaryNode{Op: OpSub, Left: left, Right: ru.Child})
			}

		case OpSub:
			// e - 0 = e
			if rok && rc.Val == 0 {
				return left
			}
			// 0 - e = -e
			if lok && lc.Val == 0 {
				return simplifyOnce(&UnaryNode{Op: OpNeg, Child: right})
			}
			// e - (-k) = e + k
			if rok && rc.Val < 0 {
				return simplifyOnce(&BinaryNode{Op: OpAdd, Left: left, Right: &ConstNode{Val: -rc.Val}})
			}
			// e - neg(f) = e + f
			if ru, ok := right.(*UnaryNode); ok && ru.Op == OpNeg {
				return simplifyOnce(&BinaryNode{Op: OpAdd, Left: left, Right: ru.Child})
			}
			// e - e = 0 (structural equality)
			if left.String() == right.String() {
				return &ConstNode{Val: 0}
			}

		case OpMul:
			// e * 0 = 0
			if (rok && rc.Val == 0) || (lok && lc.Val == 0) {
				return &ConstNode{Val: 0}
			}
			// e * 1 = e
			if rok && rc.Val == 1 {
				return left
			}
			// 1 * e = e
			if lok && lc.Val == 1 {
				return right
			}
			// e * -1 = -e
			if rok && rc.Val == -1 {
				return simplifyOnce(&UnaryNode{Op: OpNeg, Child: left})
			}
			// -1 * e = -e
			if lok && lc.Val == -1 {
				return simplifyOnce(&UnaryNode{Op: OpNeg, Child: right})
			}

		case OpDiv:
			// e / 1 = e
			if rok && rc.Val == 1 {
				return left
			}
			// e / e = 1, including 0/0 under the division fallback
			if DivByZeroFallback == 1 && left.String() == right.String() {
				return &ConstNode{Val: 1}
			}

		case OpPow:
			// e^1 = e
			if rok && rc.Val == 1 {
				return left
			}
			// 0^e = 0
			if lok && lc.Val == 0 {
				return &ConstNode{Val: 0}
			}
			// 1^e = 1
			if lok && lc.Val == 1 {
				return &ConstNode{Val: 1}
			}
		}

		return &BinaryNode{Op: n.Op, Left: left, Right: right}

	default:
		return node
	}
}
