package pool

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(42, 0))
}

func TestTrojanPoolTreesAreTotal(t *testing.T) {
	p, err := Get("trojan")
	if err != nil {
		t.Fatal(err)
	}
	rng := testRNG()

	for i := 0; i < 1000; i++ {
		tree := GenHalfAndHalf(p, rng, 1, 4)
		for _, x := range []float64{-2, -0.5, 0, 0.5, 2} {
			if v := tree.EvalF64(x); math.IsNaN(v) {
				t.Fatalf("%s produced NaN at %v", tree, x)
			}
		}
	}
}

func TestGenFullHeight(t *testing.T) {
	p, _ := Get("trojan")
	rng := testRNG()

	for i := 0; i < 200; i++ {
		tree := GenFull(p, rng, 2, 2)
		if h := expr.Height(tree); h != 2 {
			t.Fatalf("GenFull(2,2) produced height %d: %s", h, tree)
		}
	}
}

func TestGenGrowHeightBounds(t *testing.T) {
	p, _ := Get("trojan")
	rng := testRNG()

	for i := 0; i < 500; i++ {
		tree := GenGrow(p, rng, 1, 3)
		h := expr.Height(tree)
		if h < 1 || h > 3 {
			t.Fatalf("GenGrow(1,3) produced height %d: %s", h, tree)
		}
	}
}

func TestGenHalfAndHalfUsesBothShapes(t *testing.T) {
	p, _ := Get("trojan")
	rng := testRNG()

	heights := map[int]int{}
	for i := 0; i < 500; i++ {
		heights[expr.Height(GenHalfAndHalf(p, rng, 1, 2))]++
	}
	if heights[1] == 0 || heights[2] == 0 {
		t.Errorf("expected heights 1 and 2, got %v", heights)
	}
	for h := range heights {
		if h < 1 || h > 2 {
			t.Errorf("height %d outside [1, 2]", h)
		}
	}
}

func TestEphemeralConstantRange(t *testing.T) {
	rng := testRNG()
	seen := map[float64]bool{}
	for i := 0; i < 300; i++ {
		c := EphemeralConstant(rng).(*expr.ConstNode)
		if c.Val != -1 && c.Val != 0 && c.Val != 1 {
			t.Fatalf("constant %v outside {-1, 0, 1}", c.Val)
		}
		seen[c.Val] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all three constants, saw %v", seen)
	}
}

func TestArithmeticPoolOperators(t *testing.T) {
	p, err := Get("arithmetic")
	if err != nil {
		t.Fatal(err)
	}
	rng := testRNG()

	for i := 0; i < 300; i++ {
		tree := GenFull(p, rng, 1, 3)
		expr.Walk(tree, func(n expr.ExprNode) {
			switch v := n.(type) {
			case *expr.UnaryNode:
				if v.Op != expr.OpNeg {
					t.Fatalf("unexpected unary %s in %s", v.Op.Name(), tree)
				}
			case *expr.BinaryNode:
				if v.Op == expr.OpDiv || v.Op == expr.OpPow {
					t.Fatalf("unexpected binary %s in %s", v.Op.Name(), tree)
				}
			}
		})
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	p, _ := Get("trojan")
	a := rand.New(rand.NewPCG(7, 7))
	b := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 50; i++ {
		ta := GenHalfAndHalf(p, a, 1, 3).String()
		tb := GenHalfAndHalf(p, b, 1, 3).String()
		if ta != tb {
			t.Fatalf("same seed diverged: %s vs %s", ta, tb)
		}
	}
}

func TestPoolRegistry(t *testing.T) {
	names := Names()
	if len(names) < 2 {
		t.Errorf("Expected at least 2 registered pools, got %d", len(names))
	}

	for _, name := range names {
		p, err := Get(name)
		if err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("Pool name mismatch: %q vs %q", p.Name(), name)
		}
	}
}

func TestUnknownPool(t *testing.T) {
	_, err := Get("nonexistent")
	if err == nil {
		t.Error("Expected error for unknown pool")
	}
}
