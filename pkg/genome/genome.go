package genome

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
)

// Genome is the evolvable part of an individual. Every genome carries exactly
// one expression tree, which is what the structural operators act on.
type Genome interface {
	Tree() expr.ExprNode
	SetTree(expr.ExprNode)
	Clone() Genome
	String() string
	LaTeX() string
	Height() int
	Size() int
	Compile() func(float64) float64
}

// Direct is a genome that is nothing but its expression tree.
type Direct struct {
	Root expr.ExprNode
}

// NewDirect wraps a tree.
func NewDirect(root expr.ExprNode) *Direct {
	return &Direct{Root: root}
}

func (d *Direct) Tree() expr.ExprNode        { return d.Root }
func (d *Direct) SetTree(root expr.ExprNode) { d.Root = root }
func (d *Direct) String() string             { return d.Root.String() }
func (d *Direct) LaTeX() string              { return d.Root.LaTeX() }
func (d *Direct) Height() int                { return expr.Height(d.Root) }
func (d *Direct) Size() int                  { return d.Root.NodeCount() }

// Clone returns a deep copy of the genome.
func (d *Direct) Clone() Genome {
	return &Direct{Root: d.Root.Clone()}
}

func (d *Direct) Compile() func(float64) float64 {
	return expr.Compile(d.Root)
}

// Gaussian adds a Gaussian-enveloped tree on top of a fixed base function:
//
//	f(x) = base(x) + A * exp(-(x-B)^2 / (2 C^2)) * tree(x)
//
// Base is shared between every genome of a run and is never modified. C is
// never zero.
type Gaussian struct {
	A, B, C float64
	Root    expr.ExprNode
	Base    expr.ExprNode
}

// ErrZeroWidth is returned when a Gaussian envelope would have C == 0.
var ErrZeroWidth = errors.New("gaussian envelope width C must be non-zero")

// NewGaussian builds a Gaussian genome, rejecting a zero width.
func NewGaussian(a, b, c float64, root, base expr.ExprNode) (*Gaussian, error) {
	if c == 0 {
		return nil, ErrZeroWidth
	}
	return &Gaussian{A: a, B: b, C: c, Root: root, Base: base}, nil
}

func (g *Gaussian) Tree() expr.ExprNode        { return g.Root }
func (g *Gaussian) SetTree(root expr.ExprNode) { g.Root = root }
func (g *Gaussian) Height() int                { return expr.Height(g.Root) }
func (g *Gaussian) Size() int                  { return g.Root.NodeCount() }

// Clone deep-copies the evolved tree; the base is shared.
func (g *Gaussian) Clone() Genome {
	return &Gaussian{A: g.A, B: g.B, C: g.C, Root: g.Root.Clone(), Base: g.Base}
}

// Envelope evaluates the Gaussian weight at x.
func (g *Gaussian) Envelope(x float64) float64 {
	d := x - g.B
	return g.A * math.Exp(-(d*d)/(2*g.C*g.C))
}

func (g *Gaussian) Compile() func(float64) float64 {
	base := expr.Compile(g.Base)
	tree := expr.Compile(g.Root)
	a, b, c := g.A, g.B, g.C
	return func(x float64) float64 {
		d := x - b
		return base(x) + a*math.Exp(-(d*d)/(2*c*c))*tree(x)
	}
}

// String identifies the genome; it includes the envelope parameters so two
// genomes with the same tree but different envelopes are distinct.
func (g *Gaussian) String() string {
	return fmt.Sprintf("gaussian(%s, %s, %s, %s)", formatParam(g.A), formatParam(g.B), formatParam(g.C), g.Root.String())
}

func (g *Gaussian) LaTeX() string {
	return fmt.Sprintf("%s + %s e^{-\\frac{(x - %s)^2}{2 \\cdot %s^2}} \\left(%s\\right)",
		g.Base.LaTeX(), formatParam(g.A), formatParam(g.B), formatParam(g.C), g.Root.LaTeX())
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
