package fitness

import (
	"math"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// Evaluator computes the objective values of an individual. Implementations
// are safe for concurrent use and never modify the individual.
type Evaluator interface {
	Evaluate(ind *genome.Individual) []float64
	// Objectives names each value returned by Evaluate, in order.
	Objectives() []string
}

// sanitize maps NaN and both infinities to +Inf so a broken candidate is
// always the worst under minimization.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.Inf(1)
	}
	return v
}

// region is a fixed set of sample points with precomputed targets.
type region struct {
	xs      []float64
	targets []float64
}

func newRegion(xs []float64, target func(float64) float64) region {
	r := region{xs: xs, targets: make([]float64, len(xs))}
	for i, x := range xs {
		r.targets[i] = target(x)
	}
	return r
}

// mse is the mean squared error of f over the region; 0 for an empty region.
func (r region) mse(f func(float64) float64) float64 {
	if len(r.xs) == 0 {
		return 0
	}
	sum := 0.0
	for i, x := range r.xs {
		d := f(x) - r.targets[i]
		sum += d * d
	}
	return sanitize(sum / float64(len(r.xs)))
}

// Piecewise scores a candidate with two mean squared errors: one over the
// sample points outside the insertion interval against the benign function
// and one over the points inside it against the malware function.
type Piecewise struct {
	outside region
	inside  region
}

// NewPiecewise splits points by the interval and caches both targets.
func NewPiecewise(points []float64, benign, malware func(float64) float64, iv Interval) *Piecewise {
	var in, out []float64
	for _, x := range points {
		if iv.Contains(x) {
			in = append(in, x)
		} else {
			out = append(out, x)
		}
	}
	return &Piecewise{
		outside: newRegion(out, benign),
		inside:  newRegion(in, malware),
	}
}

func (p *Piecewise) Evaluate(ind *genome.Individual) []float64 {
	f := ind.Genome.Compile()
	return []float64{p.outside.mse(f), p.inside.mse(f)}
}

func (p *Piecewise) Objectives() []string {
	return []string{"benign", "malware"}
}

// Single scores a candidate by its mean squared error against one target.
// When SizeReference is set, a second objective is the absolute difference
// between the candidate's tree size and the reference's.
type Single struct {
	all           region
	SizeReference expr.ExprNode
}

// NewSingle caches the target over the sample points.
func NewSingle(points []float64, target func(float64) float64) *Single {
	return &Single{all: newRegion(points, target)}
}

// WithSizeReference enables the size-difference objective.
func (s *Single) WithSizeReference(ref expr.ExprNode) *Single {
	s.SizeReference = ref
	return s
}

func (s *Single) Evaluate(ind *genome.Individual) []float64 {
	errVal := s.all.mse(ind.Genome.Compile())
	if s.SizeReference == nil {
		return []float64{errVal}
	}
	diff := math.Abs(float64(ind.Genome.Size() - s.SizeReference.NodeCount()))
	return []float64{errVal, diff}
}

func (s *Single) Objectives() []string {
	if s.SizeReference == nil {
		return []string{"error"}
	}
	return []string{"error", "size_diff"}
}
