package fitness

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// DefaultIntegralNodes is the Gauss-Legendre order used per sub-interval.
const DefaultIntegralNodes = 64

// Integral scores a candidate by the area between it and the target,
// the integral of |f(x) - target(x)| over [Lower, Upper]. The integration
// range is split at every break point so the kinks of a piecewise target sit
// on sub-interval boundaries. The same area is reported for each objective
// name, which lets it stand in for a multi-objective evaluator.
type Integral struct {
	Lower, Upper float64
	Target       func(float64) float64
	Nodes        int
	names        []string
	bounds       []float64
}

// NewIntegral validates the bounds and precomputes the sub-intervals.
func NewIntegral(lower, upper float64, target func(float64) float64, breaks []float64, names ...string) (*Integral, error) {
	if !(upper > lower) {
		return nil, fmt.Errorf("integration bounds [%v, %v] are empty", lower, upper)
	}
	if len(names) == 0 {
		names = []string{"integral"}
	}
	bounds := []float64{lower, upper}
	for _, b := range breaks {
		if b > lower && b < upper {
			bounds = append(bounds, b)
		}
	}
	sort.Float64s(bounds)
	return &Integral{
		Lower:  lower,
		Upper:  upper,
		Target: target,
		Nodes:  DefaultIntegralNodes,
		names:  names,
		bounds: dedupe(bounds),
	}, nil
}

// NewPiecewiseIntegral integrates against the piecewise benign/malware target,
// breaking at the interval ends, and reports the area under both objective
// names of the piecewise evaluator.
func NewPiecewiseIntegral(lower, upper float64, benign, malware func(float64) float64, iv Interval) (*Integral, error) {
	return NewIntegral(lower, upper, PiecewiseTarget(benign, malware, iv),
		[]float64{iv.Start, iv.Stop}, "benign", "malware")
}

// Area integrates |f - Target| over the configured bounds.
func (in *Integral) Area(f func(float64) float64) float64 {
	diff := func(x float64) float64 {
		return math.Abs(f(x) - in.Target(x))
	}
	total := 0.0
	for i := 0; i+1 < len(in.bounds); i++ {
		total += quad.Fixed(diff, in.bounds[i], in.bounds[i+1], in.Nodes, nil, 0)
	}
	return sanitize(total)
}

func (in *Integral) Evaluate(ind *genome.Individual) []float64 {
	area := in.Area(ind.Genome.Compile())
	out := make([]float64, len(in.names))
	for i := range out {
		out[i] = area
	}
	return out
}

func (in *Integral) Objectives() []string {
	return append([]string(nil), in.names...)
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
