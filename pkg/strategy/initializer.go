package strategy

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/pool"
)

// Random builds direct genomes from ramped half-and-half trees.
type Random struct {
	Pool      pool.Pool
	MinHeight int
	MaxHeight int
}

func (r Random) Initialize(n int, rng *rand.Rand) []genome.Genome {
	out := make([]genome.Genome, n)
	for i := range out {
		out[i] = genome.NewDirect(pool.GenHalfAndHalf(r.Pool, rng, r.MinHeight, r.MaxHeight))
	}
	return out
}

// SeedMix starts each individual, with equal probability, from a random tree,
// a copy of the benign seed or a copy of the malware seed.
type SeedMix struct {
	Random  Random
	Benign  expr.ExprNode
	Malware expr.ExprNode
}

func (s SeedMix) Initialize(n int, rng *rand.Rand) []genome.Genome {
	out := make([]genome.Genome, n)
	for i := range out {
		switch rng.IntN(3) {
		case 0:
			out[i] = s.Random.Initialize(1, rng)[0]
		case 1:
			out[i] = genome.NewDirect(s.Benign.Clone())
		default:
			out[i] = genome.NewDirect(s.Malware.Clone())
		}
	}
	return out
}

// FromIndividual seeds a population with copies of one genome. The first
// copy is kept verbatim; every other copy is mutated once.
type FromIndividual struct {
	Source  genome.Genome
	Mutator Mutator
}

func (f FromIndividual) Initialize(n int, rng *rand.Rand) []genome.Genome {
	out := make([]genome.Genome, n)
	for i := range out {
		g := f.Source.Clone()
		if i > 0 {
			g = f.Mutator.Mutate(g, rng)
		}
		out[i] = g
	}
	return out
}

// ParamRange bounds the integer initial values of the envelope parameters.
type ParamRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max" validate:"gtefield=Min"`
}

// DefaultParamRange is [-3, 3].
func DefaultParamRange() ParamRange {
	return ParamRange{Min: -3, Max: 3}
}

// ErrZeroWidthRange is returned when the only value available for C is zero.
var ErrZeroWidthRange = errors.New("gaussian parameter range leaves only zero for C")

// GaussianInit wraps the trees of an inner initializer in Gaussian genomes
// over a shared base tree. A, B and C are drawn uniformly from the integers
// in Range; C never takes the value zero.
type GaussianInit struct {
	Inner  Initializer
	Base   expr.ExprNode
	Range  ParamRange
	widths []float64
}

// NewGaussianInit validates the range and returns the initializer.
func NewGaussianInit(inner Initializer, base expr.ExprNode, r ParamRange) (*GaussianInit, error) {
	if r.Max < r.Min {
		return nil, fmt.Errorf("gaussian parameter range [%d, %d] is empty", r.Min, r.Max)
	}
	var widths []float64
	for v := r.Min; v <= r.Max; v++ {
		if v != 0 {
			widths = append(widths, float64(v))
		}
	}
	if len(widths) == 0 {
		return nil, ErrZeroWidthRange
	}
	return &GaussianInit{Inner: inner, Base: base, Range: r, widths: widths}, nil
}

func (g *GaussianInit) Initialize(n int, rng *rand.Rand) []genome.Genome {
	trees := g.Inner.Initialize(n, rng)
	span := g.Range.Max - g.Range.Min + 1
	out := make([]genome.Genome, n)
	for i, t := range trees {
		out[i] = &genome.Gaussian{
			A:    float64(g.Range.Min + rng.IntN(span)),
			B:    float64(g.Range.Min + rng.IntN(span)),
			C:    g.widths[rng.IntN(len(g.widths))],
			Root: t.Tree(),
			Base: g.Base,
		}
	}
	return out
}
