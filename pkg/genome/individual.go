package genome

import (
	"errors"
	"fmt"
)

// Individual is a genome together with its (possibly stale) fitness.
type Individual struct {
	Genome  Genome
	Fitness Fitness
}

// Clone deep-copies the genome and the fitness.
func (ind *Individual) Clone() *Individual {
	return &Individual{
		Genome:  ind.Genome.Clone(),
		Fitness: ind.Fitness.Clone(),
	}
}

func (ind *Individual) String() string {
	return ind.Genome.String()
}

// Factory creates individuals for one objective layout. The number of
// objectives is len(Weights).
type Factory struct {
	Weights []float64
}

// ErrNoObjectives is returned when a factory is asked for zero weights.
var ErrNoObjectives = errors.New("at least one objective weight is required")

// NewFactory validates the weights and returns a factory.
func NewFactory(weights []float64) (*Factory, error) {
	if len(weights) == 0 {
		return nil, ErrNoObjectives
	}
	for i, w := range weights {
		if w == 0 {
			return nil, fmt.Errorf("weight %d is zero", i)
		}
	}
	return &Factory{Weights: append([]float64(nil), weights...)}, nil
}

// New wraps a genome in an individual with invalid fitness.
func (f *Factory) New(g Genome) *Individual {
	return &Individual{
		Genome:  g,
		Fitness: Fitness{Weights: f.Weights},
	}
}

// Objectives returns the number of fitness objectives.
func (f *Factory) Objectives() int {
	return len(f.Weights)
}
