package model

import (
	"fmt"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/stats"
)

// NewIndividualRecord captures an individual for persistence.
func NewIndividualRecord(ind *genome.Individual) IndividualRecord {
	rec := IndividualRecord{
		Kind:  KindDirect,
		Tree:  ind.Genome.Tree().String(),
		Valid: ind.Fitness.Valid,
	}
	if ind.Fitness.Valid {
		rec.Fitness = Floats(ind.Fitness.Values)
	}
	if g, ok := ind.Genome.(*genome.Gaussian); ok {
		rec.Kind = KindGaussian
		rec.A, rec.B, rec.C = Float(g.A), Float(g.B), Float(g.C)
	}
	return rec
}

// NewIndividualRecords captures a slice of individuals.
func NewIndividualRecords(inds []*genome.Individual) []IndividualRecord {
	out := make([]IndividualRecord, len(inds))
	for i, ind := range inds {
		out[i] = NewIndividualRecord(ind)
	}
	return out
}

// Individual rebuilds the individual. base is required for gaussian records.
func (r IndividualRecord) Individual(f *genome.Factory, base expr.ExprNode) (*genome.Individual, error) {
	tree, err := expr.Parse(r.Tree)
	if err != nil {
		return nil, err
	}

	var g genome.Genome
	switch r.Kind {
	case KindDirect, "":
		g = genome.NewDirect(tree)
	case KindGaussian:
		if base == nil {
			return nil, fmt.Errorf("gaussian record %q needs a base tree", r.Tree)
		}
		g, err = genome.NewGaussian(float64(r.A), float64(r.B), float64(r.C), tree, base)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown genome kind %q", r.Kind)
	}

	ind := f.New(g)
	if r.Valid {
		if len(r.Fitness) != f.Objectives() {
			return nil, fmt.Errorf("record %q has %d fitness values, want %d", r.Tree, len(r.Fitness), f.Objectives())
		}
		ind.Fitness.Set(Float64s(r.Fitness))
	}
	return ind, nil
}

// Individuals rebuilds a slice of individuals.
func Individuals(recs []IndividualRecord, f *genome.Factory, base expr.ExprNode) ([]*genome.Individual, error) {
	out := make([]*genome.Individual, len(recs))
	for i, r := range recs {
		ind, err := r.Individual(f, base)
		if err != nil {
			return nil, fmt.Errorf("individual %d: %w", i, err)
		}
		out[i] = ind
	}
	return out, nil
}

// NewLogRecords converts a logbook for persistence.
func NewLogRecords(l stats.Logbook) []LogRecord {
	out := make([]LogRecord, len(l))
	for i, r := range l {
		fields := make(map[string]SummaryRecord, len(r.Fields))
		for k, s := range r.Fields {
			fields[k] = SummaryRecord{Avg: Float(s.Avg), Std: Float(s.Std), Min: Float(s.Min), Max: Float(s.Max)}
		}
		out[i] = LogRecord{Gen: r.Gen, NEvals: r.NEvals, Fields: fields}
	}
	return out
}

// Logbook converts persisted rows back.
func Logbook(recs []LogRecord) stats.Logbook {
	out := make(stats.Logbook, len(recs))
	for i, r := range recs {
		fields := make(map[string]stats.Summary, len(r.Fields))
		for k, s := range r.Fields {
			fields[k] = stats.Summary{Avg: float64(s.Avg), Std: float64(s.Std), Min: float64(s.Min), Max: float64(s.Max)}
		}
		out[i] = stats.Record{Gen: r.Gen, NEvals: r.NEvals, Fields: fields}
	}
	return out
}
