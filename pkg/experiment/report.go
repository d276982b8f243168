package experiment

import (
	"fmt"

	"github.com/wildfunctions/equation_evolution/pkg/engine"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/model"
)

// Reports rebuilds the report of every finished phase of run, creation
// first.
func (e *Experiment) Reports(run *model.RunRecord) ([]engine.Report, error) {
	var out []engine.Report
	for _, p := range []struct {
		name string
		rec  *model.PhaseRecord
	}{{PhaseCreation, run.Creation}, {PhaseRemoval, run.Removal}} {
		if p.rec == nil {
			continue
		}
		factory, err := genome.NewFactory(model.Float64s(p.rec.Weights))
		if err != nil {
			return nil, fmt.Errorf("%s weights: %w", p.name, err)
		}
		archived, err := model.Individuals(p.rec.HallOfFame, factory, e.benign)
		if err != nil {
			return nil, fmt.Errorf("%s hall of fame: %w", p.name, err)
		}
		out = append(out, engine.NewPhaseReport(p.name, p.rec, archived))
	}
	return out, nil
}
