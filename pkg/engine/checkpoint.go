package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/hof"
	"github.com/wildfunctions/equation_evolution/pkg/model"
	"github.com/wildfunctions/equation_evolution/pkg/storage"
)

// ErrCheckpointMismatch is returned when a checkpoint does not fit the
// engine it is resumed into.
var ErrCheckpointMismatch = errors.New("checkpoint does not match engine")

// Snapshot captures the given result as a checkpoint record. It is what the
// engine hands to its Checkpointer, and what Resume accepts.
func (e *Engine) Snapshot(res *Result) model.Checkpoint {
	cp := model.Checkpoint{
		VersionedRecord: storage.Stamp(),
		RunID:           e.runID,
		Phase:           e.phase,
		Generation:      res.GenerationsUsed,
		MaxGenerations:  e.cfg.MaxGenerations,
		Weights:         model.Floats(e.factory.Weights),
		Population:      model.NewIndividualRecords(res.Population),
		HallOfFame:      model.NewIndividualRecords(res.HallOfFame.Items()),
		HallOfFameSize:  res.HallOfFame.Capacity(),
		Logbook:         model.NewLogRecords(res.Logbook),
		RNGState:        res.RNGState,
		CreatedAt:       time.Now().UTC(),
	}
	if e.base != nil {
		cp.Base = e.base.String()
	}
	return cp
}

func (e *Engine) saveCheckpoint(ctx context.Context, st *state) error {
	cp := e.Snapshot(e.result(st, time.Now()))
	if err := e.checkpointer.SaveCheckpoint(ctx, cp); err != nil {
		return err
	}
	e.logger.Debug("checkpoint saved", "phase", e.phase, "run_id", e.runID, "generation", st.gen)
	return nil
}

// Resume restores population, hall of fame, logbook and RNG state from cp
// and continues the run. A run resumed from the checkpoint of generation g
// reproduces exactly the generations a single uninterrupted run would have
// produced after g.
func (e *Engine) Resume(ctx context.Context, cp model.Checkpoint) (*Result, error) {
	if len(cp.Weights) != len(e.factory.Weights) {
		return nil, fmt.Errorf("%w: %d weights, engine has %d", ErrCheckpointMismatch, len(cp.Weights), len(e.factory.Weights))
	}

	base := e.base
	if cp.Base != "" {
		parsed, err := expr.Parse(cp.Base)
		if err != nil {
			return nil, fmt.Errorf("checkpoint base: %w", err)
		}
		base = parsed
	}

	pop, err := model.Individuals(cp.Population, e.factory, base)
	if err != nil {
		return nil, fmt.Errorf("checkpoint population: %w", err)
	}
	archived, err := model.Individuals(cp.HallOfFame, e.factory, base)
	if err != nil {
		return nil, fmt.Errorf("checkpoint hall of fame: %w", err)
	}
	if err := e.pcg.UnmarshalBinary(cp.RNGState); err != nil {
		return nil, fmt.Errorf("checkpoint rng state: %w", err)
	}

	size := cp.HallOfFameSize
	if size < 1 {
		size = e.cfg.HallOfFameSize
	}
	st := &state{
		gen:     cp.Generation,
		pop:     pop,
		hof:     hof.Restore(size, archived),
		logbook: model.Logbook(cp.Logbook),
	}
	e.logger.Info("evolution resumed", "phase", e.phase, "generation", st.gen, "run_id", cp.RunID)
	return e.loop(ctx, st, time.Now())
}
