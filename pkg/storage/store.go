package storage

import (
	"context"
	"errors"

	"github.com/wildfunctions/equation_evolution/pkg/model"
)

// ErrNotInitialized is returned by every operation before Init succeeds.
var ErrNotInitialized = errors.New("store is not initialized")

// Store persists engine checkpoints and finished experiment runs. Only the
// latest checkpoint of each (run, phase) pair is kept.
type Store interface {
	Init(ctx context.Context) error
	SaveCheckpoint(ctx context.Context, cp model.Checkpoint) error
	GetCheckpoint(ctx context.Context, runID, phase string) (model.Checkpoint, bool, error)
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunSummary, error)
	Close() error
}

// checkpointKey addresses the single checkpoint slot of one phase of a run.
// Saving to the same slot replaces the previous snapshot.
func checkpointKey(runID, phase string) string {
	return runID + "/" + phase
}
