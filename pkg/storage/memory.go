package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wildfunctions/equation_evolution/pkg/model"
)

// MemoryStore keeps encoded records in maps. Records go through the codec so
// callers never share slices with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	checkpoints map[string][]byte
	runs        map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.checkpoints = make(map[string][]byte)
	s.runs = make(map[string][]byte)
	return nil
}

// SaveCheckpoint overwrites the run/phase slot with the encoded snapshot.
func (s *MemoryStore) SaveCheckpoint(_ context.Context, cp model.Checkpoint) error {
	payload, err := EncodeCheckpoint(cp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	s.checkpoints[checkpointKey(cp.RunID, cp.Phase)] = payload
	return nil
}

func (s *MemoryStore) GetCheckpoint(_ context.Context, runID, phase string) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return model.Checkpoint{}, false, ErrNotInitialized
	}

	payload, ok := s.checkpoints[checkpointKey(runID, phase)]
	if !ok {
		return model.Checkpoint{}, false, nil
	}
	cp, err := DecodeCheckpoint(payload)
	if err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("decode checkpoint %s/%s: %w", runID, phase, err)
	}
	return cp, true, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	s.runs[run.ID] = payload
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return model.RunRecord{}, false, ErrNotInitialized
	}

	payload, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

// ListRuns summarizes the stored runs in the same order as the persistent
// backends.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	out := make([]model.RunSummary, 0, len(s.runs))
	for id, payload := range s.runs {
		run, err := DecodeRun(payload)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		out = append(out, run.Summary())
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// sortSummaries orders runs oldest first, ties by id.
func sortSummaries(runs []model.RunSummary) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.Before(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}
