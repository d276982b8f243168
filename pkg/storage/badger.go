package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/wildfunctions/equation_evolution/pkg/model"
)

const (
	checkpointPrefix = "checkpoint/"
	runPrefix        = "run/"
)

// BadgerStore keeps JSON payloads in an embedded BadgerDB. An empty path
// opens an in-memory database.
type BadgerStore struct {
	path   string
	logger *slog.Logger

	mu sync.RWMutex
	db *badger.DB
}

func NewBadgerStore(path string, logger *slog.Logger) *BadgerStore {
	return &BadgerStore{path: path, logger: logger}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (s *BadgerStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	var opts badger.Options
	if s.path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(s.path, 0750); err != nil {
			return fmt.Errorf("create database directory %s: %w", s.path, err)
		}
		opts = badger.DefaultOptions(s.path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if s.logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: s.logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open badger database: %w", err)
	}
	s.db = db
	return nil
}

func (s *BadgerStore) SaveCheckpoint(_ context.Context, cp model.Checkpoint) error {
	payload, err := EncodeCheckpoint(cp)
	if err != nil {
		return err
	}
	return s.put(checkpointPrefix+checkpointKey(cp.RunID, cp.Phase), payload)
}

func (s *BadgerStore) GetCheckpoint(_ context.Context, runID, phase string) (model.Checkpoint, bool, error) {
	payload, ok, err := s.get(checkpointPrefix + checkpointKey(runID, phase))
	if err != nil || !ok {
		return model.Checkpoint{}, false, err
	}
	cp, err := DecodeCheckpoint(payload)
	if err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("decode checkpoint %s/%s: %w", runID, phase, err)
	}
	return cp, true, nil
}

func (s *BadgerStore) SaveRun(_ context.Context, run model.RunRecord) error {
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}
	return s.put(runPrefix+run.ID, payload)
}

func (s *BadgerStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	payload, ok, err := s.get(runPrefix + id)
	if err != nil || !ok {
		return model.RunRecord{}, false, err
	}
	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

// ListRuns iterates the run prefix and sorts the summaries oldest first.
func (s *BadgerStore) ListRuns(ctx context.Context) ([]model.RunSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var out []model.RunSummary
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(runPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			payload, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			run, err := DecodeRun(payload)
			if err != nil {
				return fmt.Errorf("decode run %s: %w", item.Key(), err)
			}
			out = append(out, run.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSummaries(out)
	return out, nil
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BadgerStore) put(key string, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), payload)
	})
}

func (s *BadgerStore) get(key string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *BadgerStore) getDB() (*badger.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}
