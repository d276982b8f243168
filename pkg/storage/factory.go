package storage

import (
	"fmt"
	"log/slog"
)

// Backend names accepted by NewStore.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// NewStore builds an uninitialized store for the named backend. path is the
// SQLite file or the Badger directory.
func NewStore(kind, path string, logger *slog.Logger) (Store, error) {
	switch kind {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return NewSQLiteStore(path), nil
	case BackendBadger:
		return NewBadgerStore(path, logger), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
