package repository

import (
	"sync"

	"kvstore/internal/domain"
	"kvstore/internal/platform/index"
	"kvstore/internal/platform/storage"

	"go.uber.org/zap"
)

// LogIndexRepository pairs the durable log with the in-memory index. Every
// call runs under one mutex so network adapters see the same one-request-at-
// a-time behaviour as the command loop.
type LogIndexRepository struct {
	mu     sync.Mutex
	log    *storage.Log
	index  *index.Index
	logger *zap.SugaredLogger
}

type Stats struct {
	Size     int
	Capacity int
	LogPath  string
}

// NewLogIndexRepository creates the log if needed and rebuilds the index by
// replaying it.
func NewLogIndexRepository(log *storage.Log, initialCapacity int, logger *zap.SugaredLogger) (*LogIndexRepository, error) {
	idx, err := index.New(initialCapacity)
	if err != nil {
		return nil, err
	}
	if err := log.EnsureExists(); err != nil {
		logger.Errorw("Failed to create data file", "path", log.Path(), "error", err)
		return nil, err
	}
	entries, err := log.Replay()
	if err != nil {
		logger.Errorw("Failed to replay data file", "path", log.Path(), "error", err)
		return nil, err
	}
	for _, e := range entries {
		idx.Put(e.Key(), e.Value())
	}
	logger.Infow("Replayed data file", "path", log.Path(), "records", len(entries), "keys", idx.Len())

	return &LogIndexRepository{
		log:    log,
		index:  idx,
		logger: logger,
	}, nil
}

// Save appends the entry to the log and only then updates the index.
func (r *LogIndexRepository) Save(e domain.Entry) (domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.log.Append(e.Key(), e.Value()); err != nil {
		r.logger.Errorw("Failed to persist entry", "key", e.Key(), "error", err)
		return domain.Entry{}, err
	}
	r.index.Put(e.Key(), e.Value())
	r.logger.Debugw("Persisted entry", "key", e.Key())
	return e, nil
}

func (r *LogIndexRepository) Get(key string) (domain.Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, found := r.index.Get(key)
	if !found {
		return domain.Entry{}, false, nil
	}
	return domain.NewEntry(key, value), true, nil
}

// All returns a snapshot of every entry in index slot order.
func (r *LogIndexRepository) All() []domain.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]domain.Entry, 0, r.index.Len())
	r.index.Range(func(key, value string) bool {
		entries = append(entries, domain.NewEntry(key, value))
		return true
	})
	return entries
}

func (r *LogIndexRepository) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{
		Size:     r.index.Len(),
		Capacity: r.index.Cap(),
		LogPath:  r.log.Path(),
	}
}
