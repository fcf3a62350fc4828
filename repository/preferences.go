package repository

import (
	"context"
	"fmt"
	"sync"

	"sophie-analyst/config"
)

// MemoryPreferenceStore keeps preferences in process memory. Used in tests and
// when BOOKMARK_STORE=memory.
type MemoryPreferenceStore struct {
	mu     sync.RWMutex
	values map[string]bool
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{values: make(map[string]bool)}
}

func (s *MemoryPreferenceStore) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return def, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return def, nil
}

func (s *MemoryPreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryPreferenceStore) All(ctx context.Context) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryPreferenceStore) Close() error {
	return nil
}

// OpenPreferenceStore opens the store selected by cfg.Driver
func OpenPreferenceStore(ctx context.Context, cfg config.BookmarkConfig) (PreferenceStore, error) {
	switch cfg.Driver {
	case config.BookmarkDriverMemory:
		return NewMemoryPreferenceStore(), nil
	case config.BookmarkDriverSQLite:
		return NewSQLitePreferenceStore(ctx, cfg.Path, cfg.Namespace)
	case config.BookmarkDriverPostgres:
		return NewPostgresPreferenceStore(ctx, cfg.DatabaseURL, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unknown bookmark store driver %q", cfg.Driver)
	}
}
