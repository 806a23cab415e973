package store

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	episodes    map[string][]EpisodeRecord
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.episodes = make(map[string][]EpisodeRecord)
	return nil
}

func (s *MemoryStore) SaveEpisode(_ context.Context, record EpisodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	record.Actions = append([]int{}, record.Actions...)
	s.episodes[record.Experiment] = append(s.episodes[record.Experiment], record)
	return nil
}

func (s *MemoryStore) Episodes(_ context.Context, experiment string) ([]EpisodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := make([]EpisodeRecord, len(s.episodes[experiment]))
	copy(out, s.episodes[experiment])
	return out, nil
}

func (s *MemoryStore) Experiments(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	names := make([]string, 0, len(s.episodes))
	for name := range s.episodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
