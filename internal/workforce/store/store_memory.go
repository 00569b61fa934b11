package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shiftguard/internal/domain"
	"shiftguard/pkg/platform/sentinel"
)

// In-memory stores keep the initial implementation lightweight and
// testable. They intentionally favor clarity over performance.
type InMemoryTimeEntryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]domain.TimeEntry
}

func NewInMemoryTimeEntryStore() *InMemoryTimeEntryStore {
	return &InMemoryTimeEntryStore{entries: make(map[uuid.UUID]domain.TimeEntry)}
}

func (s *InMemoryTimeEntryStore) Save(_ context.Context, entry domain.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return nil
}

func (s *InMemoryTimeEntryStore) FindByID(_ context.Context, id uuid.UUID) (domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[id]; ok {
		return entry, nil
	}
	return domain.TimeEntry{}, sentinel.ErrNotFound
}

func (s *InMemoryTimeEntryStore) ListByWorker(_ context.Context, workerID uuid.UUID, from, to time.Time) ([]domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TimeEntry
	for _, e := range s.entries {
		if e.WorkerID != workerID {
			continue
		}
		if e.ClockIn.Before(from) || !e.ClockIn.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockIn.Before(out[j].ClockIn) })
	return out, nil
}

func (s *InMemoryTimeEntryStore) FindOpen(_ context.Context, workerID uuid.UUID) (domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.WorkerID == workerID && e.IsOpen() {
			return e, nil
		}
	}
	return domain.TimeEntry{}, sentinel.ErrNotFound
}

type InMemoryBreakStore struct {
	mu     sync.RWMutex
	breaks map[uuid.UUID]domain.BreakEntry
}

func NewInMemoryBreakStore() *InMemoryBreakStore {
	return &InMemoryBreakStore{breaks: make(map[uuid.UUID]domain.BreakEntry)}
}

func (s *InMemoryBreakStore) Save(_ context.Context, b domain.BreakEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breaks[b.ID] = b
	return nil
}

func (s *InMemoryBreakStore) FindByID(_ context.Context, id uuid.UUID) (domain.BreakEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.breaks[id]; ok {
		return b, nil
	}
	return domain.BreakEntry{}, sentinel.ErrNotFound
}

func (s *InMemoryBreakStore) ListByEntry(_ context.Context, entryID uuid.UUID) ([]domain.BreakEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.BreakEntry
	for _, b := range s.breaks {
		if b.TimeEntryID == entryID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BreakStart.Before(out[j].BreakStart) })
	return out, nil
}
