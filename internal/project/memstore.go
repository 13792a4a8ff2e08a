package project

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps scenes in process memory. It is used when no
// database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	scenes map[string]Record
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scenes: make(map[string]Record),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenes[rec.ID]; ok {
		return nil, ErrConflict
	}
	now := s.now()
	rec.Version = 1
	rec.CreatedAt, rec.UpdatedAt = now, now
	rec.Document = slices.Clone(rec.Document)
	s.scenes[rec.ID] = rec
	return &rec, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.scenes[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Document = slices.Clone(rec.Document)
	return &rec, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.scenes))
	for _, rec := range s.scenes {
		rec.Document = nil
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b Record) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return records, nil
}

func (s *MemoryStore) Update(_ context.Context, rec Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.scenes[rec.ID]
	if !ok {
		return nil, ErrNotFound
	}
	cur.Name = rec.Name
	cur.Width, cur.Height = rec.Width, rec.Height
	cur.Document = slices.Clone(rec.Document)
	cur.Version++
	cur.UpdatedAt = s.now()
	s.scenes[rec.ID] = cur
	return &cur, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenes[id]; !ok {
		return ErrNotFound
	}
	delete(s.scenes, id)
	return nil
}
