// internal/store/memory/references.go
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
)

type ReferenceStore struct {
	kind   models.ReferenceKind
	mu     sync.RWMutex
	nextID int
	items  []models.Reference
}

func NewReferenceStore(kind models.ReferenceKind) *ReferenceStore {
	return &ReferenceStore{kind: kind, nextID: 1}
}

func (s *ReferenceStore) Kind() models.ReferenceKind { return s.kind }

func (s *ReferenceStore) List(_ context.Context) ([]models.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Reference{}, s.items...), nil
}

func (s *ReferenceStore) Get(_ context.Context, id string) (models.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Reference{}, apperr.NotFound("%s %s not found", s.kind.Label(), id)
	}
	return s.items[i], nil
}

func (s *ReferenceStore) Create(_ context.Context, ref models.Reference) (models.Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.items = append(s.items, ref)
	return ref, nil
}

func (s *ReferenceStore) Update(_ context.Context, id string, patch models.ReferencePatch, now time.Time) (models.Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Reference{}, apperr.NotFound("%s %s not found", s.kind.Label(), id)
	}
	patch.Apply(&s.items[i])
	s.items[i].UpdatedAt = now
	return s.items[i], nil
}

func (s *ReferenceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return apperr.NotFound("%s %s not found", s.kind.Label(), id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *ReferenceStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.nextID = 1
}

func (s *ReferenceStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
