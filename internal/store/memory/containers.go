// internal/store/memory/containers.go
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
)

// ContainerStore keeps containers in insertion order behind one lock, which
// also serializes exits on the same container number.
type ContainerStore struct {
	mu     sync.RWMutex
	nextID int
	items  []models.Container
}

func NewContainerStore() *ContainerStore {
	return &ContainerStore{nextID: 1}
}

func (s *ContainerStore) List(_ context.Context, filter store.ContainerFilter) (store.ContainerPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := store.Paginate(s.items, filter)
	page.Containers = cloneContainers(page.Containers)
	return page, nil
}

func (s *ContainerStore) All(_ context.Context) ([]models.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContainers(s.items), nil
}

func (s *ContainerStore) Get(_ context.Context, id string) (models.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Container{}, apperr.NotFound("container %s not found", id)
	}
	return cloneContainer(s.items[i]), nil
}

func (s *ContainerStore) FindByNumber(_ context.Context, number string) (models.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.byNumber(number)
	if i < 0 {
		return models.Container{}, apperr.NotFound("container %s not found", number)
	}
	return cloneContainer(s.items[i]), nil
}

func (s *ContainerStore) Insert(_ context.Context, c models.Container) (models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.byNumber(c.ContainerNumber); i >= 0 && s.items[i].Status.Present() {
		return models.Container{}, apperr.Conflict("container %s is already in the yard", c.ContainerNumber)
	}

	c.ID = strconv.Itoa(s.nextID)
	s.nextID++
	if c.Status.Present() {
		c.ActiveNumber = c.ContainerNumber
	}
	s.items = append(s.items, cloneContainer(c))
	return c, nil
}

func (s *ContainerStore) Update(_ context.Context, id string, patch models.ContainerPatch, now time.Time) (models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Container{}, apperr.NotFound("container %s not found", id)
	}
	patch.Apply(&s.items[i])
	s.items[i].UpdatedAt = now
	return cloneContainer(s.items[i]), nil
}

func (s *ContainerStore) Exit(_ context.Context, number string, exit models.ExitUpdate, now time.Time) (models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.byNumber(number)
	if i < 0 {
		return models.Container{}, apperr.NotFound("container %s not found", number)
	}
	c := &s.items[i]
	if c.Status != models.StatusInPark {
		return models.Container{}, apperr.InvalidState("container %s is not in the park (status %s)", number, c.Status)
	}
	if exit.RecordID != "" && c.ID != exit.RecordID {
		return models.Container{}, apperr.InvalidState("container %s record %s is no longer in the park", number, exit.RecordID)
	}
	if exit.Source == models.SourceClient && c.Source != models.SourceClient {
		return models.Container{}, apperr.InvalidState("container %s was not brought in by a client", number)
	}
	exit.Apply(c, now)
	return cloneContainer(*c), nil
}

func (s *ContainerStore) AddPhoto(_ context.Context, id string, photo models.MediaPointer, now time.Time) (models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Container{}, apperr.NotFound("container %s not found", id)
	}
	s.items[i].Photos = append(s.items[i].Photos, photo)
	s.items[i].UpdatedAt = now
	return cloneContainer(s.items[i]), nil
}

func (s *ContainerStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return apperr.NotFound("container %s not found", id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Reset drops every container and restarts the id sequence.
func (s *ContainerStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.nextID = 1
}

func (s *ContainerStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// byNumber prefers the present record, then the latest one.
func (s *ContainerStore) byNumber(number string) int {
	latest := -1
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].ContainerNumber != number {
			continue
		}
		if s.items[i].Status.Present() {
			return i
		}
		if latest < 0 {
			latest = i
		}
	}
	return latest
}

func cloneContainer(c models.Container) models.Container {
	if c.ExitDate != nil {
		d := *c.ExitDate
		c.ExitDate = &d
	}
	if c.Photos != nil {
		c.Photos = append([]models.MediaPointer(nil), c.Photos...)
	}
	return c
}

func cloneContainers(in []models.Container) []models.Container {
	out := make([]models.Container, len(in))
	for i, c := range in {
		out[i] = cloneContainer(c)
	}
	return out
}
