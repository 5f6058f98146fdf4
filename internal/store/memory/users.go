// internal/store/memory/users.go
package memory

import (
	"context"
	"strconv"
	"sync"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
)

type UserStore struct {
	mu     sync.RWMutex
	nextID int
	items  []models.User
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1}
}

func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, len(s.items))
	for i, u := range s.items {
		out[i] = cloneUser(u)
	}
	return out, nil
}

func (s *UserStore) Get(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.items {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return models.User{}, apperr.NotFound("user %s not found", id)
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.items {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return models.User{}, apperr.NotFound("user %s not found", username)
}

func (s *UserStore) Create(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTaken(u.Username, "") {
		return models.User{}, apperr.Conflict("username %s is already taken", u.Username)
	}
	u.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.items = append(s.items, cloneUser(u))
	return u, nil
}

func (s *UserStore) Update(_ context.Context, id string, patch models.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if patch.Username != nil && s.usernameTaken(*patch.Username, id) {
			return models.User{}, apperr.Conflict("username %s is already taken", *patch.Username)
		}
		patch.Apply(&s.items[i])
		return cloneUser(s.items[i]), nil
	}
	return models.User{}, apperr.NotFound("user %s not found", id)
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("user %s not found", id)
}

func (s *UserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.nextID = 1
}

func (s *UserStore) usernameTaken(username, exceptID string) bool {
	for _, u := range s.items {
		if u.Username == username && u.ID != exceptID {
			return true
		}
	}
	return false
}

func cloneUser(u models.User) models.User {
	if u.Permissions != nil {
		u.Permissions = append([]string(nil), u.Permissions...)
	}
	return u
}
