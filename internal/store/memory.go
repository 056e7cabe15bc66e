package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/utils"
)

// MemoryStore is an in-memory Store for tests and single-process prototypes.
type MemoryStore struct {
	mu        sync.RWMutex
	spaces    map[uuid.UUID]database.Space
	resources map[string]database.Resource
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		spaces:    map[uuid.UUID]database.Space{},
		resources: map[string]database.Resource{},
	}
}

func (s *MemoryStore) CreateSpace(ctx context.Context, sp database.Space) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaces[sp.ID] = sp
	return nil
}

func (s *MemoryStore) GetSpace(ctx context.Context, id uuid.UUID) (database.Space, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.spaces[id]
	if !ok {
		return database.Space{}, ErrNotFound
	}
	return sp, nil
}

func (s *MemoryStore) Get(ctx context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resources[path]
	if !ok {
		return nil, ErrNotFound
	}
	body := make([]byte, len(res.Body))
	copy(body, res.Body)
	return body, nil
}

func (s *MemoryStore) GetResource(ctx context.Context, path string) (database.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resources[path]
	if !ok {
		return database.Resource{}, ErrNotFound
	}
	res.Body = append([]byte(nil), res.Body...)
	return res, nil
}

func (s *MemoryStore) Put(ctx context.Context, spaceID uuid.UUID, path string, body []byte, contentType string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.resources[path]; ok {
		if utils.JSONEqual(existing.Body, body) {
			return false, nil
		}
		existing.Body = append([]byte(nil), body...)
		existing.ContentType = contentType
		existing.UpdatedAt = now
		s.resources[path] = existing
		return true, nil
	}
	s.resources[path] = database.Resource{
		Path:        path,
		SpaceID:     spaceID,
		Body:        append([]byte(nil), body...),
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return true, nil
}

func (s *MemoryStore) ListChildren(ctx context.Context, container string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.resources))
	for p := range s.resources {
		paths = append(paths, p)
	}
	return DirectChildren(container, paths), nil
}

func (s *MemoryStore) ListSpaces(ctx context.Context) ([]database.Space, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]database.Space, 0, len(s.spaces))
	for _, sp := range s.spaces {
		out = append(out, sp)
	}
	return out, nil
}
