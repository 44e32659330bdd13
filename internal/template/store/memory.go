package store

import (
	"context"
	"sort"
	"sync"

	"certserve/internal/template/models"
	"certserve/pkg/sentinel"
)

// InMemory keeps the initial implementation lightweight and testable. It
// intentionally favors clarity over performance.
type InMemory struct {
	mu        sync.RWMutex
	templates map[string]*models.Template
}

func NewInMemory() *InMemory {
	return &InMemory{templates: make(map[string]*models.Template)}
}

func (s *InMemory) Create(_ context.Context, tpl *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[tpl.ID]; exists {
		return sentinel.ErrConflict
	}
	s.templates[tpl.ID] = clone(tpl)
	return nil
}

func (s *InMemory) Update(_ context.Context, tpl *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[tpl.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.templates[tpl.ID] = clone(tpl)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[id]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.templates, id)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tpl, ok := s.templates[id]; ok {
		return clone(tpl), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindDefault(_ context.Context) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tpl := range s.templates {
		if tpl.IsDefault {
			return clone(tpl), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		if filter.IsActive != nil && tpl.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, clone(tpl))
	}
	// Newest first, matching the Postgres ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) ClearDefault(_ context.Context, exceptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tpl := range s.templates {
		if tpl.IsDefault && tpl.ID != exceptID {
			tpl.IsDefault = false
		}
	}
	return nil
}

func clone(tpl *models.Template) *models.Template {
	cp := *tpl
	cp.Fields = append([]models.Field(nil), tpl.Fields...)
	return &cp
}
