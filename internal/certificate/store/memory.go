package store

import (
	"context"
	"sort"
	"sync"

	"certserve/internal/certificate/models"
	"certserve/pkg/sentinel"
)

// InMemory mirrors the Postgres store for tests and local runs. It keeps the
// original check-then-write semantics: no uniqueness is enforced on the
// (subject, course) pair, only on ids.
type InMemory struct {
	mu    sync.RWMutex
	certs map[string]*models.Certificate
}

func NewInMemory() *InMemory {
	return &InMemory{certs: make(map[string]*models.Certificate)}
}

func (s *InMemory) Create(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.certs[cert.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.certs {
		if existing.CertificateID == cert.CertificateID {
			return sentinel.ErrConflict
		}
	}
	s.certs[cert.ID] = clone(cert)
	return nil
}

func (s *InMemory) Update(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.certs[cert.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.certs[cert.ID] = clone(cert)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cert, ok := s.certs[id]; ok {
		return clone(cert), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByCertificateID(_ context.Context, certificateID string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cert := range s.certs {
		if cert.CertificateID == certificateID {
			return clone(cert), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindBySubjectCourse(_ context.Context, studentID, courseID string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cert := range s.certs {
		if cert.StudentID == studentID && cert.CourseID == courseID {
			return clone(cert), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Certificate, 0, len(s.certs))
	for _, cert := range s.certs {
		if filter.StudentID != "" && cert.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && cert.CourseID != filter.CourseID {
			continue
		}
		if filter.Status != "" && cert.Status != filter.Status {
			continue
		}
		out = append(out, clone(cert))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func clone(cert *models.Certificate) *models.Certificate {
	cp := *cert
	if cert.FieldValues != nil {
		cp.FieldValues = make(map[string]string, len(cert.FieldValues))
		for k, v := range cert.FieldValues {
			cp.FieldValues[k] = v
		}
	}
	return &cp
}
