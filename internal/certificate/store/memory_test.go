package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"certserve/internal/certificate/models"
	"certserve/pkg/sentinel"
)

type CertificateStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestCertificateStoreSuite(t *testing.T) {
	suite.Run(t, new(CertificateStoreSuite))
}

func (s *CertificateStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *CertificateStoreSuite) newCertificate(certificateID, studentID, courseID string) *models.Certificate {
	now := time.Now()
	return &models.Certificate{
		ID:            uuid.NewString(),
		CertificateID: certificateID,
		TemplateID:    "tpl-1",
		StudentID:     studentID,
		CourseID:      courseID,
		IssueDate:     now,
		FilePath:      "uploads/" + certificateID + ".png",
		FieldValues:   map[string]string{"certificateId": certificateID},
		Status:        models.StatusGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *CertificateStoreSuite) TestCreateAndLookups() {
	cert := s.newCertificate("CERT-00000001-0001", "stu-1", "course-1")
	s.Require().NoError(s.store.Create(s.ctx, cert))

	s.Run("finds by store id", func() {
		found, err := s.store.FindByID(s.ctx, cert.ID)
		s.Require().NoError(err)
		s.Equal(cert.CertificateID, found.CertificateID)
	})

	s.Run("finds by certificate id", func() {
		found, err := s.store.FindByCertificateID(s.ctx, cert.CertificateID)
		s.Require().NoError(err)
		s.Equal(cert.ID, found.ID)
	})

	s.Run("finds by subject and course", func() {
		found, err := s.store.FindBySubjectCourse(s.ctx, "stu-1", "course-1")
		s.Require().NoError(err)
		s.Equal(cert.ID, found.ID)
	})

	s.Run("unknown lookups return ErrNotFound", func() {
		_, err := s.store.FindByID(s.ctx, "missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindBySubjectCourse(s.ctx, "stu-1", "other-course")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate certificate id conflicts", func() {
		dup := s.newCertificate("CERT-00000001-0001", "stu-2", "course-2")
		s.Require().ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)
	})
}

func (s *CertificateStoreSuite) TestUpdate() {
	cert := s.newCertificate("CERT-00000002-0002", "stu-1", "course-1")
	s.Require().NoError(s.store.Create(s.ctx, cert))

	cert.Status = models.StatusRevoked
	s.Require().NoError(s.store.Update(s.ctx, cert))

	found, err := s.store.FindByID(s.ctx, cert.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, found.Status)

	s.Run("updating an unknown record fails", func() {
		ghost := s.newCertificate("CERT-00000003-0003", "x", "y")
		s.Require().ErrorIs(s.store.Update(s.ctx, ghost), sentinel.ErrNotFound)
	})
}

func (s *CertificateStoreSuite) TestListFilters() {
	s.Require().NoError(s.store.Create(s.ctx, s.newCertificate("CERT-1", "stu-1", "course-1")))
	s.Require().NoError(s.store.Create(s.ctx, s.newCertificate("CERT-2", "stu-1", "course-2")))
	revoked := s.newCertificate("CERT-3", "stu-2", "course-1")
	revoked.Status = models.StatusRevoked
	s.Require().NoError(s.store.Create(s.ctx, revoked))

	all, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	byStudent, err := s.store.List(s.ctx, models.Filter{StudentID: "stu-1"})
	s.Require().NoError(err)
	s.Len(byStudent, 2)

	byStatus, err := s.store.List(s.ctx, models.Filter{Status: models.StatusRevoked})
	s.Require().NoError(err)
	s.Len(byStatus, 1)
	s.Equal("CERT-3", byStatus[0].CertificateID)

	combined, err := s.store.List(s.ctx, models.Filter{StudentID: "stu-2", CourseID: "course-1"})
	s.Require().NoError(err)
	s.Len(combined, 1)
}
