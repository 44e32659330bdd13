package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"certserve/internal/certificate/models"
	certStore "certserve/internal/certificate/store"
	"certserve/internal/platform/logger"
	templateModels "certserve/internal/template/models"
	tplStore "certserve/internal/template/store"
	templateService "certserve/internal/template/service"
	dErrors "certserve/pkg/domain-errors"
)

// fakeRenderer writes a marker file so tests can observe artifact lifecycle
// without exercising image encoding.
type fakeRenderer struct {
	fail    bool
	renders int
}

func (r *fakeRenderer) Render(_ context.Context, _ *templateModels.Template, _ map[string]string, outPath string) error {
	r.renders++
	if r.fail {
		return errors.New("draw failed")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte("png"), 0o644)
}

type recordingNotifier struct {
	issued  []string
	revoked []string
}

func (n *recordingNotifier) CertificateIssued(_ context.Context, cert *models.Certificate) {
	n.issued = append(n.issued, cert.CertificateID)
}

func (n *recordingNotifier) CertificateRevoked(_ context.Context, cert *models.Certificate) {
	n.revoked = append(n.revoked, cert.CertificateID)
}

// failingStore wraps the memory store to trip the persistence step.
type failingStore struct {
	certStore.Store
	failCreate bool
}

func (s *failingStore) Create(ctx context.Context, cert *models.Certificate) error {
	if s.failCreate {
		return errors.New("write refused")
	}
	return s.Store.Create(ctx, cert)
}

type IssuanceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *failingStore
	templates *templateService.Service
	renderer  *fakeRenderer
	notifier  *recordingNotifier
	service   *Service
	uploadDir string
	tplID     string
}

func TestIssuanceSuite(t *testing.T) {
	suite.Run(t, new(IssuanceSuite))
}

func (s *IssuanceSuite) SetupTest() {
	s.ctx = context.Background()
	s.uploadDir = s.T().TempDir()
	log := logger.New("development")
	s.store = &failingStore{Store: certStore.NewInMemory()}
	s.templates = templateService.New(tplStore.NewInMemory(), nil, "", log)
	s.renderer = &fakeRenderer{}
	s.notifier = &recordingNotifier{}
	s.service = New(s.store, s.templates, s.renderer, s.notifier, nil, log, s.uploadDir)

	tpl, err := s.templates.Create(s.ctx, &templateModels.Template{
		Name:      "classic",
		IsActive:  true,
		IsDefault: true,
		Fields: []templateModels.Field{
			{Name: "studentName", X: 100, Y: 100, IsChosen: true},
			{Name: "courseName", X: 100, Y: 150, IsChosen: true},
			{Name: "infoCompany", X: 100, Y: 200},
		},
	})
	s.Require().NoError(err)
	s.tplID = tpl.ID
}

func (s *IssuanceSuite) completion() *models.CourseCompletion {
	return &models.CourseCompletion{
		StudentID:   "stu-1",
		StudentName: "Alice",
		CourseID:    "course-1",
		CourseName:  "Math",
		Template:    s.tplID,
		Payload: map[string]string{
			"studentName": "Alice",
			"courseName":  "Math",
			"infoCompany": "Acme",
		},
	}
}

func (s *IssuanceSuite) TestIssue() {
	s.Run("assigns certificateId and injects it into the field map", func() {
		cert, err := s.service.Issue(s.ctx, &models.IssueRequest{
			StudentID:   "stu-9",
			StudentName: "Bob",
			CourseID:    "course-9",
			CourseName:  "History",
		})
		s.Require().NoError(err)
		s.NotEmpty(cert.CertificateID)
		s.Equal(cert.CertificateID, cert.FieldValues["certificateId"])
		s.Equal(models.StatusGenerated, cert.Status)
		s.FileExists(cert.FilePath)
	})

	s.Run("keeps a caller-supplied certificateId", func() {
		cert, err := s.service.Issue(s.ctx, &models.IssueRequest{
			CertificateID: "CERT-12345678-0001",
			StudentID:     "stu-10",
			CourseID:      "course-10",
		})
		s.Require().NoError(err)
		s.Equal("CERT-12345678-0001", cert.CertificateID)
		s.Equal(filepath.Join(s.uploadDir, "CERT-12345678-0001.png"), cert.FilePath)
	})

	s.Run("unknown template id fails with not found", func() {
		_, err := s.service.Issue(s.ctx, &models.IssueRequest{
			TemplateID: "nope",
			StudentID:  "stu-11",
			CourseID:   "course-11",
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *IssuanceSuite) TestEventPathIdempotence() {
	first, err := s.service.ProcessCompletion(s.ctx, s.completion())
	s.Require().NoError(err)
	s.Equal(1, s.renderer.renders)

	second, err := s.service.ProcessCompletion(s.ctx, s.completion())
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(first.CertificateID, second.CertificateID)
	s.Equal(1, s.renderer.renders, "redelivery must not re-render")
	s.Len(s.notifier.issued, 1, "redelivery must not re-notify")

	records, err := s.service.List(s.ctx, models.Filter{StudentID: "stu-1", CourseID: "course-1"})
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *IssuanceSuite) TestSyncPathDoesNotDedup() {
	req := func() *models.IssueRequest {
		return &models.IssueRequest{StudentID: "stu-1", CourseID: "course-1"}
	}
	_, err := s.service.Issue(s.ctx, req())
	s.Require().NoError(err)
	_, err = s.service.Issue(s.ctx, req())
	s.Require().NoError(err)

	records, err := s.service.List(s.ctx, models.Filter{StudentID: "stu-1"})
	s.Require().NoError(err)
	s.Len(records, 2)
}

func (s *IssuanceSuite) TestActiveFieldPolicy() {
	cert, err := s.service.ProcessCompletion(s.ctx, s.completion())
	s.Require().NoError(err)
	s.Equal("Alice", cert.FieldValues["studentName"])
	s.Equal("Math", cert.FieldValues["courseName"])
	s.Equal("", cert.FieldValues["infoCompany"], "unchosen fields resolve empty on the event path")

	direct, err := s.service.Issue(s.ctx, &models.IssueRequest{
		StudentID: "stu-2",
		CourseID:  "course-2",
		Extra:     map[string]string{"infoCompany": "Acme"},
	})
	s.Require().NoError(err)
	s.Equal("Acme", direct.FieldValues["infoCompany"], "the direct path resolves all declared fields")
}

func (s *IssuanceSuite) TestNameDerivedFromEmail() {
	cert, err := s.service.Issue(s.ctx, &models.IssueRequest{
		StudentID:    "stu-3",
		StudentEmail: "jane.doe@example.com",
		CourseID:     "course-3",
	})
	s.Require().NoError(err)
	s.Equal("Jane Doe", cert.StudentName)
	s.Equal("Jane Doe", cert.FieldValues["studentName"])

	named, err := s.service.Issue(s.ctx, &models.IssueRequest{
		StudentID:    "stu-4",
		StudentName:  "Alice",
		StudentEmail: "jane.doe@example.com",
		CourseID:     "course-4",
	})
	s.Require().NoError(err)
	s.Equal("Alice", named.StudentName, "an explicit name is never overridden")
}

func (s *IssuanceSuite) TestFailureCleanup() {
	s.Run("persistence failure removes the artifact", func() {
		s.store.failCreate = true
		defer func() { s.store.failCreate = false }()

		_, err := s.service.Issue(s.ctx, &models.IssueRequest{
			CertificateID: "CERT-11111111-0001",
			StudentID:     "stu-3",
			CourseID:      "course-3",
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodePersistence))
		s.NoFileExists(filepath.Join(s.uploadDir, "CERT-11111111-0001.png"))
		s.Empty(s.notifier.issued)
	})

	s.Run("render failure surfaces a render error and leaves no file", func() {
		s.renderer.fail = true
		defer func() { s.renderer.fail = false }()

		_, err := s.service.Issue(s.ctx, &models.IssueRequest{
			CertificateID: "CERT-22222222-0002",
			StudentID:     "stu-4",
			CourseID:      "course-4",
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeRenderFailed))
		s.NoFileExists(filepath.Join(s.uploadDir, "CERT-22222222-0002.png"))
	})
}

func (s *IssuanceSuite) TestRevoke() {
	cert, err := s.service.ProcessCompletion(s.ctx, s.completion())
	s.Require().NoError(err)

	revoked, err := s.service.Revoke(s.ctx, cert.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, revoked.Status)
	s.Len(s.notifier.revoked, 1)

	reloaded, err := s.service.GetByID(s.ctx, cert.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, reloaded.Status)
	s.FileExists(reloaded.FilePath, "revocation keeps the artifact")

	s.Run("unknown id fails with not found", func() {
		_, err := s.service.Revoke(s.ctx, "missing")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *IssuanceSuite) TestOpenArtifact() {
	cert, err := s.service.ProcessCompletion(s.ctx, s.completion())
	s.Require().NoError(err)

	got, f, err := s.service.OpenArtifact(s.ctx, cert.ID)
	s.Require().NoError(err)
	defer f.Close()
	s.Equal(cert.CertificateID, got.CertificateID)

	s.Run("missing file maps to not found", func() {
		s.Require().NoError(os.Remove(cert.FilePath))
		_, _, err := s.service.OpenArtifact(s.ctx, cert.ID)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}
