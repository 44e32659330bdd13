package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"certserve/internal/certificate/models"
	"certserve/internal/certificate/store"
	"certserve/internal/platform/metrics"
	templateModels "certserve/internal/template/models"
	dErrors "certserve/pkg/domain-errors"
	"certserve/pkg/email"
	"certserve/pkg/sentinel"
)

// TemplateResolver supplies the template a certificate is rendered against.
type TemplateResolver interface {
	Resolve(ctx context.Context, id string) (*templateModels.Template, error)
}

// Renderer produces the raster artifact at outPath. Any failure must leave no
// usable partial file behind; the service removes the path on error anyway.
type Renderer interface {
	Render(ctx context.Context, tpl *templateModels.Template, values map[string]string, outPath string) error
}

// Notifier publishes issuance outcomes downstream. Implementations are
// best-effort: they log and swallow publish failures.
type Notifier interface {
	CertificateIssued(ctx context.Context, cert *models.Certificate)
	CertificateRevoked(ctx context.Context, cert *models.Certificate)
}

// Service orchestrates the issuance pipeline: id assignment, template and
// field resolution, rendering, persistence, and notification. The artifact is
// written before the record so a failure never leaves a record pointing at a
// missing file; a failure after the render removes the orphaned file instead.
type Service struct {
	store     store.Store
	templates TemplateResolver
	renderer  Renderer
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
	uploadDir string
}

func New(st store.Store, templates TemplateResolver, renderer Renderer, notifier Notifier,
	m *metrics.Metrics, logger *slog.Logger, uploadDir string) *Service {
	return &Service{
		store:     st,
		templates: templates,
		renderer:  renderer,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		uploadDir: uploadDir,
	}
}

// Issue creates a certificate for the synchronous request path. Every call
// attempts a new record; deduplication is the event path's concern.
func (s *Service) Issue(ctx context.Context, req *models.IssueRequest) (*models.Certificate, error) {
	return s.issue(ctx, req, false)
}

// ProcessCompletion drives the event path. It is idempotent per (subject,
// course): a redelivered event returns the existing record unchanged, with no
// re-render and no duplicate side effects.
func (s *Service) ProcessCompletion(ctx context.Context, ev *models.CourseCompletion) (*models.Certificate, error) {
	existing, err := s.store.FindBySubjectCourse(ctx, ev.StudentID, ev.CourseID)
	if err == nil {
		s.logger.Info("certificate already issued, skipping",
			"student_id", ev.StudentID,
			"course_id", ev.CourseID,
			"certificate_id", existing.CertificateID,
		)
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(dErrors.CodePersistence, "dedup lookup failed", err)
	}

	now := time.Now()
	req := &models.IssueRequest{
		CertificateID: ev.CertificateID,
		Template:      ev.Template,
		StudentID:     ev.StudentID,
		StudentName:   ev.StudentName,
		StudentEmail:  ev.StudentEmail,
		CourseID:      ev.CourseID,
		CourseName:    ev.CourseName,
		IssueDate:     &now,
		FieldValues:   ev.FieldValues,
		Extra:         ev.Payload,
	}

	cert, err := s.issue(ctx, req, true)
	if err != nil && dErrors.Is(err, dErrors.CodePersistence) {
		// A concurrent issuance for the same pair may have won the race; the
		// storage-level unique index reports it as a conflict.
		if winner, findErr := s.store.FindBySubjectCourse(ctx, ev.StudentID, ev.CourseID); findErr == nil {
			return winner, nil
		}
	}
	return cert, err
}

func (s *Service) issue(ctx context.Context, req *models.IssueRequest, activeOnly bool) (*models.Certificate, error) {
	certificateID := req.CertificateID
	if certificateID == "" {
		certificateID = NewCertificateID()
	}
	filePath := ArtifactPath(s.uploadDir, certificateID)

	tpl, err := s.templates.Resolve(ctx, req.TemplateRef())
	if err != nil {
		s.metrics.IncIssueFailure("template")
		return nil, err
	}

	if req.StudentName == "" && req.StudentEmail != "" {
		req.StudentName = email.DisplayName(req.StudentEmail)
	}

	values := ResolveFields(tpl, req.PayloadValues(), req.FieldValues, certificateID, activeOnly)

	start := time.Now()
	if err := s.renderer.Render(ctx, tpl, values, filePath); err != nil {
		s.metrics.IncIssueFailure("render")
		s.removeArtifact(filePath)
		return nil, dErrors.Wrap(dErrors.CodeRenderFailed, "failed to render certificate", err)
	}
	s.metrics.ObserveRenderDuration(time.Since(start).Seconds())

	now := time.Now()
	issueDate := now
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	cert := &models.Certificate{
		ID:            uuid.NewString(),
		CertificateID: certificateID,
		TemplateID:    tpl.ID,
		StudentID:     req.StudentID,
		StudentName:   req.StudentName,
		StudentEmail:  req.StudentEmail,
		CourseID:      req.CourseID,
		CourseName:    req.CourseName,
		IssueDate:     issueDate,
		ExpiryDate:    req.ExpiryDate,
		FilePath:      filePath,
		FieldValues:   values,
		Status:        models.StatusGenerated,
		IssuedBy:      req.IssuedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, cert); err != nil {
		s.metrics.IncIssueFailure("persist")
		s.removeArtifact(filePath)
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to persist certificate", err)
	}

	s.metrics.IncIssued()
	if s.notifier != nil {
		s.notifier.CertificateIssued(ctx, cert)
	}
	return cert, nil
}

// Revoke marks a certificate revoked. The artifact stays on disk and remains
// retrievable; verifiers must treat the record status as authoritative.
func (s *Service) Revoke(ctx context.Context, id string) (*models.Certificate, error) {
	cert, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cert.Status = models.StatusRevoked
	cert.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, cert); err != nil {
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to revoke certificate", err)
	}
	if s.notifier != nil {
		s.notifier.CertificateRevoked(ctx, cert)
	}
	return cert, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Certificate, error) {
	cert, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to load certificate", err)
	}
	return cert, nil
}

func (s *Service) GetByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	cert, err := s.store.FindByCertificateID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to load certificate", err)
	}
	return cert, nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Certificate, error) {
	certs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to list certificates", err)
	}
	return certs, nil
}

// OpenArtifact returns a readable stream of the rendered artifact, or NotFound
// when the file is missing on disk.
func (s *Service) OpenArtifact(ctx context.Context, id string) (*models.Certificate, *os.File, error) {
	cert, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(cert.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "certificate artifact not found")
		}
		return nil, nil, dErrors.Wrap(dErrors.CodeInternal, "failed to open artifact", err)
	}
	return cert, f, nil
}

func (s *Service) removeArtifact(filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove orphaned artifact",
			"path", filePath,
			"error", err.Error(),
		)
	}
}
