// Package events connects the broker to the issuance pipeline: a consumer for
// course-completed events and a best-effort notifier for outcomes.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"certserve/internal/certificate/models"
	"certserve/internal/platform/kafka"
	"certserve/internal/platform/metrics"
)

// TopicCourseCompleted is the inbound topic driving event-based issuance.
const TopicCourseCompleted = "course-completed"

// IssuanceService is the slice of the certificate service the consumer needs.
type IssuanceService interface {
	ProcessCompletion(ctx context.Context, ev *models.CourseCompletion) (*models.Certificate, error)
}

// CompletionHandler processes course-completed messages. Errors bubble to the
// consumer loop where they are logged and the message is dropped; there is no
// retry and no dead-letter topic.
type CompletionHandler struct {
	service IssuanceService
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewCompletionHandler(service IssuanceService, m *metrics.Metrics, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{service: service, metrics: m, logger: logger}
}

// Handle validates required fields before touching any store, then drives the
// idempotent issuance path.
func (h *CompletionHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	h.metrics.IncEventConsumed()

	ev, err := models.ParseCourseCompletion(msg.Value)
	if err != nil {
		h.metrics.IncEventDropped()
		return fmt.Errorf("parse course-completed event: %w", err)
	}
	if missing := ev.MissingFields(); len(missing) > 0 {
		h.metrics.IncEventDropped()
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	cert, err := h.service.ProcessCompletion(ctx, ev)
	if err != nil {
		h.metrics.IncEventDropped()
		return fmt.Errorf("process course completion: %w", err)
	}

	h.logger.Info("certificate processed",
		"certificate_id", cert.CertificateID,
		"student_id", cert.StudentID,
		"course_id", cert.CourseID,
	)
	return nil
}
