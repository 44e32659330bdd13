package events

import (
	"context"
	"log/slog"
	"time"

	"certserve/internal/certificate/models"
	"certserve/internal/platform/metrics"
)

const (
	TopicCertificateGenerated = "certificate-generated"
	TopicCertificateRevoked   = "certificate-revoked"
)

// Publisher is the producing slice of the kafka platform package.
type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, payload any) error
}

// Notifier publishes flattened issuance outcomes downstream. Publishes are
// best-effort at-most-once: failures are logged and swallowed, never surfaced
// to the issuance or revocation operation, and a crash between record commit
// and publish silently drops the notification.
type Notifier struct {
	producer Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewNotifier(producer Publisher, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	return &Notifier{producer: producer, metrics: m, logger: logger}
}

type outcomePayload struct {
	CertificateID string `json:"certificateId"`
	StudentID     string `json:"studentId"`
	StudentName   string `json:"studentName,omitempty"`
	StudentEmail  string `json:"studentEmail,omitempty"`
	CourseID      string `json:"courseId,omitempty"`
	CourseName    string `json:"courseName,omitempty"`
	IssueDate     string `json:"issueDate,omitempty"`
	Status        string `json:"status"`
}

func (n *Notifier) CertificateIssued(ctx context.Context, cert *models.Certificate) {
	n.publish(ctx, TopicCertificateGenerated, cert)
}

func (n *Notifier) CertificateRevoked(ctx context.Context, cert *models.Certificate) {
	n.publish(ctx, TopicCertificateRevoked, cert)
}

func (n *Notifier) publish(ctx context.Context, topic string, cert *models.Certificate) {
	payload := outcomePayload{
		CertificateID: cert.CertificateID,
		StudentID:     cert.StudentID,
		StudentName:   cert.StudentName,
		StudentEmail:  cert.StudentEmail,
		CourseID:      cert.CourseID,
		CourseName:    cert.CourseName,
		IssueDate:     cert.IssueDate.Format(time.RFC3339),
		Status:        string(cert.Status),
	}
	if err := n.producer.PublishJSON(ctx, topic, cert.CertificateID, payload); err != nil {
		n.metrics.IncNotificationFailed()
		n.logger.Error("failed to publish notification",
			"topic", topic,
			"certificate_id", cert.CertificateID,
			"error", err.Error(),
		)
		return
	}
	n.metrics.IncNotificationSent()
}

// PublishCompletionReplay feeds a completion event back onto the inbound topic
// so operators can exercise the event path end to end.
func (n *Notifier) PublishCompletionReplay(ctx context.Context, ev *models.CourseCompletion) error {
	key := ev.CertificateID
	if key == "" {
		key = ev.StudentID + ":" + ev.CourseID
	}
	return n.producer.PublishJSON(ctx, TopicCourseCompleted, key, ev)
}
