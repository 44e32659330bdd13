package store

import (
	"context"

	"certserve/internal/certificate/models"
)

// Store persists issuance records. Implementations index by generated id and
// by the human-meaningful certificateId.
type Store interface {
	Create(ctx context.Context, cert *models.Certificate) error
	Update(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	FindByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error)
	// FindBySubjectCourse backs the dedup guard: the (subject, course) pair is
	// the natural idempotency key for event-driven issuance.
	FindBySubjectCourse(ctx context.Context, studentID, courseID string) (*models.Certificate, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Certificate, error)
}
