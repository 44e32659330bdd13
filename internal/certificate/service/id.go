package service

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"
)

const certificateIDPrefix = "CERT"

// NewCertificateID builds an id of the form CERT-{last8 ms}-{0000-9999}.
// Uniqueness is practical, not guaranteed: the timestamp window plus the
// random suffix make collisions unlikely, and the store's unique index on
// certificate_id catches the rest.
func NewCertificateID() string {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(timestamp) > 8 {
		timestamp = timestamp[len(timestamp)-8:]
	}
	return fmt.Sprintf("%s-%s-%04d", certificateIDPrefix, timestamp, rand.Intn(10000))
}

// ArtifactPath derives the artifact location from the certificate id. Same id,
// same path: a retried issuance always targets the same file.
func ArtifactPath(uploadDir, certificateID string) string {
	return filepath.Join(uploadDir, certificateID+".png")
}
