package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"certserve/internal/certificate/models"
	"certserve/pkg/sentinel"
)

// Postgres persists issuance records. The partial unique index on
// (student_id, course_id) turns the dedup race between concurrent issuances
// into a detectable insert conflict instead of a silent duplicate.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const Schema = `
CREATE TABLE IF NOT EXISTS certificates (
    id             TEXT PRIMARY KEY,
    certificate_id TEXT NOT NULL UNIQUE,
    template_id    TEXT NOT NULL,
    student_id     TEXT NOT NULL,
    student_name   TEXT NOT NULL DEFAULT '',
    student_email  TEXT NOT NULL DEFAULT '',
    course_id      TEXT NOT NULL,
    course_name    TEXT NOT NULL DEFAULT '',
    issue_date     TIMESTAMPTZ NOT NULL,
    expiry_date    TIMESTAMPTZ,
    file_path      TEXT NOT NULL,
    field_values   JSONB NOT NULL DEFAULT '{}',
    status         TEXT NOT NULL,
    issued_by      TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_certificates_student ON certificates (student_id);
CREATE INDEX IF NOT EXISTS idx_certificates_course ON certificates (course_id);
CREATE UNIQUE INDEX IF NOT EXISTS uq_certificates_subject_course
    ON certificates (student_id, course_id);
`

const certificateColumns = `id, certificate_id, template_id, student_id, student_name, student_email,
	course_id, course_name, issue_date, expiry_date, file_path, field_values, status, issued_by,
	created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, cert *models.Certificate) error {
	values, err := json.Marshal(cert.FieldValues)
	if err != nil {
		return fmt.Errorf("marshal field values: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO certificates (`+certificateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		cert.ID, cert.CertificateID, cert.TemplateID, cert.StudentID, cert.StudentName,
		cert.StudentEmail, cert.CourseID, cert.CourseName, cert.IssueDate, cert.ExpiryDate,
		cert.FilePath, values, cert.Status, cert.IssuedBy, cert.CreatedAt, cert.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", sentinel.ErrConflict, pgErr.ConstraintName)
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, cert *models.Certificate) error {
	values, err := json.Marshal(cert.FieldValues)
	if err != nil {
		return fmt.Errorf("marshal field values: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE certificates
		SET status = $2, file_path = $3, field_values = $4, expiry_date = $5, updated_at = $6
		WHERE id = $1`,
		cert.ID, cert.Status, cert.FilePath, values, cert.ExpiryDate, cert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *Postgres) FindByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	return s.findOne(ctx, `WHERE certificate_id = $1`, certificateID)
}

func (s *Postgres) FindBySubjectCourse(ctx context.Context, studentID, courseID string) (*models.Certificate, error) {
	return s.findOne(ctx, `WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
}

func (s *Postgres) findOne(ctx context.Context, where string, args ...any) (*models.Certificate, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+certificateColumns+` FROM certificates `+where, args...)
	cert, err := scanCertificate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query certificate: %w", err)
	}
	return cert, nil
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates`
	var clauses []string
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.StudentID != "" {
		add("student_id = $%d", filter.StudentID)
	}
	if filter.CourseID != "" {
		add("course_id = $%d", filter.CourseID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var out []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		out = append(out, cert)
	}
	return out, rows.Err()
}

func scanCertificate(row pgx.Row) (*models.Certificate, error) {
	var cert models.Certificate
	var values []byte
	err := row.Scan(&cert.ID, &cert.CertificateID, &cert.TemplateID, &cert.StudentID,
		&cert.StudentName, &cert.StudentEmail, &cert.CourseID, &cert.CourseName,
		&cert.IssueDate, &cert.ExpiryDate, &cert.FilePath, &values, &cert.Status,
		&cert.IssuedBy, &cert.CreatedAt, &cert.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(values, &cert.FieldValues); err != nil {
		return nil, fmt.Errorf("unmarshal field values: %w", err)
	}
	return &cert, nil
}
