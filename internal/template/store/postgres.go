package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"certserve/internal/template/models"
	"certserve/pkg/sentinel"
)

// Postgres persists templates with the field layout as JSONB. One row per
// template; the default flag lives on the row, and the partial unique index
// below makes two concurrent defaults a write conflict instead of a silent
// double-default.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Schema is applied by the operator or a migration tool; kept here so the
// store and its table definition stay in one place.
const Schema = `
CREATE TABLE IF NOT EXISTS templates (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    background  TEXT NOT NULL DEFAULT '',
    font_family TEXT NOT NULL DEFAULT '',
    fields      JSONB NOT NULL DEFAULT '[]',
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    is_default  BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_templates_default
    ON templates ((TRUE)) WHERE is_default;
`

func (s *Postgres) Create(ctx context.Context, tpl *models.Template) error {
	fields, err := json.Marshal(tpl.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO templates (id, name, description, background, font_family, fields, is_active, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tpl.ID, tpl.Name, tpl.Description, tpl.Background, tpl.FontFamily,
		fields, tpl.IsActive, tpl.IsDefault, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("insert template: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, tpl *models.Template) error {
	fields, err := json.Marshal(tpl.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE templates
		SET name = $2, description = $3, background = $4, font_family = $5,
		    fields = $6, is_active = $7, is_default = $8, updated_at = $9
		WHERE id = $1`,
		tpl.ID, tpl.Name, tpl.Description, tpl.Background, tpl.FontFamily,
		fields, tpl.IsActive, tpl.IsDefault, tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Template, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *Postgres) FindDefault(ctx context.Context) (*models.Template, error) {
	return s.findOne(ctx, `WHERE is_default LIMIT 1`)
}

func (s *Postgres) findOne(ctx context.Context, where string, args ...any) (*models.Template, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, description, background, font_family, fields, is_active, is_default, created_at, updated_at
		FROM templates `+where, args...)
	tpl, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query template: %w", err)
	}
	return tpl, nil
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Template, error) {
	query := `
		SELECT id, name, description, background, font_family, fields, is_active, is_default, created_at, updated_at
		FROM templates`
	var args []any
	if filter.IsActive != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *filter.IsActive)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*models.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (s *Postgres) ClearDefault(ctx context.Context, exceptID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE templates SET is_default = FALSE WHERE is_default AND id <> $1`, exceptID)
	if err != nil {
		return fmt.Errorf("clear default flag: %w", err)
	}
	return nil
}

func scanTemplate(row pgx.Row) (*models.Template, error) {
	var tpl models.Template
	var fields []byte
	err := row.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &tpl.Background, &tpl.FontFamily,
		&fields, &tpl.IsActive, &tpl.IsDefault, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &tpl.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return &tpl, nil
}
