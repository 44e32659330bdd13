package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"certserve/internal/template/models"
	"certserve/internal/template/store"
	dErrors "certserve/pkg/domain-errors"
	"certserve/pkg/sentinel"
)

// Service owns template lifecycle and resolution. Default-flag exclusivity is
// a clear-then-set sequence: the window between the two writes is a known race
// (see Resolve callers), accepted to match single-document storage semantics.
type Service struct {
	store   store.Store
	cache   *store.DefaultCache
	logger  *slog.Logger
	fontDir string
}

func New(st store.Store, cache *store.DefaultCache, fontDir string, logger *slog.Logger) *Service {
	return &Service{store: st, cache: cache, logger: logger, fontDir: fontDir}
}

// Create validates and stores a new template. A template created with
// isDefault clears the flag from every other template first.
func (s *Service) Create(ctx context.Context, tpl *models.Template) (*models.Template, error) {
	if strings.TrimSpace(tpl.Name) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "template name is required")
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	if tpl.IsDefault {
		if err := s.store.ClearDefault(ctx, tpl.ID); err != nil {
			return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to clear default flag", err)
		}
	}
	if err := s.store.Create(ctx, tpl); err != nil {
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to create template", err)
	}
	s.cache.Invalidate(ctx)
	return tpl, nil
}

// Update replaces the stored template. Setting isDefault clears the flag from
// every other template first.
func (s *Service) Update(ctx context.Context, id string, tpl *models.Template) (*models.Template, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl.ID = existing.ID
	tpl.CreatedAt = existing.CreatedAt
	tpl.UpdatedAt = time.Now()

	if tpl.IsDefault {
		if err := s.store.ClearDefault(ctx, tpl.ID); err != nil {
			return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to clear default flag", err)
		}
	}
	if err := s.store.Update(ctx, tpl); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to update template", err)
	}
	s.cache.Invalidate(ctx)
	return tpl, nil
}

// Delete removes a template. The default template cannot be deleted; callers
// must promote another template first.
func (s *Service) Delete(ctx context.Context, id string) error {
	tpl, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tpl.IsDefault {
		return dErrors.New(dErrors.CodeBadRequest, "default template cannot be deleted")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return dErrors.Wrap(dErrors.CodePersistence, "failed to delete template", err)
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Template, error) {
	tpl, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to load template", err)
	}
	return tpl, nil
}

// GetDefault returns the template currently flagged as default, via the cache
// when one is configured.
func (s *Service) GetDefault(ctx context.Context) (*models.Template, error) {
	if tpl := s.cache.Get(ctx); tpl != nil {
		return tpl, nil
	}
	tpl, err := s.store.FindDefault(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no default template configured")
		}
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to load default template", err)
	}
	s.cache.Set(ctx, tpl)
	return tpl, nil
}

// Resolve returns the template for an explicit id, falling back to the system
// default when the id is empty.
func (s *Service) Resolve(ctx context.Context, id string) (*models.Template, error) {
	if id != "" {
		return s.GetByID(ctx, id)
	}
	return s.GetDefault(ctx)
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Template, error) {
	templates, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodePersistence, "failed to list templates", err)
	}
	return templates, nil
}

// ListFonts enumerates the font families available to template fields, one per
// .ttf file in the configured font directory.
func (s *Service) ListFonts(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.fontDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read font directory", err)
	}
	var fonts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.EqualFold(filepath.Ext(name), ".ttf") {
			fonts = append(fonts, strings.TrimSuffix(name, filepath.Ext(name)))
		}
	}
	return fonts, nil
}
