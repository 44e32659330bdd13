package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"certserve/internal/platform/logger"
	"certserve/internal/template/models"
	"certserve/internal/template/store"
	dErrors "certserve/pkg/domain-errors"
)

type TemplateServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
}

func TestTemplateServiceSuite(t *testing.T) {
	suite.Run(t, new(TemplateServiceSuite))
}

func (s *TemplateServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.service = New(store.NewInMemory(), nil, s.T().TempDir(), logger.New("development"))
}

func (s *TemplateServiceSuite) newTemplate(name string, isDefault bool) *models.Template {
	return &models.Template{
		Name:      name,
		IsActive:  true,
		IsDefault: isDefault,
		Fields: []models.Field{
			{Name: "studentName", X: 100, Y: 100, FontSize: 24, IsChosen: true},
		},
	}
}

func (s *TemplateServiceSuite) TestCreate() {
	s.Run("rejects a blank name", func() {
		_, err := s.service.Create(s.ctx, &models.Template{Name: "  "})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("assigns an id and stores the template", func() {
		tpl, err := s.service.Create(s.ctx, s.newTemplate("classic", false))
		s.Require().NoError(err)
		s.NotEmpty(tpl.ID)

		found, err := s.service.GetByID(s.ctx, tpl.ID)
		s.Require().NoError(err)
		s.Equal("classic", found.Name)
	})
}

func (s *TemplateServiceSuite) TestDefaultExclusivity() {
	a, err := s.service.Create(s.ctx, s.newTemplate("A", true))
	s.Require().NoError(err)
	b, err := s.service.Create(s.ctx, s.newTemplate("B", true))
	s.Require().NoError(err)

	current, err := s.service.GetDefault(s.ctx)
	s.Require().NoError(err)
	s.Equal(b.ID, current.ID, "the most recently promoted template is default")

	reloadedA, err := s.service.GetByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.False(reloadedA.IsDefault)

	s.Run("update promotes and demotes in one pass", func() {
		reloadedA.IsDefault = true
		_, err := s.service.Update(s.ctx, a.ID, reloadedA)
		s.Require().NoError(err)

		current, err := s.service.GetDefault(s.ctx)
		s.Require().NoError(err)
		s.Equal(a.ID, current.ID)

		reloadedB, err := s.service.GetByID(s.ctx, b.ID)
		s.Require().NoError(err)
		s.False(reloadedB.IsDefault)
	})
}

func (s *TemplateServiceSuite) TestDeletionGuard() {
	tpl, err := s.service.Create(s.ctx, s.newTemplate("keeper", true))
	s.Require().NoError(err)

	err = s.service.Delete(s.ctx, tpl.ID)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))

	// Still intact.
	found, err := s.service.GetByID(s.ctx, tpl.ID)
	s.Require().NoError(err)
	s.True(found.IsDefault)

	s.Run("non-default templates delete fine", func() {
		other, err := s.service.Create(s.ctx, s.newTemplate("disposable", false))
		s.Require().NoError(err)
		s.Require().NoError(s.service.Delete(s.ctx, other.ID))

		_, err = s.service.GetByID(s.ctx, other.ID)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *TemplateServiceSuite) TestResolve() {
	def, err := s.service.Create(s.ctx, s.newTemplate("fallback", true))
	s.Require().NoError(err)
	named, err := s.service.Create(s.ctx, s.newTemplate("named", false))
	s.Require().NoError(err)

	s.Run("explicit id wins", func() {
		tpl, err := s.service.Resolve(s.ctx, named.ID)
		s.Require().NoError(err)
		s.Equal(named.ID, tpl.ID)
	})

	s.Run("empty id falls back to the default", func() {
		tpl, err := s.service.Resolve(s.ctx, "")
		s.Require().NoError(err)
		s.Equal(def.ID, tpl.ID)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.service.Resolve(s.ctx, "missing")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *TemplateServiceSuite) TestResolveWithoutDefault() {
	_, err := s.service.Resolve(s.ctx, "")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *TemplateServiceSuite) TestListFonts() {
	fonts, err := s.service.ListFonts(s.ctx)
	s.Require().NoError(err)
	s.Empty(fonts)
}
