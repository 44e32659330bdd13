package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"certserve/internal/platform/logger"
	"certserve/internal/platform/middleware"
	"certserve/internal/template/service"
	"certserve/internal/template/store"
)

type allowAllValidator struct{}

func (allowAllValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	return &middleware.JWTClaims{UserID: "admin-1", Role: "admin"}, nil
}

type denyAllValidator struct{}

func (denyAllValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	return nil, errors.New("bad token")
}

type TemplateHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestTemplateHandlerSuite(t *testing.T) {
	suite.Run(t, new(TemplateHandlerSuite))
}

func (s *TemplateHandlerSuite) SetupTest() {
	log := logger.New("test")
	svc := service.New(store.NewInMemory(), store.NewDefaultCache(nil, log), s.T().TempDir(), log)
	s.router = chi.NewRouter()
	New(svc, log, allowAllValidator{}, true).Register(s.router)
}

func (s *TemplateHandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *TemplateHandlerSuite) create(body map[string]any) map[string]any {
	rec := s.do(http.MethodPost, "/api/templates", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func (s *TemplateHandlerSuite) TestCreateAndGet() {
	created := s.create(map[string]any{
		"name":      "classic",
		"isDefault": true,
		"fields": []map[string]any{
			{"name": "name", "x": 100, "y": 100, "fontSize": 28, "isChoose": true},
		},
	})
	id := created["id"].(string)
	s.NotEmpty(id)

	rec := s.do(http.MethodGet, "/api/templates/"+id, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/templates/default", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "classic")
}

func (s *TemplateHandlerSuite) TestValidationErrors() {
	rec := s.do(http.MethodPost, "/api/templates", map[string]any{"description": "nameless"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/templates/unknown", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *TemplateHandlerSuite) TestDefaultDeletionRejected() {
	created := s.create(map[string]any{"name": "classic", "isDefault": true})
	id := created["id"].(string)

	rec := s.do(http.MethodDelete, "/api/templates/"+id, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	other := s.create(map[string]any{"name": "plain"})
	rec = s.do(http.MethodDelete, "/api/templates/"+other["id"].(string), nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *TemplateHandlerSuite) TestMutationsRequireAuth() {
	log := logger.New("test")
	svc := service.New(store.NewInMemory(), store.NewDefaultCache(nil, log), s.T().TempDir(), log)
	router := chi.NewRouter()
	New(svc, log, denyAllValidator{}, true).Register(router)

	req := httptest.NewRequest(http.MethodPost, "/api/templates", bytes.NewBufferString(`{"name":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code, "reads stay public")
}

func (s *TemplateHandlerSuite) TestListFonts() {
	rec := s.do(http.MethodGet, "/api/templates/fonts", nil)
	s.Equal(http.StatusOK, rec.Code)
}
