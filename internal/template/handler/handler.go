package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certserve/internal/platform/middleware"
	"certserve/internal/template/models"
	"certserve/internal/transport/http/shared"
	dErrors "certserve/pkg/domain-errors"
)

// Service defines the template operations the HTTP boundary needs.
type Service interface {
	Create(ctx context.Context, tpl *models.Template) (*models.Template, error)
	Update(ctx context.Context, id string, tpl *models.Template) (*models.Template, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Template, error)
	GetDefault(ctx context.Context) (*models.Template, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Template, error)
	ListFonts(ctx context.Context) ([]string, error)
}

// Handler exposes template CRUD to the admin-facing collaborator.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
	verboseErrs  bool
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, verboseErrs bool) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator, verboseErrs: verboseErrs}
}

// Register mounts the template routes. Mutations require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/default", h.handleGetDefault)
		r.Get("/fonts", h.handleListFonts)
		r.Get("/{id}", h.handleGetByID)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			r.Post("/", h.handleCreate)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var tpl models.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"), h.verboseErrs)
		return
	}
	created, err := h.service.Create(r.Context(), &tpl)
	if err != nil {
		h.logError(r, "failed to create template", err)
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var tpl models.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"), h.verboseErrs)
		return
	}
	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &tpl)
	if err != nil {
		h.logError(r, "failed to update template", err)
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logError(r, "failed to delete template", err)
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tpl)
}

func (h *Handler) handleGetDefault(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.service.GetDefault(r.Context())
	if err != nil {
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tpl)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var filter models.Filter
	if raw := r.URL.Query().Get("isActive"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	templates, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logError(r, "failed to list templates", err)
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, templates)
}

func (h *Handler) handleListFonts(w http.ResponseWriter, r *http.Request) {
	fonts, err := h.service.ListFonts(r.Context())
	if err != nil {
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fonts)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	)
}
