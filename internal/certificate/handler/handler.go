package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"certserve/internal/certificate/models"
	"certserve/internal/platform/middleware"
	"certserve/internal/transport/http/shared"
	dErrors "certserve/pkg/domain-errors"
)

// Service defines the certificate operations the HTTP boundary needs.
type Service interface {
	Issue(ctx context.Context, req *models.IssueRequest) (*models.Certificate, error)
	Revoke(ctx context.Context, id string) (*models.Certificate, error)
	GetByID(ctx context.Context, id string) (*models.Certificate, error)
	GetByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Certificate, error)
	OpenArtifact(ctx context.Context, id string) (*models.Certificate, *os.File, error)
}

// Replayer republishes completion events for test and replay purposes.
type Replayer interface {
	PublishCompletionReplay(ctx context.Context, ev *models.CourseCompletion) error
}

// Handler exposes the synchronous issuance and retrieval boundary.
type Handler struct {
	service      Service
	replayer     Replayer
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
	verboseErrs  bool
}

func New(service Service, replayer Replayer, logger *slog.Logger,
	jwtValidator middleware.JWTValidator, verboseErrs bool) *Handler {
	return &Handler{
		service:      service,
		replayer:     replayer,
		logger:       logger,
		jwtValidator: jwtValidator,
		verboseErrs:  verboseErrs,
	}
}

// Register mounts the certificate routes. Issuance, revocation, and replay
// require authentication; retrieval and verification are public.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/certificates", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/code/{certificateId}", h.handleGetByCertificateID)
		r.Get("/{id}", h.handleGetByID)
		r.Get("/{id}/download", h.handleDownload)
		r.Get("/{id}/preview", h.handlePreview)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			r.Post("/", h.handleIssue)
			r.Post("/{id}/revoke", h.handleRevoke)
			r.Post("/replay", h.handleReplay)
		})
	})
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req models.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"), h.verboseErrs)
		return
	}
	if req.IssuedBy == "" {
		req.IssuedBy = middleware.GetUserID(r.Context())
	}
	cert, err := h.service.Issue(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to issue certificate", err)
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, cert)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	cert, err := h.service.Revoke(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logError(r, "failed to revoke certificate", err)
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	cert, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) handleGetByCertificateID(w http.ResponseWriter, r *http.Request) {
	cert, err := h.service.GetByCertificateID(r.Context(), chi.URLParam(r, "certificateId"))
	if err != nil {
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := models.Filter{
		StudentID: r.URL.Query().Get("studentId"),
		CourseID:  r.URL.Query().Get("courseId"),
		Status:    models.Status(r.URL.Query().Get("status")),
	}
	certs, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logError(r, "failed to list certificates", err)
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	shared.WriteJSON(w, http.StatusOK, certs)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	h.streamArtifact(w, r, "attachment")
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	h.streamArtifact(w, r, "inline")
}

func (h *Handler) streamArtifact(w http.ResponseWriter, r *http.Request, disposition string) {
	cert, f, err := h.service.OpenArtifact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err, h.verboseErrs)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("%s; filename=%q", disposition, cert.CertificateID+".png"))
	if _, err := io.Copy(w, f); err != nil {
		h.logError(r, "failed to stream artifact", err)
	}
}

func (h *Handler) handleReplay(w http.ResponseWriter, r *http.Request) {
	if h.replayer == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "event replay is not configured"), h.verboseErrs)
		return
	}
	var ev models.CourseCompletion
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"), h.verboseErrs)
		return
	}
	if err := h.replayer.PublishCompletionReplay(r.Context(), &ev); err != nil {
		h.logError(r, "failed to replay completion event", err)
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to publish replay event", err), h.verboseErrs)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	)
}
