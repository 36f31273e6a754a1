package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pep299/newsletter-generator/internal/archive"
	"github.com/pep299/newsletter-generator/internal/export"
	"github.com/pep299/newsletter-generator/internal/model"
	"github.com/pep299/newsletter-generator/internal/newsletter"
	"github.com/pep299/newsletter-generator/internal/response"
)

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   Version,
	})
}

// generateNewsletterHandler reads the multipart form and runs the pipeline
func (s *Server) generateNewsletterHandler(w http.ResponseWriter, r *http.Request) {
	req, err := s.readNewsletterRequest(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := newsletter.Validate(req, s.config.RequireContextFile); err != nil {
		s.writeServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeoutDuration())
	defer cancel()

	result, err := s.service.Generate(ctx, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, result.Newsletter)
}

// readNewsletterRequest parses the form fields and the optional context file
func (s *Server) readNewsletterRequest(r *http.Request) (model.NewsletterRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return model.NewsletterRequest{}, &newsletter.ValidationError{Message: "Invalid form data"}
	}

	req := model.NewsletterRequest{
		CompanyName: r.FormValue("companyName"),
		Audience:    r.FormValue("audience"),
		Topic:       r.FormValue("topic"),
		Tone:        r.FormValue("tone"),
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return req, nil
		}
		return req, &newsletter.ValidationError{Message: "Invalid form data"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, fmt.Errorf("reading uploaded file: %w", err)
	}

	req.ContextFile = &model.ContextFile{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	return req, nil
}

// writeServiceError maps pipeline errors to HTTP responses
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *newsletter.ValidationError
	var faultErr *newsletter.FaultError

	switch {
	case errors.As(err, &validationErr):
		response.WriteBadRequest(w, validationErr.Message)
	case errors.As(err, &faultErr):
		s.logger.Error("Newsletter generation fault", zap.Error(err))
		response.WriteInternalError(w, faultErr.Details)
	default:
		s.logger.Error("Newsletter request failed", zap.Error(err))
		response.WriteInternalError(w, err.Error())
	}
}

// exportNewsletterHandler renders an edited newsletter as Markdown or HTML
func (s *Server) exportNewsletterHandler(w http.ResponseWriter, r *http.Request) {
	var n model.Newsletter
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		response.WriteBadRequest(w, "Invalid request body")
		return
	}

	if !n.Valid() {
		response.WriteBadRequest(w, "Newsletter must have subject, shortBody, longBody and cta")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatMarkdown
	}

	body, contentType, err := export.Render(n, format)
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			response.WriteBadRequest(w, err.Error())
			return
		}
		s.logger.Error("Export failed", zap.String("format", format), zap.Error(err))
		response.WriteInternalError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

// archiveStatsHandler returns context archive statistics
func (s *Server) archiveStatsHandler(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		response.WriteError(w, http.StatusNotFound, "Context archive is not configured")
		return
	}

	stats, err := s.archive.GetStats(r.Context())
	if err != nil {
		s.logger.Error("Archive stats failed", zap.Error(err))
		response.WriteInternalError(w, fmt.Sprintf("Error getting archive stats: %v", err))
		return
	}

	response.WriteJSON(w, http.StatusOK, stats)
}

// archiveEntryHandler returns one archived context document
func (s *Server) archiveEntryHandler(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		response.WriteError(w, http.StatusNotFound, "Context archive is not configured")
		return
	}

	id := mux.Vars(r)["id"]
	entry, err := s.archive.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			response.WriteError(w, http.StatusNotFound, "Archive entry not found")
			return
		}
		s.logger.Error("Archive lookup failed", zap.String("id", id), zap.Error(err))
		response.WriteInternalError(w, fmt.Sprintf("Error reading archive entry: %v", err))
		return
	}

	response.WriteJSON(w, http.StatusOK, entry)
}

// statusHandler returns system status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":        "running",
		"version":       Version,
		"timestamp":     time.Now().Unix(),
		"llm_provider":  s.config.LLMProvider,
		"generation":    s.service.HasGenerator(),
		"context_store": s.config.HasContextStore(),
	}

	if s.archive != nil {
		if stats, err := s.archive.GetStats(r.Context()); err == nil {
			status["archive"] = stats
		}
	}

	response.WriteJSON(w, http.StatusOK, status)
}

// configHandler returns configuration (secrets are excluded by their json tags)
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, s.config)
}
