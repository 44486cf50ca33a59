package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/mmynk/people/internal/middleware"
	"github.com/mmynk/people/internal/models"
)

type peoplePage struct {
	Title  string
	People []models.Person
}

// createPersonRequest is the POST /people body. Name is a pointer so an
// explicit null behaves like a missing field.
type createPersonRequest struct {
	Name *string `json:"name"`
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	people, err := s.people.ListPeople(ctx)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("list").Inc()
		slog.ErrorContext(ctx, "ListPeople failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		writeText(w, http.StatusInternalServerError, msgListError)
		return
	}

	var buf bytes.Buffer
	if err := peopleTemplate.Execute(&buf, peoplePage{Title: pageTitle, People: people}); err != nil {
		slog.ErrorContext(ctx, "Failed to render people page",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		writeText(w, http.StatusInternalServerError, msgListError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, err := decodeName(w, r)
	if err != nil {
		slog.WarnContext(ctx, "Invalid create person body",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	if _, err := s.people.CreatePerson(ctx, name); err != nil {
		s.metrics.StoreErrors.WithLabelValues("create").Inc()
		slog.ErrorContext(ctx, "CreatePerson failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		writeText(w, http.StatusInternalServerError, msgCreateError)
		return
	}

	s.metrics.PeopleCreated.Inc()
	writeText(w, http.StatusCreated, msgCreated)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.people.Ping(r.Context()); err != nil {
		s.metrics.StoreErrors.WithLabelValues("ping").Inc()
		slog.WarnContext(r.Context(), "Health check failed", "error", err)
		writeText(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeText(w, http.StatusOK, "ok")
}

// decodeName returns the posted name, or "" when the body has none.
// Bodies that are not declared as JSON are ignored.
func decodeName(w http.ResponseWriter, r *http.Request) (string, error) {
	if !isJSON(r.Header.Get("Content-Type")) {
		return "", nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	var req createPersonRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", err
	}
	if req.Name == nil {
		return "", nil
	}
	return *req.Name, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}
