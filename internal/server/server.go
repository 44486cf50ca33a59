// Package server exposes the people service over HTTP.
package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/mmynk/people/internal/metrics"
	"github.com/mmynk/people/internal/middleware"
	"github.com/mmynk/people/internal/service"
)

// Fixed response bodies.
const (
	pageTitle = "Full Cycle rocks!"

	msgCreated     = "Pessoa criada com sucesso!"
	msgCreateError = "Houve um erro ao criar a pessoa!"
	msgListError   = "Houve um erro ao listar as pessoas!"
	msgBadRequest  = "Corpo da requisição inválido!"
	msgTooLarge    = "Corpo da requisição muito grande!"
)

// maxBodyBytes matches the default limit of common JSON body parsers.
const maxBodyBytes = 100 << 10

//go:embed templates/*.html
var templateFS embed.FS

var peopleTemplate = template.Must(template.ParseFS(templateFS, "templates/people.html"))

// Server routes HTTP requests to the people service.
type Server struct {
	people  *service.PeopleService
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

// New builds a Server and registers its routes.
func New(people *service.PeopleService, m *metrics.Metrics) *Server {
	s := &Server{
		people:  people,
		metrics: m,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleListPeople)
	s.mux.HandleFunc("POST /people", s.handleCreatePerson)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = middleware.Metrics(s.metrics)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(h)
	h = middleware.RequestID(h)
	return h
}
