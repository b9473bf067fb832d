// Package api exposes the people service as a small JSON-over-HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/giftwiser/internal/middleware"
	"github.com/mmynk/giftwiser/internal/models"
	"github.com/mmynk/giftwiser/internal/repository"
	"github.com/mmynk/giftwiser/internal/service"
)

const maxBodyBytes = 1 << 20

// Readiness reports whether the data layer is loaded and in sync.
type Readiness interface {
	State() repository.State
	LastSaveError() error
}

// Options configures optional endpoints.
type Options struct {
	// MetricsPath enables the Prometheus endpoint when non-empty.
	MetricsPath string
	// Gatherer defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server routes HTTP requests to the people service.
type Server struct {
	svc    *service.PeopleService
	health Readiness
	opts   Options
}

// NewServer creates a Server.
func NewServer(svc *service.PeopleService, health Readiness, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{svc: svc, health: health, opts: opts}
}

// Handler returns the routed handler wrapped in logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/people", s.handleListPeople)
	mux.HandleFunc("POST /api/people", s.handleAddPerson)
	mux.HandleFunc("DELETE /api/people/{id}", s.handleDeletePerson)
	mux.HandleFunc("GET /api/people/{id}/ideas", s.handleListIdeas)
	mux.HandleFunc("POST /api/people/{id}/ideas", s.handleAddIdea)
	mux.HandleFunc("DELETE /api/people/{id}/ideas/{ideaID}", s.handleDeleteIdea)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.handleReady)

	if s.opts.MetricsPath != "" {
		mux.Handle("GET "+s.opts.MetricsPath, promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return middleware.Logging(middleware.CORS(mux))
}

// PersonResponse is the JSON form of a person.
type PersonResponse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	DOB      string        `json:"dob"`
	Birthday string        `json:"birthday"`
	Ideas    []models.Idea `json:"ideas"`
}

// AddPersonRequest is the JSON request body for POST /api/people.
type AddPersonRequest struct {
	Name string `json:"name"`
	DOB  string `json:"dob"`
}

// AddIdeaRequest is the JSON request body for POST /api/people/{id}/ideas.
type AddIdeaRequest struct {
	Text   string  `json:"text"`
	Img    string  `json:"img"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// ReadyResponse is the JSON response for GET /health/ready.
type ReadyResponse struct {
	Status        string `json:"status"`
	LastSaveError string `json:"last_save_error,omitempty"`
}

func toPersonResponse(p models.Person) PersonResponse {
	ideas := p.Ideas
	if ideas == nil {
		ideas = []models.Idea{}
	}
	return PersonResponse{
		ID:       p.ID,
		Name:     p.Name,
		DOB:      p.DOB,
		Birthday: p.Birthday(),
		Ideas:    ideas,
	}
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people := s.svc.ListPeople(r.Context())
	resp := make([]PersonResponse, len(people))
	for i, p := range people {
		resp[i] = toPersonResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var req AddPersonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	person, err := s.svc.AddPerson(r.Context(), req.Name, req.DOB)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonResponse(person))
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeletePerson(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListIdeas(r.Context(), r.PathValue("id")))
}

func (s *Server) handleAddIdea(w http.ResponseWriter, r *http.Request) {
	var req AddIdeaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	idea, err := s.svc.AddIdea(r.Context(), service.AddIdeaRequest{
		PersonID: r.PathValue("id"),
		Text:     req.Text,
		Img:      req.Img,
		Width:    req.Width,
		Height:   req.Height,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idea)
}

func (s *Server) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteIdea(r.Context(), r.PathValue("id"), r.PathValue("ideaID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	state := s.health.State()
	if state != repository.StateReady {
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: state.String()})
		return
	}

	resp := ReadyResponse{Status: state.String()}
	if err := s.health.LastSaveError(); err != nil {
		resp.LastSaveError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrNotReady), errors.Is(err, repository.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
