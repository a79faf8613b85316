package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/internal/config"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/export"
	"github.com/aretw0/cascade/pkg/ports"
	"github.com/aretw0/cascade/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a session.Manager over HTTP.
type Server struct {
	Manager  *session.Manager
	Streams  *StreamManager
	Defaults domain.Parameters
	Browser  ports.ReactionBrowser
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithDefaults sets the parameters that request bodies are overlaid on.
func WithDefaults(p domain.Parameters) Option {
	return func(s *Server) {
		s.Defaults = p.Clone()
	}
}

// WithBrowser enables GET /reactions/{nuclide}.
func WithBrowser(b ports.ReactionBrowser) Option {
	return func(s *Server) {
		s.Browser = b
	}
}

// WithGatherer enables GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithStreams sets the stream manager feeding the events endpoint. Its Hooks
// must be installed on the manager's engines for progress events to flow.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		if sm != nil {
			s.Streams = sm
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// NewHandler creates a new HTTP handler for the manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	server := &Server{
		Manager:  manager,
		Streams:  NewStreamManager(),
		Defaults: domain.DefaultParameters(),
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}
	return enableCORS(server.Routes())
}

// Routes builds the chi router without middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/cascades", func(r chi.Router) {
		r.Post("/", s.StartCascade)
		r.Get("/", s.ListCascades)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetCascade)
			r.Delete("/", s.DeleteCascade)
			r.Post("/cancel", s.CancelCascade)
			r.Get("/csv", s.ExportCSV)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	r.Get("/reactions/{nuclide}", s.GetReactions)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartCascade handles the POST /cascades request.
// The body is a JSON object of parameter overrides; an empty body uses the defaults.
func (s *Server) StartCascade(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.Logger.Warn("StartCascade: Invalid request body", "err", err)
			return
		}
	}

	params, err := config.DecodeParameters(body, s.Defaults)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The run belongs to the manager, not to this request.
	run, err := s.Manager.Start(context.WithoutCancel(r.Context()), params)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.Logger.Info("cascade started", "run_id", run.ID(), "params", params.String())

	w.Header().Set("Location", "/cascades/"+run.ID())
	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": run.ID()})
}

// ListCascades handles the GET /cascades request.
func (s *Server) ListCascades(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Manager.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

// GetCascade handles the GET /cascades/{id} request.
func (s *Server) GetCascade(w http.ResponseWriter, r *http.Request) {
	st, err := s.Manager.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

// CancelCascade handles the POST /cascades/{id}/cancel request.
func (s *Server) CancelCascade(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// DeleteCascade handles the DELETE /cascades/{id} request.
func (s *Server) DeleteCascade(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV handles the GET /cascades/{id}/csv request.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.Manager.Result(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".csv"))
	if err := export.WriteCSV(w, result); err != nil {
		s.Logger.Error("ExportCSV: write failed", "run_id", id, "err", err)
	}
}

// reactionView is the JSON shape of a dataset reaction, loop-free.
type reactionView struct {
	Family   domain.Family    `json:"type"`
	Inputs   []domain.Nuclide `json:"inputs"`
	Outputs  []domain.Nuclide `json:"outputs"`
	MeV      float64          `json:"mev"`
	Neutrino domain.Neutrino  `json:"neutrino"`
}

// GetReactions handles the GET /reactions/{nuclide} request.
func (s *Server) GetReactions(w http.ResponseWriter, r *http.Request) {
	if s.Browser == nil {
		http.Error(w, "Reaction browsing not supported by this data source", http.StatusNotImplemented)
		return
	}
	nuclide, err := domain.ParseNuclide(chi.URLParam(r, "nuclide"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid nuclide: %v", err), http.StatusBadRequest)
		return
	}

	reactions, err := s.Browser.ReactionsWith(r.Context(), nuclide)
	if err != nil {
		s.writeError(w, err)
		return
	}
	fission, err := s.Browser.FissionOf(r.Context(), nuclide)
	if err != nil {
		s.writeError(w, err)
		return
	}

	views := make([]reactionView, 0, len(reactions))
	for _, rc := range reactions {
		views = append(views, reactionView{
			Family:   rc.Family(),
			Inputs:   rc.Inputs(),
			Outputs:  rc.Outputs(),
			MeV:      rc.MeV(),
			Neutrino: rc.NeutrinoClass(),
		})
	}
	if fission == nil {
		fission = []domain.Fission{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"nuclide":   nuclide,
		"reactions": views,
		"fission":   fission,
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "cascade-http",
		"version": strings.TrimSpace(cascade.Version),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRunNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRunActive):
		status = http.StatusConflict
	default:
		s.Logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
