package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	apimw "github.com/hamed0406/portwatch/internal/httpapi/middleware"
	"github.com/hamed0406/portwatch/internal/repo"
)

// Server exposes the latest status of every watched service. It is read-only.
type Server struct {
	Logger  *zap.Logger
	Status  repo.StatusStore
	Hosts   []*domain.Host
	Metrics http.Handler
	Keys    []string
}

func NewServer(l *zap.Logger, status repo.StatusStore, hosts []*domain.Host, metrics http.Handler, keys []string) *Server {
	return &Server{Logger: l, Status: status, Hosts: hosts, Metrics: metrics, Keys: keys}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, apimw.Log(s.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-API-Key"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireKey(s.Keys))
		r.Get("/api/services", s.handleListServices)
		r.Get("/api/hosts", s.handleListHosts)
		r.Get("/api/hosts/{name}", s.handleHost)
	})
	return r
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	all, err := s.Status.List(r.Context())
	if err != nil {
		s.Logger.Warn("status_list_error", zap.Error(err))
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, all)
}

type hostSummary struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Interval string `json:"interval"`
	Services int    `json:"services"`
	Up       int    `json:"up"`
	Down     int    `json:"down"`
}

func (s *Server) handleListHosts(w http.ResponseWriter, r *http.Request) {
	out := make([]hostSummary, 0, len(s.Hosts))
	for _, h := range s.Hosts {
		st, err := s.Status.ByHost(r.Context(), h.Name)
		if err != nil {
			s.Logger.Warn("status_list_error", zap.String("host", h.Name), zap.Error(err))
			http.Error(w, "list error", http.StatusInternalServerError)
			return
		}
		sum := hostSummary{Name: h.Name, Address: h.Address, Interval: h.Interval.String(), Services: len(h.Services)}
		for _, x := range st {
			switch x.Status {
			case domain.StatusUp:
				sum.Up++
			case domain.StatusDown:
				sum.Down++
			}
		}
		out = append(out, sum)
	}
	writeJSON(w, out)
}

// handleHost returns one host's services; ?format=text gives one
// "<service> (<port>): alive|dead" line per service.
func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var host *domain.Host
	for _, h := range s.Hosts {
		if h.Name == name {
			host = h
			break
		}
	}
	if host == nil {
		http.Error(w, "unknown host", http.StatusNotFound)
		return
	}

	st, err := s.Status.ByHost(r.Context(), name)
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		var b strings.Builder
		for _, x := range st {
			fmt.Fprintf(&b, "%s (%d): %s\n", x.Key.Name, x.Key.Port, liveness(x.Status))
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(b.String()))
		return
	}
	writeJSON(w, map[string]any{
		"host":     host,
		"services": st,
	})
}

func liveness(s domain.Status) string {
	switch s {
	case domain.StatusUp:
		return "alive"
	case domain.StatusDown:
		return "dead"
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
