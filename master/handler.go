package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blaster_directory_sessions",
		Help: "Sessions currently listed",
	})

	sessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blaster_directory_sessions_expired_total",
		Help: "Sessions dropped for missing heartbeats",
	})

	joinAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blaster_directory_joins_total",
		Help: "Join reservations by result",
	}, []string{"result"}) // "ok", "full", "not_found"
)

type hostRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	MatchType  string `json:"matchType"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
}

type hostResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	Players int `json:"players"`
}

const maxRequestBody = 1 << 16 // 64 KB

// NewRouter serves the session directory API.
func NewRouter(reg *Registry, logRequests bool) *chi.Mux {
	r := chi.NewRouter()
	if logRequests {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", FindSessions(reg))
		r.Post("/", HostSession(reg))
		r.Post("/{id}/heartbeat", Heartbeat(reg))
		r.Post("/{id}/join", JoinSession(reg))
		r.Delete("/{id}", DestroySession(reg))
	})
	r.Get("/health", Health())
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[master] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func FindSessions(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.Find(r.URL.Query().Get("match")))
	}
}

func HostSession(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		var req hostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Name == "" || req.Address == "" {
			writeError(w, http.StatusBadRequest, "name and address required")
			return
		}

		id := reg.Host(SessionInfo{
			Name:       req.Name,
			Address:    req.Address,
			MatchType:  req.MatchType,
			Players:    req.Players,
			MaxPlayers: req.MaxPlayers,
			Version:    req.Version,
		})

		log.Printf("[master] hosted session %q at %s (id=%s)", req.Name, req.Address, id)
		writeJSON(w, http.StatusCreated, hostResponse{ID: id})
	}
}

func Heartbeat(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		var req heartbeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if !reg.Heartbeat(chi.URLParam(r, "id"), req.Players) {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func JoinSession(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := reg.Join(chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, ErrSessionNotFound):
			joinAttempts.WithLabelValues("not_found").Inc()
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrSessionFull):
			joinAttempts.WithLabelValues("full").Inc()
			writeError(w, http.StatusConflict, err.Error())
		default:
			joinAttempts.WithLabelValues("ok").Inc()
			writeJSON(w, http.StatusOK, info)
		}
	}
}

func DestroySession(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !reg.Destroy(id) {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		log.Printf("[master] destroyed session %s", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
