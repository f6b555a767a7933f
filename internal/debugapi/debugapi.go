// Package debugapi exposes a tiny loopback-only HTTP endpoint reporting
// in-process runtime state (in-flight job count, tracked ledger
// entries, start time); it reports no poll or socket state. It is an
// ambient operational surface, not a
// buyer- or seller-facing API — it is never routed externally.
package debugapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/obscura-network/acp-seller-runtime/internal/ledger"
)

// Stats is the JSON shape served at /debug/stats.
type Stats struct {
	TrackedJobs  int       `json:"trackedJobs"`
	InFlightJobs int       `json:"inFlightJobs"`
	StartedAt    time.Time `json:"startedAt"`
}

// Server is the loopback debug/metrics HTTP server.
type Server struct {
	ledger    *ledger.Ledger
	startedAt time.Time
	http      *http.Server
}

// New builds a debug server bound to addr (expected to be a loopback
// address such as 127.0.0.1:9091) reporting on l.
func New(addr string, l *ledger.Ledger) *Server {
	s := &Server{ledger: l, startedAt: time.Now()}

	router := mux.NewRouter()
	router.HandleFunc("/debug/stats", s.handleStats).Methods("GET")
	router.HandleFunc("/debug/healthz", s.handleHealthz).Methods("GET")

	s.http = &http.Server{
		Addr:    addr,
		Handler: router,
	}
	return s
}

// ListenAndServe blocks until the server stops or errors. Callers
// typically run it in its own goroutine.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.http.Addr).Msg("debugapi: listening")
	return s.http.ListenAndServe()
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	tracked, inFlight := s.ledger.Snapshot()
	stats := Stats{
		TrackedJobs:  tracked,
		InFlightJobs: inFlight,
		StartedAt:    s.startedAt,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
