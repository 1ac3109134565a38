package main

import (
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/dreamware/canopy/internal/api"
	"github.com/dreamware/canopy/internal/config"
	"github.com/dreamware/canopy/internal/geometry"
	"github.com/dreamware/canopy/internal/overlay"
	"github.com/dreamware/canopy/internal/render"
	"github.com/dreamware/canopy/internal/storage"
)

// server wraps a single overlay behind an HTTP surface. The engine is
// single-writer, so every handler takes the mutex; reads could share it,
// but at simulator scale uniform exclusion is simpler.
type server struct {
	mu       sync.Mutex
	overlay  *overlay.Overlay
	renderer render.Renderer
	rng      *rand.Rand
}

func newServer(cfg *config.Config) *server {
	seed := cfg.Overlay.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &server{
		overlay:  overlay.New(cfg.Overlay.Salt),
		renderer: render.New(cfg.Render.Cols, cfg.Render.Rows),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/join", s.handleJoin)
	mux.HandleFunc("/leave", s.handleLeave)
	mux.HandleFunc("/keys", s.handlePut)
	mux.HandleFunc("/keys/", s.handleGet)
	mux.HandleFunc("/rebalance", s.handleRebalance)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/map", s.handleMap)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// handleJoin adds a zone at a point drawn from the server's seeded RNG.
func (s *server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	p := geometry.Point{X: s.rng.Float64(), Y: s.rng.Float64()}
	id := s.overlay.Join(p)
	zones := s.overlay.Len()
	s.mu.Unlock()

	log.Printf("join: zone %s at (%.3f, %.3f), %d zones", id, p.X, p.Y, zones)
	writeJSON(w, api.JoinResponse{ID: id, Zones: zones})
}

func (s *server) handleLeave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req api.LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err := s.overlay.Leave(req.ID)
	s.mu.Unlock()

	switch {
	case err == nil:
		log.Printf("leave: zone %s removed", req.ID)
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, overlay.ErrUnknownZone):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, overlay.ErrLastZone), errors.Is(err, overlay.ErrBlockedMerge):
		// The overlay is unchanged; the caller may retry with another zone.
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *server) handlePut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req api.PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	owner, p := s.overlay.Put(req.Key, req.Value)
	s.mu.Unlock()

	writeJSON(w, api.PutResponse{Owner: owner, X: p.X, Y: p.Y})
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := r.URL.Path[len("/keys/"):]
	if key == "" {
		http.Error(w, "key required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	lookup, err := s.overlay.Get(key)
	s.mu.Unlock()

	resp := api.GetResponse{
		Found: err == nil,
		Path:  lookup.Path,
		Owner: lookup.Owner,
		X:     lookup.Point.X,
		Y:     lookup.Point.Y,
	}
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp.Value = lookup.Value
	writeJSON(w, resp)
}

func (s *server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	id, split := s.overlay.RebalanceHeaviest()
	s.mu.Unlock()

	if split {
		log.Printf("rebalance: split heaviest zone into %s", id)
	}
	writeJSON(w, api.RebalanceResponse{ID: id, Split: split})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	stats := s.overlay.Stats()
	s.mu.Unlock()

	writeJSON(w, api.StatsResponse{Zones: stats})
}

// handleMap serves the text rendering of the current partition.
func (s *server) handleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.renderer.Map(s.overlay, w); err != nil {
		log.Printf("map render: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
