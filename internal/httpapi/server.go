// Package httpapi exposes the reconstruction engine to rendering and
// editor clients over HTTP/JSON. Handlers only ever read the station
// map; every mutation goes through a full per-cave recomputation.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/joemeszaros/speleo-studio-sub003/core"
	"github.com/joemeszaros/speleo-studio-sub003/internal/declination"
	"github.com/joemeszaros/speleo-studio-sub003/internal/logging"
	"github.com/joemeszaros/speleo-studio-sub003/internal/observability"
	"github.com/joemeszaros/speleo-studio-sub003/internal/store"
	"github.com/joemeszaros/speleo-studio-sub003/model"
)

// caveState is the in-memory reconstruction result for one cave: the
// rebuilt cave document plus its shared station map.
type caveState struct {
	cave     *model.Cave
	stations *core.StationMap
}

// Server wires the store, the engine, and the declination service into
// an HTTP handler tree.
type Server struct {
	store       *store.Store
	collector   *observability.Collector
	declination *declination.Service
	log         logging.Logger

	// mu guards states and serializes reconstruction per cave: the
	// shared station map is not safe for concurrent reconstruction.
	mu     sync.Mutex
	states map[string]*caveState
}

// New builds the API server. collector and decl may be nil.
func New(st *store.Store, collector *observability.Collector, decl *declination.Service, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		store:       st,
		collector:   collector,
		declination: decl,
		log:         log,
		states:      make(map[string]*caveState),
	}
}

// Router assembles the chi route tree.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(s.requestLogging)

	r.Get("/health", s.instrument("/health", s.handleHealth))

	r.Route("/api", func(r chi.Router) {
		r.Get("/declination", s.instrument("/api/declination", s.handleDeclination))

		r.Route("/caves", func(r chi.Router) {
			r.Post("/", s.instrument("/api/caves", s.handleImportCave))
			r.Get("/", s.instrument("/api/caves", s.handleListCaves))
			r.Get("/{name}", s.instrument("/api/caves/{name}", s.handleGetCave))
			r.Delete("/{name}", s.instrument("/api/caves/{name}", s.handleDeleteCave))
			r.Post("/{name}/reconstruct", s.instrument("/api/caves/{name}/reconstruct", s.handleReconstruct))
			r.Get("/{name}/stations", s.instrument("/api/caves/{name}/stations", s.handleStations))
			r.Get("/{name}/segments", s.instrument("/api/caves/{name}/segments", s.handleSegments))
			r.Get("/{name}/distances", s.instrument("/api/caves/{name}/distances", s.handleDistances))
			r.Get("/{name}/colors", s.instrument("/api/caves/{name}/colors", s.handleColors))
		})
	})

	return r
}

// instrument wraps a handler with the Prometheus HTTP middleware under
// a fixed route label.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	if s.collector == nil {
		return h
	}
	wrapped := s.collector.Middleware(route, h)
	return wrapped.ServeHTTP
}

// requestLogging attaches a request_id and logs each request once.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, log := logging.WithRequestLogger(r.Context(), s.log)
		began := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		log.Debug(ctx, "http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(began)),
		)
	})
}

// state returns the reconstructed state for a cave, rebuilding it from
// the store when it is not resident.
func (s *Server) state(ctx context.Context, name string) (*caveState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[name]; ok {
		return st, nil
	}
	return s.reconstructLocked(ctx, name)
}

// reconstruct forces a full recomputation for a cave.
func (s *Server) reconstruct(ctx context.Context, name string) (*caveState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconstructLocked(ctx, name)
}

func (s *Server) reconstructLocked(ctx context.Context, name string) (*caveState, error) {
	cave, err := s.store.GetCave(ctx, name)
	if err != nil {
		return nil, err
	}

	stations := core.NewStationMap()
	var recorder core.ReconstructionRecorder
	if s.collector != nil {
		recorder = s.collector
	}
	if err := core.ReconstructCave(cave, stations, recorder); err != nil {
		return nil, err
	}
	s.observeNetwork(cave, stations)

	// Persist the refreshed diagnostics alongside the shot data.
	if err := s.store.SaveCave(ctx, cave); err != nil {
		return nil, err
	}

	st := &caveState{cave: cave, stations: stations}
	s.states[name] = st
	return st, nil
}

func (s *Server) observeNetwork(cave *model.Cave, stations *core.StationMap) {
	if s.collector == nil {
		return
	}
	orphans, duplicates, isolated := 0, 0, 0
	for _, survey := range cave.Surveys {
		orphans += len(survey.OrphanShotIDs)
		duplicates += len(survey.DuplicateShotIDs)
		if survey.Isolated {
			isolated++
		}
	}
	s.collector.SetNetworkCounts(stations.Len(), orphans, duplicates, isolated)
}

// evict drops the resident state for a cave after delete/import.
func (s *Server) evict(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, name)
}

// ---- response helpers ----

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}
