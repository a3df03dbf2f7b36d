package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joemeszaros/speleo-studio-sub003/core"
	"github.com/joemeszaros/speleo-studio-sub003/internal/store"
	"github.com/joemeszaros/speleo-studio-sub003/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "error",
			"database":  "disconnected",
			"timestamp": time.Now().UTC(),
			"error":     err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}

type importResponse struct {
	ImportID    string              `json:"importId"`
	Cave        string              `json:"cave"`
	Diagnostics []surveyDiagnostics `json:"diagnostics"`
	Stations    int                 `json:"stations"`
}

type surveyDiagnostics struct {
	Survey           string `json:"survey"`
	Start            string `json:"start"`
	OrphanShotIDs    []int  `json:"orphanShotIds"`
	DuplicateShotIDs []int  `json:"duplicateShotIds"`
	Isolated         bool   `json:"isolated"`
}

func diagnosticsOf(cave *model.Cave) []surveyDiagnostics {
	out := make([]surveyDiagnostics, 0, len(cave.Surveys))
	for _, survey := range cave.Surveys {
		out = append(out, surveyDiagnostics{
			Survey:           survey.Name,
			Start:            survey.Start,
			OrphanShotIDs:    survey.OrphanShotIDs,
			DuplicateShotIDs: survey.DuplicateShotIDs,
			Isolated:         survey.Isolated,
		})
	}
	return out
}

// handleImportCave accepts a cave export document, persists it, and
// runs a full reconstruction.
func (s *Server) handleImportCave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var export model.CaveExport
	if err := json.NewDecoder(r.Body).Decode(&export); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode cave document: %w", err))
		return
	}
	cave, err := model.CaveFromExport(export)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.SaveCave(ctx, cave); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.evict(cave.Name)

	state, err := s.reconstruct(ctx, cave.Name)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, http.StatusCreated, importResponse{
		ImportID:    uuid.NewString(),
		Cave:        cave.Name,
		Diagnostics: diagnosticsOf(state.cave),
		Stations:    state.stations.Len(),
	})
}

func (s *Server) handleListCaves(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListCaveNames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"caves": names, "count": len(names)})
}

func (s *Server) handleGetCave(w http.ResponseWriter, r *http.Request) {
	cave, err := s.store.GetCave(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusForStoreError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, cave.ToExport())
}

func (s *Server) handleDeleteCave(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.DeleteCave(r.Context(), name); err != nil {
		writeError(w, statusForStoreError(err), err)
		return
	}
	s.evict(name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	state, err := s.reconstruct(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrCaveNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		// Fatal invariant violations surface here; the pass aborted.
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cave":        name,
		"stations":    state.stations.Len(),
		"diagnostics": diagnosticsOf(state.cave),
	})
}

type stationView struct {
	Name       string                      `json:"name"`
	Type       string                      `json:"type"`
	Survey     string                      `json:"survey"`
	Position   model.Vector                `json:"position"`
	Projected  *model.ProjectedCoordinate  `json:"projected,omitempty"`
	Geographic *model.GeographicCoordinate `json:"geographic,omitempty"`
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	state, err := s.state(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusForStoreError(err), err)
		return
	}

	names := state.stations.Names()
	out := make([]stationView, 0, len(names))
	for _, name := range names {
		st := state.stations.Get(name)
		out = append(out, stationView{
			Name:       st.Name,
			Type:       st.Type.String(),
			Survey:     st.SurveyName,
			Position:   st.Position,
			Projected:  st.Coordinates.Projected,
			Geographic: st.Coordinates.Geographic,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"stations": out, "count": len(out)})
}

type segmentsView struct {
	Survey    string    `json:"survey"`
	Center    []float64 `json:"center"`
	Splay     []float64 `json:"splay"`
	Auxiliary []float64 `json:"auxiliary"`
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	state, err := s.state(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusForStoreError(err), err)
		return
	}

	out := make([]segmentsView, 0, len(state.cave.Surveys))
	for _, survey := range state.cave.Surveys {
		set, err := core.ExtractSegments(survey, state.stations)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		out = append(out, segmentsView{
			Survey:    survey.Name,
			Center:    set.Center,
			Splay:     set.Splay,
			Auxiliary: set.Auxiliary,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": out})
}

func (s *Server) handleDistances(w http.ResponseWriter, r *http.Request) {
	state, err := s.state(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusForStoreError(err), err)
		return
	}
	distances := core.CaveDistances(state.cave, state.stations)
	writeJSON(w, http.StatusOK, map[string]any{
		"distances": distances,
		"max":       distances.Max(),
	})
}

type stationColor struct {
	Station string  `json:"station"`
	Value   float64 `json:"value"`
	Color   string  `json:"color"`
}

// handleColors maps each placed station to a gradient color by relative
// depth or relative traversed distance (0-100).
func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	state, err := s.state(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusForStoreError(err), err)
		return
	}

	mode := r.URL.Query().Get("mode")
	var values map[string]float64
	var stops []core.GradientStop

	switch mode {
	case "", "depth":
		values = relativeDepths(state.stations)
		stops = core.DefaultDepthGradient()
	case "distance":
		values = relativeDistances(state.cave, state.stations)
		stops = core.DefaultDistanceGradient()
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown color mode %q", mode))
		return
	}

	out := make([]stationColor, 0, len(values))
	for _, name := range state.stations.Names() {
		value, ok := values[name]
		if !ok {
			continue
		}
		color, err := core.InterpolateGradient(value, stops)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		out = append(out, stationColor{Station: name, Value: value, Color: color.Hex()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "colors": out})
}

// relativeDepths maps stations to 0 at the highest point and 100 at the
// deepest.
func relativeDepths(stations *core.StationMap) map[string]float64 {
	all := stations.All()
	if len(all) == 0 {
		return map[string]float64{}
	}
	minZ, maxZ := all[0].Position.Z, all[0].Position.Z
	for _, st := range all {
		if st.Position.Z < minZ {
			minZ = st.Position.Z
		}
		if st.Position.Z > maxZ {
			maxZ = st.Position.Z
		}
	}
	span := maxZ - minZ
	out := make(map[string]float64, len(all))
	for _, st := range all {
		if span == 0 {
			out[st.Name] = 0
			continue
		}
		out[st.Name] = (maxZ - st.Position.Z) / span * 100
	}
	return out
}

// relativeDistances maps stations to their traversed distance from the
// start, scaled to 0-100.
func relativeDistances(cave *model.Cave, stations *core.StationMap) map[string]float64 {
	distances := core.CaveDistances(cave, stations)
	max := distances.Max()
	out := make(map[string]float64, len(distances))
	for name, d := range distances {
		if max == 0 {
			out[name] = 0
			continue
		}
		out[name] = d / max * 100
	}
	return out
}

func (s *Server) handleDeclination(w http.ResponseWriter, r *http.Request) {
	if s.declination == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("declination service not configured"))
		return
	}

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, errors.New("lat and lon query parameters are required"))
		return
	}

	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw))
			return
		}
		date = parsed
	}

	value, err := s.declination.Declination(r.Context(), lat, lon, date)
	if err != nil {
		// Best-effort contract: report unavailability, never a hard
		// failure of the survey data paths.
		writeJSON(w, http.StatusOK, map[string]any{"available": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"available": true, "declination": value})
}

func statusForStoreError(err error) int {
	if errors.Is(err, store.ErrCaveNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
