package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

var (
	ErrStationExists   = errors.New("station already exists")
	ErrStationNotFound = errors.New("station not found")
	ErrStationBadInput = errors.New("invalid station")
)

// StationMap is the cave-wide shared map of placed stations, keyed by
// station name. It is mutated in place by the reconstruction engine:
// entries are only ever added, never removed or moved, until Clear
// discards the whole generation before the next full recomputation.
//
// The map is guarded by an RWMutex so read-only consumers (rendering,
// HTTP handlers) can snapshot it safely; concurrent reconstruction of
// two surveys of the same cave is still the caller's responsibility to
// avoid, because placement order matters.
type StationMap struct {
	mu       sync.RWMutex
	stations map[string]*model.SurveyStation
}

// NewStationMap creates an empty station map.
func NewStationMap() *StationMap {
	return &StationMap{stations: make(map[string]*model.SurveyStation)}
}

// Add inserts a newly placed station. Inserting a name that already
// exists is a programming-invariant violation and fails with
// ErrStationExists; the reconstruction engine treats that as fatal.
func (m *StationMap) Add(st *model.SurveyStation) error {
	if st == nil || st.Name == "" {
		return fmt.Errorf("%w: nil or unnamed station", ErrStationBadInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.stations[st.Name]; exists {
		return fmt.Errorf("%w: %q", ErrStationExists, st.Name)
	}
	m.stations[st.Name] = st
	return nil
}

// Get returns the station with the given name, or nil if not placed.
func (m *StationMap) Get(name string) *model.SurveyStation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stations[name]
}

// Has reports whether a station with the given name has been placed.
func (m *StationMap) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.stations[name]
	return ok
}

// AttachShot appends a shot back-reference to an already placed
// station. Missing stations are ignored: splay far ends and orphaned
// endpoints legitimately have no entry.
func (m *StationMap) AttachShot(name string, ref model.ShotRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stations[name]
	if !ok {
		return
	}
	for _, existing := range st.Shots {
		if existing == ref {
			return
		}
	}
	st.Shots = append(st.Shots, ref)
}

// Len returns the number of placed stations.
func (m *StationMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stations)
}

// Names returns all placed station names, sorted.
func (m *StationMap) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.stations))
	for name := range m.stations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns a snapshot slice of all placed stations.
func (m *StationMap) All() []*model.SurveyStation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.SurveyStation, 0, len(m.stations))
	for _, st := range m.stations {
		out = append(out, st)
	}
	return out
}

// Clear discards every placed station so a fresh reconstruction can
// rebuild the map from scratch.
func (m *StationMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations = make(map[string]*model.SurveyStation)
}
