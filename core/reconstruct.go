package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/joemeszaros/speleo-studio-sub003/geodesy"
	"github.com/joemeszaros/speleo-studio-sub003/model"
)

// ReconstructionRecorder receives per-survey reconstruction outcomes.
// The engine never talks to a metrics backend directly; the
// observability layer implements this interface.
type ReconstructionRecorder interface {
	ObserveSurveyReconstruction(caveName, surveyName string, placed, orphans, duplicates int, isolated bool, elapsed time.Duration)
}

// Seed is the absolute placement for a cave's start station, supplied
// only for the first survey. Projected is set when the start station
// has a known fix point.
type Seed struct {
	Position  model.Vector
	Projected *model.ProjectedCoordinate
}

// legKey identifies a measured leg by its two resolved station names,
// order-normalized so A-B and B-A are the same leg.
type legKey struct {
	a, b string
}

func newLegKey(from, to string) legKey {
	if from > to {
		from, to = to, from
	}
	return legKey{a: from, b: to}
}

// Reconstructor runs the worklist fixed-point placement over one
// cave's surveys. It owns no data: the station map is mutated in place
// and the processed-leg memory spans all surveys of the cave so that
// repeat measurements of the same leg are accepted rather than flagged.
//
// The engine is single-threaded and synchronous: once invoked it runs
// to completion or returns a fatal invariant error. Surveys of a cave
// must be reconstructed strictly in cave-survey-list order.
type Reconstructor struct {
	Stations *StationMap
	Aliases  []model.SurveyAlias
	System   *model.CoordinateSystem
	Recorder ReconstructionRecorder

	caveName string
	legs     map[legKey]struct{}
}

// NewReconstructor creates an engine over the given shared station map.
// aliases are read-only per pass; system is the cave's projected
// coordinate system, nil when the cave is not geo-referenced.
func NewReconstructor(stations *StationMap, aliases []model.SurveyAlias, system *model.CoordinateSystem) *Reconstructor {
	return &Reconstructor{
		Stations: stations,
		Aliases:  aliases,
		System:   system,
		legs:     make(map[legKey]struct{}),
	}
}

// ReconstructCave fully recomputes the station map and every survey's
// diagnostics for the cave: the map is cleared, the first survey is
// seeded from the cave's fix points (or the origin when none match),
// and surveys are processed strictly in list order so later surveys can
// connect to stations placed by earlier ones.
func ReconstructCave(cave *model.Cave, stations *StationMap, recorder ReconstructionRecorder) error {
	stations.Clear()

	var system *model.CoordinateSystem
	if cave.GeoData != nil {
		system = &cave.GeoData.System
	}

	r := NewReconstructor(stations, cave.Aliases, system)
	r.Recorder = recorder
	r.caveName = cave.Name

	for i, survey := range cave.Surveys {
		var seed *Seed
		if i == 0 {
			seed = seedForSurvey(cave, survey)
		}
		if err := r.ReconstructSurvey(survey, i, seed); err != nil {
			return err
		}
	}
	return nil
}

// seedForSurvey derives the first survey's seed: a fix point matching
// the start station when one exists, otherwise the deterministic
// origin fallback.
func seedForSurvey(cave *model.Cave, survey *model.Survey) *Seed {
	seed := &Seed{}
	if fp := cave.GeoData.FixPointFor(survey.StartStation()); fp != nil {
		coord := fp.Coordinate
		seed.Projected = &coord
	}
	return seed
}

// ReconstructSurvey places every station of the survey reachable from
// an already-placed station or from the seed, and rewrites the survey's
// Start, OrphanShotIDs, DuplicateShotIDs, and Isolated fields.
//
// Disconnected or malformed surveys never produce an error; the only
// error is the fatal invariant violation of re-placing an existing
// station name.
func (r *Reconstructor) ReconstructSurvey(survey *model.Survey, index int, seed *Seed) error {
	began := time.Now()
	survey.ResetDiagnostics()

	valid := survey.ValidShots()
	if len(valid) == 0 {
		// Isolated-by-construction, not-placed: an empty survey must
		// not be reported as isolated.
		return nil
	}

	survey.Start = survey.StartStation()

	if index == 0 && seed != nil && survey.Start != "" && !r.Stations.Has(survey.Start) {
		if err := r.placeSeed(survey, seed); err != nil {
			return err
		}
	}

	processed := make([]bool, len(valid))
	var duplicates []int

	for progress := true; progress; {
		progress = false
		for i, shot := range valid {
			if processed[i] {
				continue
			}
			done, dup, err := r.processShot(survey, shot)
			if err != nil {
				return fmt.Errorf("reconstruct survey %q: shot %d (%q -> %q): %w",
					survey.Name, shot.ID, shot.From, shot.To, err)
			}
			if done {
				processed[i] = true
				progress = true
				if dup {
					duplicates = append(duplicates, shot.ID)
				}
			}
		}
	}

	placed := 0
	var orphans []int
	for i, shot := range valid {
		if processed[i] {
			placed++
		} else {
			orphans = append(orphans, shot.ID)
		}
	}
	sort.Ints(orphans)
	sort.Ints(duplicates)

	survey.OrphanShotIDs = orphans
	survey.DuplicateShotIDs = duplicates
	survey.Isolated = placed == 0

	if r.Recorder != nil {
		r.Recorder.ObserveSurveyReconstruction(
			r.caveName, survey.Name,
			placed, len(orphans), len(duplicates), survey.Isolated,
			time.Since(began),
		)
	}
	return nil
}

// placeSeed inserts the start station at the seed position, carrying
// the fix-point projected coordinate and its geographic conversion when
// available.
func (r *Reconstructor) placeSeed(survey *model.Survey, seed *Seed) error {
	st := &model.SurveyStation{
		Name:       survey.Start,
		Type:       model.ShotTypeCenter,
		Position:   seed.Position,
		SurveyName: survey.Name,
		Coordinates: model.StationCoordinates{
			Local:     model.Vector{},
			Projected: seed.Projected,
		},
	}
	if seed.Projected != nil {
		st.Coordinates.Geographic = r.toGeographic(*seed.Projected)
	}
	if err := r.Stations.Add(st); err != nil {
		return fmt.Errorf("seed station: %w", err)
	}
	return nil
}

// processShot attempts to resolve one shot against the station map.
// It returns done=true when the shot was processed this attempt, with
// dup=true when it was recorded as a genuinely redundant connection.
func (r *Reconstructor) processShot(survey *model.Survey, shot *model.Shot) (done, dup bool, err error) {
	target := shot.TargetStationName(survey.Name)
	from := r.Stations.Get(shot.From)
	to := r.Stations.Get(target)

	switch {
	case from != nil && to == nil:
		if !canAnchor(from, shot) {
			return false, false, nil
		}
		err = r.placeFrom(survey, shot, from, target)
		return err == nil, false, err

	case from == nil && to != nil:
		if !canAnchor(to, shot) {
			return false, false, nil
		}
		err = r.placeTo(survey, shot, to)
		return err == nil, false, err

	case from != nil && to != nil:
		// Redundant connection between two located stations. Repeat
		// measurements of a leg already processed in this cave are
		// accepted silently; anything else is a flagged duplicate.
		key := newLegKey(from.Name, to.Name)
		_, seen := r.legs[key]
		r.legs[key] = struct{}{}
		r.attach(survey, shot, from.Name, to.Name)
		return true, !seen, nil

	default:
		return r.processViaAlias(survey, shot, target)
	}
}

// processViaAlias handles the neither-placed case: when an alias maps
// one endpoint onto an already-placed station, the shot is resolved as
// if that endpoint were placed, and the substitution is recorded on the
// shot's FromAlias/ToAlias.
func (r *Reconstructor) processViaAlias(survey *model.Survey, shot *model.Shot, target string) (bool, bool, error) {
	if other := r.aliasedStation(shot.From); other != nil {
		if !canAnchor(other, shot) {
			return false, false, nil
		}
		shot.FromAlias = other.Name
		err := r.placeFrom(survey, shot, other, target)
		return err == nil, false, err
	}
	if shot.To != "" {
		if other := r.aliasedStation(shot.To); other != nil {
			if !canAnchor(other, shot) {
				return false, false, nil
			}
			shot.ToAlias = other.Name
			err := r.placeTo(survey, shot, other)
			return err == nil, false, err
		}
	}
	return false, false, nil
}

// aliasedStation returns the placed station an alias maps name onto,
// or nil when no alias applies or the alias pair is also unplaced.
func (r *Reconstructor) aliasedStation(name string) *model.SurveyStation {
	for _, a := range r.Aliases {
		if !a.Contains(name) {
			continue
		}
		if st := r.Stations.Get(a.Other(name)); st != nil {
			return st
		}
	}
	return nil
}

// canAnchor reports whether the anchor station may place this shot's
// far end. An auxiliary station cannot anchor a center or splay shot;
// such shots stay unprocessed until resolved another way.
func canAnchor(anchor *model.SurveyStation, shot *model.Shot) bool {
	if anchor.Type != model.ShotTypeAuxiliary {
		return true
	}
	return shot.Type == model.ShotTypeAuxiliary
}

// placeFrom places the shot's target station relative to the placed
// from-side anchor.
func (r *Reconstructor) placeFrom(survey *model.Survey, shot *model.Shot, anchor *model.SurveyStation, target string) error {
	d := ShotDisplacement(shot, survey.Metadata.Declination, survey.Metadata.Convergence)
	if err := r.place(survey, shot, anchor, target, d); err != nil {
		return err
	}
	r.legs[newLegKey(anchor.Name, target)] = struct{}{}
	r.attach(survey, shot, anchor.Name, target)
	return nil
}

// placeTo places the shot's from station relative to the placed
// to-side anchor, using the negated displacement.
func (r *Reconstructor) placeTo(survey *model.Survey, shot *model.Shot, anchor *model.SurveyStation) error {
	d := ShotDisplacement(shot, survey.Metadata.Declination, survey.Metadata.Convergence).Neg()
	if err := r.place(survey, shot, anchor, shot.From, d); err != nil {
		return err
	}
	r.legs[newLegKey(anchor.Name, shot.From)] = struct{}{}
	r.attach(survey, shot, anchor.Name, shot.From)
	return nil
}

// place inserts a new station displaced from the anchor, propagating
// projected and geographic coordinates when the anchor carries them.
func (r *Reconstructor) place(survey *model.Survey, shot *model.Shot, anchor *model.SurveyStation, name string, d model.Vector) error {
	st := &model.SurveyStation{
		Name:       name,
		Type:       shot.Type,
		Position:   anchor.Position.Add(d),
		SurveyName: survey.Name,
		Coordinates: model.StationCoordinates{
			Local: anchor.Coordinates.Local.Add(d),
		},
	}
	if p := anchor.Coordinates.Projected; p != nil {
		// Projected axes are treated as locally Cartesian-equivalent
		// at cave scale.
		next := model.ProjectedCoordinate{
			Easting:   p.Easting + d.X,
			Northing:  p.Northing + d.Y,
			Elevation: p.Elevation + d.Z,
		}
		st.Coordinates.Projected = &next
		st.Coordinates.Geographic = r.toGeographic(next)
	}
	return r.Stations.Add(st)
}

// toGeographic converts a projected coordinate through the cave's
// coordinate system; stations without a usable system simply have no
// geographic coordinate.
func (r *Reconstructor) toGeographic(p model.ProjectedCoordinate) *model.GeographicCoordinate {
	if r.System == nil {
		return nil
	}
	ll, err := geodesy.ToLatLon(p, *r.System)
	if err != nil {
		return nil
	}
	return &ll
}

// attach records the mutual shot back-references on both endpoint
// stations (when placed).
func (r *Reconstructor) attach(survey *model.Survey, shot *model.Shot, names ...string) {
	ref := model.ShotRef{Survey: survey.Name, ShotID: shot.ID}
	for _, name := range names {
		r.Stations.AttachShot(name, ref)
	}
}
