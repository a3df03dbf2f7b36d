package core

import (
	"math"
	"testing"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

func eovCave(fixStation string, coord model.ProjectedCoordinate, surveys ...*model.Survey) *model.Cave {
	return &model.Cave{
		Name:    "geo-cave",
		Surveys: surveys,
		GeoData: &model.GeoData{
			System: model.CoordinateSystem{Kind: model.CoordinateSystemEOV},
			FixPoints: []model.FixPoint{
				{StationName: fixStation, Coordinate: coord},
			},
		},
	}
}

// A fix point matching the first survey's start station seeds absolute
// placement: every reachable station gets a projected coordinate offset
// by its local displacement, plus a geographic conversion.
func TestReconstructCave_FixPointPropagates(t *testing.T) {
	survey := &model.Survey{
		Name:  "s1",
		Shots: []model.Shot{centerShot(0, "A", "B", 10, 0, 0)},
	}
	// The EOV false origin, so the expected latitude/longitude is the
	// projection origin.
	fix := model.ProjectedCoordinate{Easting: 650000, Northing: 200000, Elevation: 300}
	cave := eovCave("A", fix, survey)

	stations := NewStationMap()
	if err := ReconstructCave(cave, stations, nil); err != nil {
		t.Fatalf("ReconstructCave: %v", err)
	}

	a := stations.Get("A")
	if a == nil || a.Coordinates.Projected == nil {
		t.Fatalf("station A missing projected coordinate")
	}
	if a.Coordinates.Projected.Easting != 650000 || a.Coordinates.Projected.Elevation != 300 {
		t.Errorf("A projected = %+v, want the fix point", a.Coordinates.Projected)
	}

	b := stations.Get("B")
	if b == nil || b.Coordinates.Projected == nil {
		t.Fatalf("station B missing projected coordinate")
	}
	if diff := math.Abs(b.Coordinates.Projected.Northing - 200010); diff > 1e-9 {
		t.Errorf("B northing = %v, want 200010", b.Coordinates.Projected.Northing)
	}

	if a.Coordinates.Geographic == nil {
		t.Fatalf("station A missing geographic coordinate")
	}
	if diff := math.Abs(a.Coordinates.Geographic.Latitude - 47.14439372222222); diff > 1e-6 {
		t.Errorf("A latitude = %v, want projection origin", a.Coordinates.Geographic.Latitude)
	}
	if diff := math.Abs(a.Coordinates.Geographic.Longitude - 19.04857177777778); diff > 1e-6 {
		t.Errorf("A longitude = %v, want projection origin", a.Coordinates.Geographic.Longitude)
	}

	// 10 m north is roughly 9e-5 degrees of latitude at this parallel.
	if b.Coordinates.Geographic == nil {
		t.Fatalf("station B missing geographic coordinate")
	}
	dLat := b.Coordinates.Geographic.Latitude - a.Coordinates.Geographic.Latitude
	if dLat < 5e-5 || dLat > 2e-4 {
		t.Errorf("latitude delta for a 10 m north leg = %v, want ~9e-5", dLat)
	}
}

// Without geo-reference data the engine still places everything; the
// stations simply carry no projected or geographic coordinates.
func TestReconstructCave_NoGeoDataMeansLocalOnly(t *testing.T) {
	survey := &model.Survey{
		Name:  "s1",
		Shots: []model.Shot{centerShot(0, "A", "B", 10, 0, 0)},
	}
	cave := singleSurveyCave("plain", survey)

	stations := NewStationMap()
	if err := ReconstructCave(cave, stations, nil); err != nil {
		t.Fatalf("ReconstructCave: %v", err)
	}

	for _, name := range []string{"A", "B"} {
		st := stations.Get(name)
		if st == nil {
			t.Fatalf("station %q not placed", name)
		}
		if st.Coordinates.Projected != nil || st.Coordinates.Geographic != nil {
			t.Errorf("station %q should have local coordinates only", name)
		}
	}
}

// A fix point naming a station other than the first survey's start is
// ignored for seeding: placement falls back to the origin.
func TestReconstructCave_FixPointMustMatchStart(t *testing.T) {
	survey := &model.Survey{
		Name:  "s1",
		Shots: []model.Shot{centerShot(0, "A", "B", 10, 0, 0)},
	}
	fix := model.ProjectedCoordinate{Easting: 650000, Northing: 200000}
	cave := eovCave("Z", fix, survey)

	stations := NewStationMap()
	if err := ReconstructCave(cave, stations, nil); err != nil {
		t.Fatalf("ReconstructCave: %v", err)
	}

	a := stations.Get("A")
	if a == nil {
		t.Fatalf("station A not placed")
	}
	if a.Coordinates.Projected != nil {
		t.Errorf("non-matching fix point must not seed a projected coordinate")
	}
	wantStationAt(t, stations, "A", model.Vector{})
}
