package core

import (
	"errors"
	"testing"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

func TestExtractSegments_GroupsByType(t *testing.T) {
	survey := &model.Survey{
		Name: "s1",
		Shots: []model.Shot{
			centerShot(0, "A", "B", 10, 0, 0),
			{ID: 1, Type: model.ShotTypeSplay, From: "B", Length: 2, Azimuth: 90, Clino: 0},
			auxShot(2, "B", "D", 3, 180, 0),
		},
	}

	r := NewReconstructor(NewStationMap(), nil, nil)
	if err := r.ReconstructSurvey(survey, 0, &Seed{}); err != nil {
		t.Fatalf("ReconstructSurvey: %v", err)
	}

	set, err := ExtractSegments(survey, r.Stations)
	if err != nil {
		t.Fatalf("ExtractSegments: %v", err)
	}

	if len(set.Center) != 6 {
		t.Errorf("center coords = %d values, want 6", len(set.Center))
	}
	if len(set.Splay) != 6 {
		t.Errorf("splay coords = %d values, want 6", len(set.Splay))
	}
	if len(set.Auxiliary) != 6 {
		t.Errorf("auxiliary coords = %d values, want 6", len(set.Auxiliary))
	}

	// The center segment runs from A (0,0,0) to B (0,10,0).
	want := []float64{0, 0, 0, 0, 10, 0}
	for i, v := range want {
		if set.Center[i] != v {
			t.Fatalf("center segment = %v, want %v", set.Center, want)
		}
	}
}

// Shots whose endpoints were never placed are skipped without error.
func TestExtractSegments_SkipsUnresolved(t *testing.T) {
	survey := &model.Survey{
		Name: "s1",
		Shots: []model.Shot{
			centerShot(0, "A", "B", 10, 0, 0),
			centerShot(1, "X", "Y", 5, 0, 0), // disconnected, never placed
		},
	}

	r := NewReconstructor(NewStationMap(), nil, nil)
	if err := r.ReconstructSurvey(survey, 0, &Seed{}); err != nil {
		t.Fatalf("ReconstructSurvey: %v", err)
	}

	set, err := ExtractSegments(survey, r.Stations)
	if err != nil {
		t.Fatalf("ExtractSegments: %v", err)
	}
	if len(set.Center) != 6 {
		t.Errorf("center coords = %d values, want only the placed shot", len(set.Center))
	}
}

// Segments follow the alias substitution recorded on the shot, not the
// raw station names.
func TestExtractSegments_HonoursAliases(t *testing.T) {
	prior := &model.Survey{
		Name:  "old",
		Shots: []model.Shot{centerShot(0, "W", "X", 10, 0, 0)},
	}
	current := &model.Survey{
		Name:  "new",
		Shots: []model.Shot{centerShot(0, "A", "B", 5, 90, 0)},
	}
	cave := &model.Cave{
		Name:    "aliased",
		Surveys: []*model.Survey{prior, current},
		Aliases: []model.SurveyAlias{{From: "X", To: "B"}},
	}

	stations := NewStationMap()
	if err := ReconstructCave(cave, stations, nil); err != nil {
		t.Fatalf("ReconstructCave: %v", err)
	}

	set, err := ExtractSegments(current, stations)
	if err != nil {
		t.Fatalf("ExtractSegments: %v", err)
	}
	if len(set.Center) != 6 {
		t.Fatalf("center coords = %d values, want 6", len(set.Center))
	}
	// Far end must be X's position (0,10,0), resolved through ToAlias.
	if set.Center[3] != 0 || set.Center[4] != 10 || set.Center[5] != 0 {
		t.Errorf("aliased segment far end = %v, want X's position", set.Center[3:6])
	}
}

func TestExtractSegments_UnknownTypeFails(t *testing.T) {
	survey := &model.Survey{
		Name: "s1",
		Shots: []model.Shot{
			centerShot(0, "A", "B", 10, 0, 0),
		},
	}

	r := NewReconstructor(NewStationMap(), nil, nil)
	if err := r.ReconstructSurvey(survey, 0, &Seed{}); err != nil {
		t.Fatalf("ReconstructSurvey: %v", err)
	}

	// Corrupt the type after placement so the shot still resolves.
	survey.Shots[0].Type = model.ShotType(99)
	survey.Shots[0].To = "B"

	_, err := ExtractSegments(survey, r.Stations)
	if !errors.Is(err, ErrUnknownShotType) {
		t.Fatalf("got %v, want ErrUnknownShotType", err)
	}
}
