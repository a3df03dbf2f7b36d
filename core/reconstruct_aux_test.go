package core

import (
	"testing"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

func auxShot(id int, from, to string, length, azimuth, clino float64) model.Shot {
	return model.Shot{
		ID: id, Type: model.ShotTypeAuxiliary,
		From: from, To: to,
		Length: length, Azimuth: azimuth, Clino: clino,
	}
}

// An auxiliary station may anchor further auxiliary shots but never a
// center or splay shot; such shots stay orphaned unless resolved from
// the other side.
func TestReconstructSurvey_AuxiliaryCannotAnchorCenter(t *testing.T) {
	survey := &model.Survey{
		Name: "s1",
		Shots: []model.Shot{
			auxShot(0, "A", "B", 5, 0, 0),
			centerShot(1, "B", "C", 5, 90, 0),
			auxShot(2, "B", "D", 3, 180, 0),
		},
	}

	r := NewReconstructor(NewStationMap(), nil, nil)
	if err := r.ReconstructSurvey(survey, 0, &Seed{}); err != nil {
		t.Fatalf("ReconstructSurvey: %v", err)
	}

	if r.Stations.Has("C") {
		t.Errorf("center shot anchored on an auxiliary station must not place C")
	}
	if !r.Stations.Has("D") {
		t.Errorf("auxiliary chain through B should place D")
	}
	if len(survey.OrphanShotIDs) != 1 || survey.OrphanShotIDs[0] != 1 {
		t.Errorf("OrphanShotIDs = %v, want [1]", survey.OrphanShotIDs)
	}
}

func TestReconstructSurvey_AuxiliaryCannotAnchorSplay(t *testing.T) {
	survey := &model.Survey{
		Name: "s1",
		Shots: []model.Shot{
			auxShot(0, "A", "B", 5, 0, 0),
			{ID: 1, Type: model.ShotTypeSplay, From: "B", Length: 2, Azimuth: 0, Clino: 0},
		},
	}

	r := NewReconstructor(NewStationMap(), nil, nil)
	if err := r.ReconstructSurvey(survey, 0, &Seed{}); err != nil {
		t.Fatalf("ReconstructSurvey: %v", err)
	}

	if r.Stations.Has("splay-1@s1") {
		t.Errorf("splay anchored on an auxiliary station must not be placed")
	}
	if len(survey.OrphanShotIDs) != 1 || survey.OrphanShotIDs[0] != 1 {
		t.Errorf("OrphanShotIDs = %v, want [1]", survey.OrphanShotIDs)
	}
}

// A center shot blocked on its auxiliary from-side still resolves when
// its target is reachable from a center chain.
func TestReconstructSurvey_BlockedCenterResolvesFromOtherSide(t *testing.T) {
	survey := &model.Survey{
		Name: "s1",
		Shots: []model.Shot{
			auxShot(0, "A", "B", 5, 0, 0),
			centerShot(1, "B", "C", 5, 90, 0),
			centerShot(2, "A", "C", 7, 45, 0),
		},
	}

	r := NewReconstructor(NewStationMap(), nil, nil)
	if err := r.ReconstructSurvey(survey, 0, &Seed{}); err != nil {
		t.Fatalf("ReconstructSurvey: %v", err)
	}

	// Shot 2 places C from A; shot 1 then resolves backwards against
	// the placed C. B is already placed, so shot 1 becomes a redundant
	// connection, never an orphan.
	if !r.Stations.Has("C") {
		t.Fatalf("C should be placed via the center chain")
	}
	if len(survey.OrphanShotIDs) != 0 {
		t.Errorf("OrphanShotIDs = %v, want none", survey.OrphanShotIDs)
	}
}
