package model

import (
	"math"
	"testing"
)

func TestShotValid(t *testing.T) {
	base := Shot{ID: 0, Type: ShotTypeCenter, From: "A", To: "B", Length: 10, Azimuth: 0, Clino: 0}
	if !base.Valid() {
		t.Fatalf("baseline shot should be valid")
	}

	cases := []struct {
		name   string
		mutate func(*Shot)
	}{
		{"empty from", func(s *Shot) { s.From = "" }},
		{"self loop", func(s *Shot) { s.To = "A" }},
		{"zero length", func(s *Shot) { s.Length = 0 }},
		{"negative length", func(s *Shot) { s.Length = -3 }},
		{"nan length", func(s *Shot) { s.Length = math.NaN() }},
		{"inf azimuth", func(s *Shot) { s.Azimuth = math.Inf(1) }},
		{"azimuth too high", func(s *Shot) { s.Azimuth = 361 }},
		{"azimuth too low", func(s *Shot) { s.Azimuth = -361 }},
		{"clino too high", func(s *Shot) { s.Clino = 91 }},
		{"clino too low", func(s *Shot) { s.Clino = -91 }},
	}
	for _, tc := range cases {
		s := base
		tc.mutate(&s)
		if s.Valid() {
			t.Errorf("%s: shot should be invalid", tc.name)
		}
	}

	// Boundary values are allowed.
	for _, az := range []float64{-360, 360} {
		s := base
		s.Azimuth = az
		if !s.Valid() {
			t.Errorf("azimuth %v should be valid", az)
		}
	}
	for _, cl := range []float64{-90, 90} {
		s := base
		s.Clino = cl
		if !s.Valid() {
			t.Errorf("clino %v should be valid", cl)
		}
	}
}

func TestShotComplete(t *testing.T) {
	center := Shot{ID: 0, Type: ShotTypeCenter, From: "A", To: "B"}
	if !center.Complete() {
		t.Errorf("center shot with target should be complete")
	}

	center.To = ""
	if center.Complete() {
		t.Errorf("center shot without target must be incomplete")
	}

	splay := Shot{ID: 1, Type: ShotTypeSplay, From: "A"}
	if !splay.Complete() {
		t.Errorf("splay without target should be complete")
	}

	unknown := Shot{ID: 2, Type: ShotTypeUnknown, From: "A", To: "B"}
	if unknown.Complete() {
		t.Errorf("unknown-typed shot must be incomplete")
	}

	negID := Shot{ID: -1, Type: ShotTypeCenter, From: "A", To: "B"}
	if negID.Complete() {
		t.Errorf("negative id must be incomplete")
	}
}

func TestTargetStationName(t *testing.T) {
	center := Shot{ID: 4, Type: ShotTypeCenter, From: "A", To: "B"}
	if got := center.TargetStationName("s1"); got != "B" {
		t.Errorf("center target = %q, want B", got)
	}

	splay := Shot{ID: 4, Type: ShotTypeSplay, From: "A"}
	if got := splay.TargetStationName("s1"); got != "splay-4@s1" {
		t.Errorf("splay target = %q, want splay-4@s1", got)
	}
}

func TestParseShotType(t *testing.T) {
	cases := map[string]ShotType{
		"center":     ShotTypeCenter,
		"Center":     ShotTypeCenter,
		"centerline": ShotTypeCenter,
		" splay ":    ShotTypeSplay,
		"auxiliary":  ShotTypeAuxiliary,
		"aux":        ShotTypeAuxiliary,
		"wiggle":     ShotTypeUnknown,
		"":           ShotTypeUnknown,
	}
	for in, want := range cases {
		if got := ParseShotType(in); got != want {
			t.Errorf("ParseShotType(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestShotTypeStringRoundTrip(t *testing.T) {
	for _, typ := range []ShotType{ShotTypeCenter, ShotTypeSplay, ShotTypeAuxiliary} {
		if got := ParseShotType(typ.String()); got != typ {
			t.Errorf("round trip %v came back as %v", typ, got)
		}
	}
}
