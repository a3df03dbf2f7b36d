package model

import "time"

// Instrument is one measuring device used on a survey trip, together
// with its calibration correction value.
type Instrument struct {
	Name       string
	Correction float64
}

// SurveyMetadata carries the trip-level facts that affect
// reconstruction (declination, meridian convergence) plus bookkeeping.
type SurveyMetadata struct {
	Date        time.Time
	Declination float64
	Convergence float64
	Team        []string
	Instruments []Instrument
}

// Survey is an ordered set of shots sharing one reference frame.
//
// OrphanShotIDs, DuplicateShotIDs, and Isolated are reconstruction
// diagnostics: they are fully recomputed (never merged) on every
// reconstruction pass, so stale diagnostics cannot linger.
type Survey struct {
	Name     string
	Visible  bool
	Metadata SurveyMetadata

	// Start is the explicit start station name. When empty, the first
	// shot's From is the implicit start; reconstruction writes the
	// effective value back here.
	Start string

	Shots []Shot

	OrphanShotIDs    []int
	DuplicateShotIDs []int
	Isolated         bool
}

// ValidShots returns pointers to the shots that are both valid and
// complete, in shot order. The reconstruction engine, segment
// extraction, and the distance traversal all operate on this subset.
func (s *Survey) ValidShots() []*Shot {
	out := make([]*Shot, 0, len(s.Shots))
	for i := range s.Shots {
		sh := &s.Shots[i]
		if sh.Valid() && sh.Complete() {
			out = append(out, sh)
		}
	}
	return out
}

// StartStation returns the effective start station name: the explicit
// Start when set, otherwise the From of the first valid shot. Empty
// when the survey has no valid shots at all.
func (s *Survey) StartStation() string {
	if s.Start != "" {
		return s.Start
	}
	for i := range s.Shots {
		if s.Shots[i].Valid() {
			return s.Shots[i].From
		}
	}
	return ""
}

// ResetDiagnostics clears the per-pass reconstruction outputs.
func (s *Survey) ResetDiagnostics() {
	s.OrphanShotIDs = nil
	s.DuplicateShotIDs = nil
	s.Isolated = false
	for i := range s.Shots {
		s.Shots[i].FromAlias = ""
		s.Shots[i].ToAlias = ""
	}
}
