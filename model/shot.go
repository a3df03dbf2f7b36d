package model

import (
	"fmt"
	"math"
	"strings"
)

// ShotType classifies a measured leg. It is a closed enum so that
// placement eligibility and segment extraction can match exhaustively
// instead of comparing strings.
type ShotType int

const (
	ShotTypeUnknown ShotType = iota
	ShotTypeCenter
	ShotTypeSplay
	ShotTypeAuxiliary
)

// String returns the canonical lower-case tag used in project files.
func (t ShotType) String() string {
	switch t {
	case ShotTypeCenter:
		return "center"
	case ShotTypeSplay:
		return "splay"
	case ShotTypeAuxiliary:
		return "auxiliary"
	default:
		return "unknown"
	}
}

// ParseShotType maps a project-file tag to a ShotType. Unknown tags map
// to ShotTypeUnknown; callers decide whether that is an error.
func ParseShotType(s string) ShotType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "center", "centerline":
		return ShotTypeCenter
	case "splay":
		return ShotTypeSplay
	case "auxiliary", "aux":
		return ShotTypeAuxiliary
	default:
		return ShotTypeUnknown
	}
}

// Shot is a single measured leg between two stations, or between a
// station and empty space for splays.
//
// FromAlias and ToAlias are reconstruction scratch state: when a shot is
// placed through a station alias, the engine records the substituted
// station name here. Both are reset at the start of every
// reconstruction pass and are never serialized.
type Shot struct {
	ID      int
	Type    ShotType
	From    string
	To      string
	Length  float64
	Azimuth float64
	Clino   float64
	Comment string

	FromAlias string
	ToAlias   string
}

// Valid reports whether the shot's fields satisfy the measurement
// constraints: finite numbers, positive length, azimuth within
// [-360, 360], clino within [-90, 90], from present and distinct
// from to.
func (s *Shot) Valid() bool {
	if s.From == "" {
		return false
	}
	if s.To != "" && s.From == s.To {
		return false
	}
	if !isFinite(s.Length) || !isFinite(s.Azimuth) || !isFinite(s.Clino) {
		return false
	}
	if s.Length <= 0 {
		return false
	}
	if s.Azimuth < -360 || s.Azimuth > 360 {
		return false
	}
	if s.Clino < -90 || s.Clino > 90 {
		return false
	}
	return true
}

// Complete reports whether every required field is present. To and
// Comment are exempt: splays never carry a target station.
func (s *Shot) Complete() bool {
	if s.ID < 0 || s.Type == ShotTypeUnknown || s.From == "" {
		return false
	}
	// Non-splay shots need a target to participate in the network.
	if s.Type != ShotTypeSplay && s.To == "" {
		return false
	}
	return true
}

// TargetStationName returns the station name this shot's far end
// resolves to. Splay targets are synthesized so each splay gets a
// unique leaf station; other types use the alias-resolved To.
func (s *Shot) TargetStationName(surveyName string) string {
	if s.Type == ShotTypeSplay {
		return fmt.Sprintf("splay-%d@%s", s.ID, surveyName)
	}
	return s.To
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
