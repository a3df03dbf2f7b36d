package model

import (
	"fmt"
	"strings"
)

// CoordinateSystemKind tags the projected coordinate system a cave's
// fix points are expressed in.
type CoordinateSystemKind int

const (
	CoordinateSystemUnknown CoordinateSystemKind = iota
	CoordinateSystemEOV
	CoordinateSystemUTM
)

func (k CoordinateSystemKind) String() string {
	switch k {
	case CoordinateSystemEOV:
		return "eov"
	case CoordinateSystemUTM:
		return "utm"
	default:
		return "unknown"
	}
}

// ParseCoordinateSystemKind maps a project-file tag to a kind.
func ParseCoordinateSystemKind(s string) CoordinateSystemKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eov":
		return CoordinateSystemEOV
	case "utm":
		return CoordinateSystemUTM
	default:
		return CoordinateSystemUnknown
	}
}

// CoordinateSystem identifies a projected coordinate system. Zone and
// Northern only apply to UTM.
type CoordinateSystem struct {
	Kind     CoordinateSystemKind
	Zone     int
	Northern bool
}

// Validate checks the system is usable for conversion.
func (cs CoordinateSystem) Validate() error {
	switch cs.Kind {
	case CoordinateSystemEOV:
		return nil
	case CoordinateSystemUTM:
		if cs.Zone < 1 || cs.Zone > 60 {
			return fmt.Errorf("utm zone %d out of range 1-60", cs.Zone)
		}
		return nil
	default:
		return fmt.Errorf("unknown coordinate system kind %d", int(cs.Kind))
	}
}

// ProjectedCoordinate is a grid coordinate with elevation. Easting and
// Northing follow the system's axis convention (EOV: Y easting,
// X northing).
type ProjectedCoordinate struct {
	Easting   float64
	Northing  float64
	Elevation float64
}

// GeographicCoordinate is a WGS84 latitude/longitude pair in degrees.
type GeographicCoordinate struct {
	Latitude  float64
	Longitude float64
}

// FixPoint ties a station name to a known projected coordinate. Fix
// points seed absolute placement and geographic conversion.
type FixPoint struct {
	StationName string
	Coordinate  ProjectedCoordinate
}

// GeoData is a cave's geo-reference: the coordinate system its fix
// points are expressed in plus the fix points themselves.
type GeoData struct {
	System    CoordinateSystem
	FixPoints []FixPoint
}

// FixPointFor returns the fix point for the given station name, or nil.
func (g *GeoData) FixPointFor(stationName string) *FixPoint {
	if g == nil {
		return nil
	}
	for i := range g.FixPoints {
		if g.FixPoints[i].StationName == stationName {
			return &g.FixPoints[i]
		}
	}
	return nil
}
