package model

// ShotRef identifies a shot by its owning survey name and shot ID.
// Stations reference their connecting shots through these plain keys
// instead of pointers, so the station map never forms reference cycles.
type ShotRef struct {
	Survey string
	ShotID int
}

// StationCoordinates groups the coordinate representations of a placed
// station. Local is always set; Projected and Geographic are only set
// when the station descends from a fix point.
type StationCoordinates struct {
	// Local is the position relative to the first fixed point (or the
	// seed origin) in the cave's local frame.
	Local Vector

	Projected  *ProjectedCoordinate
	Geographic *GeographicCoordinate
}

// SurveyStation is one resolved 3D point of the cave network. Stations
// are globally unique by name within a cave and have no identity across
// reconstructions: every pass discards and rebuilds them.
type SurveyStation struct {
	Name string
	Type ShotType

	// Position is the absolute position in the single shared local
	// frame of the cave. Once placed it is never moved.
	Position Vector

	Coordinates StationCoordinates

	// SurveyName is the survey whose shot placed this station.
	SurveyName string

	// Shots lists the shots connecting at this station, used by
	// downstream loop-closure analysis.
	Shots []ShotRef
}
