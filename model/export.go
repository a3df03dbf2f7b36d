package model

import (
	"fmt"
	"time"
)

// Export shapes are the plain-data serialization form of the model.
// They round-trip every field of the data model exactly; dates travel
// as epoch milliseconds. Project files, the HTTP API, and the store all
// speak this shape.

type ShotExport struct {
	ID      int     `json:"id"`
	Type    string  `json:"type"`
	From    string  `json:"from"`
	To      string  `json:"to,omitempty"`
	Length  float64 `json:"length"`
	Azimuth float64 `json:"azimuth"`
	Clino   float64 `json:"clino"`
	Comment string  `json:"comment,omitempty"`
}

type InstrumentExport struct {
	Name       string  `json:"name"`
	Correction float64 `json:"correction"`
}

type SurveyMetadataExport struct {
	Date        int64              `json:"date"`
	Declination float64            `json:"declination"`
	Convergence float64            `json:"convergence"`
	Team        []string           `json:"team,omitempty"`
	Instruments []InstrumentExport `json:"instruments,omitempty"`
}

type SurveyExport struct {
	Name             string               `json:"name"`
	Visible          bool                 `json:"visible"`
	Metadata         SurveyMetadataExport `json:"metadata"`
	Start            string               `json:"start,omitempty"`
	Shots            []ShotExport         `json:"shots"`
	OrphanShotIDs    []int                `json:"orphanShotIds,omitempty"`
	DuplicateShotIDs []int                `json:"duplicateShotIds,omitempty"`
	Isolated         bool                 `json:"isolated"`
}

type AliasExport struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ProjectedCoordinateExport struct {
	Easting   float64 `json:"easting"`
	Northing  float64 `json:"northing"`
	Elevation float64 `json:"elevation"`
}

type CoordinateSystemExport struct {
	Kind     string `json:"kind"`
	Zone     int    `json:"zone,omitempty"`
	Northern bool   `json:"northern,omitempty"`
}

type FixPointExport struct {
	Station    string                    `json:"station"`
	Coordinate ProjectedCoordinateExport `json:"coordinate"`
}

type GeoDataExport struct {
	System    CoordinateSystemExport `json:"coordinateSystem"`
	FixPoints []FixPointExport       `json:"fixPoints"`
}

type CaveMetadataExport struct {
	Settlement string `json:"settlement,omitempty"`
	Region     string `json:"region,omitempty"`
	Country    string `json:"country,omitempty"`
}

type CaveExport struct {
	Name       string             `json:"name"`
	Metadata   CaveMetadataExport `json:"metadata"`
	Attributes map[string]string  `json:"attributes,omitempty"`
	Surveys    []SurveyExport     `json:"surveys"`
	Aliases    []AliasExport      `json:"aliases,omitempty"`
	GeoData    *GeoDataExport     `json:"geoData,omitempty"`
}

// ToExport converts the cave into its serialization form.
func (c *Cave) ToExport() CaveExport {
	out := CaveExport{
		Name: c.Name,
		Metadata: CaveMetadataExport{
			Settlement: c.Metadata.Settlement,
			Region:     c.Metadata.Region,
			Country:    c.Metadata.Country,
		},
		Attributes: c.Attributes,
	}
	for _, s := range c.Surveys {
		out.Surveys = append(out.Surveys, s.ToExport())
	}
	for _, a := range c.Aliases {
		out.Aliases = append(out.Aliases, AliasExport{From: a.From, To: a.To})
	}
	if c.GeoData != nil {
		gd := GeoDataExport{
			System: CoordinateSystemExport{
				Kind:     c.GeoData.System.Kind.String(),
				Zone:     c.GeoData.System.Zone,
				Northern: c.GeoData.System.Northern,
			},
		}
		for _, fp := range c.GeoData.FixPoints {
			gd.FixPoints = append(gd.FixPoints, FixPointExport{
				Station: fp.StationName,
				Coordinate: ProjectedCoordinateExport{
					Easting:   fp.Coordinate.Easting,
					Northing:  fp.Coordinate.Northing,
					Elevation: fp.Coordinate.Elevation,
				},
			})
		}
		out.GeoData = &gd
	}
	return out
}

// ToExport converts the survey into its serialization form, including
// the latest reconstruction diagnostics.
func (s *Survey) ToExport() SurveyExport {
	out := SurveyExport{
		Name:    s.Name,
		Visible: s.Visible,
		Metadata: SurveyMetadataExport{
			Date:        s.Metadata.Date.UnixMilli(),
			Declination: s.Metadata.Declination,
			Convergence: s.Metadata.Convergence,
			Team:        s.Metadata.Team,
		},
		Start:            s.Start,
		OrphanShotIDs:    s.OrphanShotIDs,
		DuplicateShotIDs: s.DuplicateShotIDs,
		Isolated:         s.Isolated,
	}
	for _, in := range s.Metadata.Instruments {
		out.Metadata.Instruments = append(out.Metadata.Instruments,
			InstrumentExport{Name: in.Name, Correction: in.Correction})
	}
	for i := range s.Shots {
		sh := &s.Shots[i]
		out.Shots = append(out.Shots, ShotExport{
			ID:      sh.ID,
			Type:    sh.Type.String(),
			From:    sh.From,
			To:      sh.To,
			Length:  sh.Length,
			Azimuth: sh.Azimuth,
			Clino:   sh.Clino,
			Comment: sh.Comment,
		})
	}
	return out
}

// CaveFromExport rebuilds a cave from its serialization form, enforcing
// survey-name uniqueness and known shot types.
func CaveFromExport(e CaveExport) (*Cave, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("cave has no name")
	}
	cave := &Cave{
		Name: e.Name,
		Metadata: CaveMetadata{
			Settlement: e.Metadata.Settlement,
			Region:     e.Metadata.Region,
			Country:    e.Metadata.Country,
		},
		Attributes: e.Attributes,
	}
	for i := range e.Surveys {
		s, err := SurveyFromExport(e.Surveys[i])
		if err != nil {
			return nil, fmt.Errorf("cave %q: %w", e.Name, err)
		}
		if err := cave.AddSurvey(s); err != nil {
			return nil, err
		}
	}
	for _, a := range e.Aliases {
		if a.From == "" || a.To == "" {
			return nil, fmt.Errorf("cave %q: alias with empty endpoint", e.Name)
		}
		cave.Aliases = append(cave.Aliases, SurveyAlias{From: a.From, To: a.To})
	}
	if e.GeoData != nil {
		gd, err := geoDataFromExport(*e.GeoData)
		if err != nil {
			return nil, fmt.Errorf("cave %q: %w", e.Name, err)
		}
		cave.GeoData = gd
	}
	return cave, nil
}

// SurveyFromExport rebuilds a survey from its serialization form.
func SurveyFromExport(e SurveyExport) (*Survey, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("survey has no name")
	}
	s := &Survey{
		Name:    e.Name,
		Visible: e.Visible,
		Metadata: SurveyMetadata{
			Date:        time.UnixMilli(e.Metadata.Date).UTC(),
			Declination: e.Metadata.Declination,
			Convergence: e.Metadata.Convergence,
			Team:        e.Metadata.Team,
		},
		Start:            e.Start,
		OrphanShotIDs:    e.OrphanShotIDs,
		DuplicateShotIDs: e.DuplicateShotIDs,
		Isolated:         e.Isolated,
	}
	for _, in := range e.Metadata.Instruments {
		s.Metadata.Instruments = append(s.Metadata.Instruments,
			Instrument{Name: in.Name, Correction: in.Correction})
	}
	for _, sh := range e.Shots {
		typ := ParseShotType(sh.Type)
		if typ == ShotTypeUnknown {
			return nil, fmt.Errorf("survey %q: shot %d has unknown type %q", e.Name, sh.ID, sh.Type)
		}
		s.Shots = append(s.Shots, Shot{
			ID:      sh.ID,
			Type:    typ,
			From:    sh.From,
			To:      sh.To,
			Length:  sh.Length,
			Azimuth: sh.Azimuth,
			Clino:   sh.Clino,
			Comment: sh.Comment,
		})
	}
	return s, nil
}

func geoDataFromExport(e GeoDataExport) (*GeoData, error) {
	kind := ParseCoordinateSystemKind(e.System.Kind)
	if kind == CoordinateSystemUnknown {
		return nil, fmt.Errorf("unknown coordinate system %q", e.System.Kind)
	}
	gd := &GeoData{
		System: CoordinateSystem{Kind: kind, Zone: e.System.Zone, Northern: e.System.Northern},
	}
	if err := gd.System.Validate(); err != nil {
		return nil, err
	}
	for _, fp := range e.FixPoints {
		if fp.Station == "" {
			return nil, fmt.Errorf("fix point with empty station name")
		}
		gd.FixPoints = append(gd.FixPoints, FixPoint{
			StationName: fp.Station,
			Coordinate: ProjectedCoordinate{
				Easting:   fp.Coordinate.Easting,
				Northing:  fp.Coordinate.Northing,
				Elevation: fp.Coordinate.Elevation,
			},
		})
	}
	return gd, nil
}
