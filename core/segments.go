package core

import (
	"errors"
	"fmt"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

var ErrUnknownShotType = errors.New("unknown shot type")

// SegmentSet holds flat line-segment coordinate sequences for a survey,
// one (x1,y1,z1,x2,y2,z2) sextuple per drawable shot, grouped by shot
// type. Rendering consumers turn these directly into line geometry.
type SegmentSet struct {
	Center    []float64
	Splay     []float64
	Auxiliary []float64
}

// ExtractSegments builds the drawable segments of a survey from the
// resolved station map. Shots whose endpoints did not resolve to
// positions are silently skipped; an unknown shot type is data
// corruption and fails hard.
func ExtractSegments(survey *model.Survey, stations *StationMap) (SegmentSet, error) {
	var set SegmentSet

	for _, shot := range survey.ValidShots() {
		from := stations.Get(resolvedFromName(shot))
		to := stations.Get(resolvedTargetName(shot, survey.Name))
		if from == nil || to == nil {
			continue
		}

		sextuple := []float64{
			from.Position.X, from.Position.Y, from.Position.Z,
			to.Position.X, to.Position.Y, to.Position.Z,
		}

		switch shot.Type {
		case model.ShotTypeCenter:
			set.Center = append(set.Center, sextuple...)
		case model.ShotTypeSplay:
			set.Splay = append(set.Splay, sextuple...)
		case model.ShotTypeAuxiliary:
			set.Auxiliary = append(set.Auxiliary, sextuple...)
		default:
			return SegmentSet{}, fmt.Errorf("%w: shot %d in survey %q", ErrUnknownShotType, shot.ID, survey.Name)
		}
	}
	return set, nil
}

// resolvedFromName returns the station name the shot's near end was
// placed under, honouring an alias substitution from the last
// reconstruction.
func resolvedFromName(shot *model.Shot) string {
	if shot.FromAlias != "" {
		return shot.FromAlias
	}
	return shot.From
}

// resolvedTargetName is the far-end counterpart of resolvedFromName.
func resolvedTargetName(shot *model.Shot, surveyName string) string {
	if shot.ToAlias != "" {
		return shot.ToAlias
	}
	return shot.TargetStationName(surveyName)
}
