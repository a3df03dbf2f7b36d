// Package geodesy converts projected survey coordinates to WGS84
// geographic coordinates. All functions are pure: the reconstruction
// engine calls them per placed station and nothing here keeps state.
package geodesy

import (
	"errors"
	"fmt"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

var ErrUnknownSystem = errors.New("unknown coordinate system")

// ToLatLon converts a projected coordinate expressed in the given
// coordinate system to WGS84 latitude/longitude in degrees. Unknown
// system tags are an error; the elevation component is carried by the
// projected coordinate and is not part of the result.
func ToLatLon(coord model.ProjectedCoordinate, cs model.CoordinateSystem) (model.GeographicCoordinate, error) {
	switch cs.Kind {
	case model.CoordinateSystemEOV:
		lat, lon := eovToLatLon(coord.Easting, coord.Northing)
		return model.GeographicCoordinate{Latitude: lat, Longitude: lon}, nil
	case model.CoordinateSystemUTM:
		if cs.Zone < 1 || cs.Zone > 60 {
			return model.GeographicCoordinate{}, fmt.Errorf("utm zone %d out of range 1-60", cs.Zone)
		}
		lat, lon := utmToLatLon(coord.Easting, coord.Northing, cs.Zone, cs.Northern)
		return model.GeographicCoordinate{Latitude: lat, Longitude: lon}, nil
	default:
		return model.GeographicCoordinate{}, fmt.Errorf("%w: %v", ErrUnknownSystem, cs.Kind)
	}
}
