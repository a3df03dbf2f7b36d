package core

import (
	"math"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

// Polar is one polar measurement: distance in metres, azimuth and
// clino in radians. Azimuth 0 points north (+Y), π/2 points east (+X);
// clino +π/2 points straight up (+Z).
type Polar struct {
	Distance float64
	Azimuth  float64
	Clino    float64
}

// ToCartesian converts the polar measurement to a displacement vector
// in the local frame. This is the single polar-to-Cartesian helper all
// placement and segment code shares; the axis convention is fixed here
// and nowhere else.
func (p Polar) ToCartesian() model.Vector {
	horizontal := p.Distance * math.Cos(p.Clino)
	return model.Vector{
		X: horizontal * math.Sin(p.Azimuth),
		Y: horizontal * math.Cos(p.Azimuth),
		Z: p.Distance * math.Sin(p.Clino),
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// ShotDisplacement computes the displacement vector of a shot under a
// survey's corrections. The effective bearing is
// azimuth + declination - convergence: magnetic declination and
// map-projection meridian convergence fold into one adjusted bearing
// before the polar conversion.
func ShotDisplacement(shot *model.Shot, declination, convergence float64) model.Vector {
	p := Polar{
		Distance: shot.Length,
		Azimuth:  Radians(shot.Azimuth + declination - convergence),
		Clino:    Radians(shot.Clino),
	}
	return p.ToCartesian()
}
