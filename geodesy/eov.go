package geodesy

import "math"

// EOV (Egységes Országos Vetület, EPSG:23700) is a Swiss-style oblique
// Mercator double projection on the GRS67 ellipsoid: ellipsoid to Gauss
// sphere, sphere rotated so the projection centre becomes the equator
// point, then a Mercator step. The inverse below undoes those steps and
// recovers the ellipsoidal latitude by Newton iteration.
//
// Axis convention: EOV Y is the easting, X the northing; callers pass
// them through ProjectedCoordinate.Easting/Northing.

const (
	// GRS67 ellipsoid.
	eovA  = 6378160.0
	eovF  = 1.0 / 298.247167427
	eovES = eovF * (2 - eovF)

	// Projection centre and scale.
	eovLat0 = 47.14439372222222 * math.Pi / 180
	eovLon0 = 19.04857177777778 * math.Pi / 180
	eovK0   = 0.99993

	// False easting / northing (metres).
	eovFE = 650000.0
	eovFN = 200000.0
)

// derived projection constants, computed once.
var eovP = newEOVParams()

type eovParams struct {
	e, halfE     float64
	c            float64
	sinp0, cosp0 float64
	bigK         float64
	kR           float64
}

func newEOVParams() eovParams {
	e := math.Sqrt(eovES)
	cp := math.Cos(eovLat0)
	c := math.Sqrt(1 + eovES*cp*cp*cp*cp/(1-eovES))
	sinp0 := math.Sin(eovLat0) / c
	phip0 := math.Asin(sinp0)

	esin := e * math.Sin(eovLat0)
	bigK := math.Log(math.Tan(math.Pi/4+phip0/2)) -
		c*(math.Log(math.Tan(math.Pi/4+eovLat0/2))-
			(e/2)*math.Log((1+esin)/(1-esin)))

	sin0 := math.Sin(eovLat0)
	kR := eovK0 * eovA * math.Sqrt(1-eovES) / (1 - eovES*sin0*sin0)

	return eovParams{
		e:     e,
		halfE: e / 2,
		c:     c,
		sinp0: sinp0,
		cosp0: math.Cos(phip0),
		bigK:  bigK,
		kR:    kR,
	}
}

// eovToLatLon converts EOV easting/northing (metres) to WGS84-grade
// latitude/longitude in degrees. The GRS67/WGS84 datum shift is below
// survey noise at cave scale and is not applied.
func eovToLatLon(easting, northing float64) (lat, lon float64) {
	x := easting - eovFE
	y := northing - eovFN

	// Mercator and sphere-rotation inverses.
	phipp := 2*math.Atan(math.Exp(y/eovP.kR)) - math.Pi/2
	lampp := x / eovP.kR

	cp := math.Cos(phipp)
	phip := math.Asin(eovP.cosp0*math.Sin(phipp) + eovP.sinp0*cp*math.Cos(lampp))
	lamp := math.Asin(cp * math.Sin(lampp) / math.Cos(phip))

	// Newton iteration back to the ellipsoidal latitude.
	con := (eovP.bigK - math.Log(math.Tan(math.Pi/4+phip/2))) / eovP.c
	for i := 0; i < 30; i++ {
		esp := eovP.e * math.Sin(phip)
		delp := (con + math.Log(math.Tan(math.Pi/4+phip/2)) -
			eovP.halfE*math.Log((1+esp)/(1-esp))) *
			(1 - esp*esp) * math.Cos(phip) / (1 - eovES)
		phip -= delp
		if math.Abs(delp) < 1e-11 {
			break
		}
	}

	lat = phip * 180 / math.Pi
	lon = (eovLon0 + lamp/eovP.c) * 180 / math.Pi
	return lat, lon
}
