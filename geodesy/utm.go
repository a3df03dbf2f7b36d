package geodesy

import "math"

// UTM inverse transverse Mercator on WGS84, standard series expansion
// (Snyder, Map Projections — A Working Manual, eq. 8-17..8-25).

const (
	utmA  = 6378137.0
	utmF  = 1.0 / 298.257223563
	utmK0 = 0.9996
	utmFE = 500000.0
	utmFN = 10000000.0 // southern hemisphere false northing
)

// utmToLatLon converts UTM easting/northing (metres) in the given zone
// and hemisphere to latitude/longitude in degrees.
func utmToLatLon(easting, northing float64, zone int, northern bool) (lat, lon float64) {
	es := utmF * (2 - utmF)
	ep2 := es / (1 - es)

	x := easting - utmFE
	y := northing
	if !northern {
		y -= utmFN
	}

	// Footpoint latitude from the meridional arc.
	m := y / utmK0
	mu := m / (utmA * (1 - es/4 - 3*es*es/64 - 5*es*es*es/256))
	e1 := (1 - math.Sqrt(1-es)) / (1 + math.Sqrt(1-es))

	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sin1 := math.Sin(phi1)
	cos1 := math.Cos(phi1)
	tan1 := math.Tan(phi1)

	c1 := ep2 * cos1 * cos1
	t1 := tan1 * tan1
	n1 := utmA / math.Sqrt(1-es*sin1*sin1)
	r1 := utmA * (1 - es) / math.Pow(1-es*sin1*sin1, 1.5)
	d := x / (n1 * utmK0)

	phi := phi1 - (n1*tan1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d*d*d*d*d*d/720)

	lam := (d -
		(1+2*t1+c1)*d*d*d/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d*d*d*d*d/120) / cos1

	lon0 := float64(zone-1)*6 - 180 + 3

	lat = phi * 180 / math.Pi
	lon = lon0 + lam*180/math.Pi
	return lat, lon
}
