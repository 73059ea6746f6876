package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// EarthRadiusKM is the radius used for contest distance scoring.
const EarthRadiusKM = 6373.0

// Distance returns the great-circle distance in whole kilometers between the
// subsquare centers of two locators. Identical locators and distances that
// round to zero return 1 so a confirmed contact always scores.
func Distance(a, b string) (int, error) {
	if Normalize(a) == Normalize(b) && Valid(Normalize(a)) {
		return 1, nil
	}

	p1, err := Decode(a)
	if err != nil {
		return 0, eris.Wrap(err, "geo: distance")
	}
	p2, err := Decode(b)
	if err != nil {
		return 0, eris.Wrap(err, "geo: distance")
	}

	km := int(math.Round(centralAngle(p1.X(), p1.Y(), p2.X(), p2.Y()) * EarthRadiusKM))
	if km == 0 {
		return 1, nil
	}
	return km, nil
}

// centralAngle uses the spherical law of cosines; inputs are degrees.
func centralAngle(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	c := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	// Rounding can push c just outside [-1, 1].
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}
