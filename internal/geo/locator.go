// Package geo decodes Maidenhead grid locators and computes the great-circle
// distances used to score confirmed contacts.
package geo

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Subsquare size in degrees.
const (
	subsquareLon = 5.0 / 60.0
	subsquareLat = 2.5 / 60.0
)

var locatorRe = regexp.MustCompile(`(?i)^[A-R]{2}[0-9]{2}[A-X]{2}$`)

// Valid reports whether s is a 6-character Maidenhead locator (case-insensitive).
func Valid(s string) bool {
	return locatorRe.MatchString(s)
}

// Normalize trims and upper-cases a locator.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Square returns the lon/lat bounds of the subsquare named by a 6-character
// locator. Field letters A-R span 20° x 10°, digits 2° x 1°, subsquare letters
// A-X 5' x 2.5'.
func Square(locator string) (*geom.Bounds, error) {
	loc := Normalize(locator)
	if !Valid(loc) {
		return nil, eris.Errorf("geo: invalid locator %q", locator)
	}

	lon := float64(loc[0]-'A')*20 - 180 +
		float64(loc[2]-'0')*2 +
		float64(loc[4]-'A')*subsquareLon
	lat := float64(loc[1]-'A')*10 - 90 +
		float64(loc[3]-'0') +
		float64(loc[5]-'A')*subsquareLat

	return geom.NewBounds(geom.XY).Set(lon, lat, lon+subsquareLon, lat+subsquareLat), nil
}

// Decode returns the center of the locator's subsquare as a lon/lat point.
func Decode(locator string) (*geom.Point, error) {
	b, err := Square(locator)
	if err != nil {
		return nil, err
	}
	lon := (b.Min(0) + b.Max(0)) / 2
	lat := (b.Min(1) + b.Max(1)) / 2
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}), nil
}
