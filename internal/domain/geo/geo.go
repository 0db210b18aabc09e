// Package geo parses spreadsheet coordinates and derives map views.
package geo

import (
	"strconv"
	"strings"

	"github.com/golang/geo/s2"

	"github.com/okian/catan/internal/domain/model"
)

// Separator splits the latitude and longitude of a geoloc cell.
const Separator = ", "

// ParseGeoloc splits raw on ", " into latitude and longitude. Anything other
// than exactly two numbers forming a valid coordinate yields undefined values
// and ok == false.
func ParseGeoloc(raw string) (lat, lon model.Num, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), Separator)
	if len(parts) != 2 {
		return model.None, model.None, false
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return model.None, model.None, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model.None, model.None, false
	}
	if !s2.LatLngFromDegrees(la, lo).IsValid() {
		return model.None, model.None, false
	}
	return model.Some(la), model.Some(lo), true
}

const cancelEpsilon = 1e-9

// Point is a coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Center returns the spherical centroid of the defined coordinates in
// summaries. ok is false when none is defined.
func Center(summaries []model.LocationSummary) (Point, bool) {
	var sum s2.Point
	n := 0
	for _, s := range summaries {
		if !s.Latitude.Valid || !s.Longitude.Valid {
			continue
		}
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(s.Latitude.Value, s.Longitude.Value))
		sum = s2.Point{Vector: sum.Add(p.Vector)}
		n++
	}
	if n == 0 {
		return Point{}, false
	}
	// Antipodal inputs cancel out; fall back to the first location.
	if sum.Norm() < cancelEpsilon {
		for _, s := range summaries {
			if s.Latitude.Valid && s.Longitude.Valid {
				return Point{Latitude: s.Latitude.Value, Longitude: s.Longitude.Value}, true
			}
		}
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return Point{Latitude: ll.Lat.Degrees(), Longitude: ll.Lng.Degrees()}, true
}
