package enrich

import "strings"

// DefaultResources lists the production categories tracked per game.
var DefaultResources = []string{"wood", "clay", "sheep", "grain", "ore", "paper", "coin", "fabric"}

// DefaultPlacePoints maps a finishing place to league points.
func DefaultPlacePoints() map[int]float64 {
	return map[int]float64{1: 2, 2: 1, 3: 0}
}

// Option applies a configuration option to the Enricher.
type Option func(*Enricher)

// WithResources sets the resource names; p_sum_<name> columns are read for each.
func WithResources(resources []string) Option {
	return func(e *Enricher) {
		if len(resources) == 0 {
			return
		}
		e.resources = make([]string, 0, len(resources))
		for _, r := range resources {
			if r = strings.TrimSpace(r); r != "" {
				e.resources = append(e.resources, r)
			}
		}
	}
}

// WithPlacePoints sets the place -> points table.
func WithPlacePoints(points map[int]float64) Option {
	return func(e *Enricher) {
		if len(points) == 0 {
			return
		}
		e.placePoints = make(map[int]float64, len(points))
		for place, p := range points {
			e.placePoints[place] = p
		}
	}
}

// WithStrictPlaces makes a place outside the points table abort the load
// instead of leaving that row's points undefined.
func WithStrictPlaces(strict bool) Option {
	return func(e *Enricher) {
		e.strictPlaces = strict
	}
}

// WithRoster fixes the player order used by the table. Players found in the
// data but not in the roster are appended in order of appearance.
func WithRoster(players []string) Option {
	return func(e *Enricher) {
		e.roster = append([]string(nil), players...)
	}
}
