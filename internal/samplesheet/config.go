// Package samplesheet generates synthetic league workbooks in the layout the
// dashboard reads: a technical header row, the embedded header row, then one
// row per player per game.
package samplesheet

import (
	"errors"
	"fmt"
)

// Default generator settings.
const (
	DefaultSeasons     = 2
	DefaultGames       = 12
	DefaultFirstSeason = 2023
	DefaultSheet       = "games"
	DefaultOut         = "catan_data.xlsx"
)

// ErrInvalidConfig is returned for unusable generator settings.
var ErrInvalidConfig = errors.New("invalid sample sheet config")

// Venue is a named place with a "lat, lon" geoloc cell.
type Venue struct {
	Name   string
	Geoloc string
}

// DefaultPlayers is the three-player league roster.
var DefaultPlayers = []string{"Anna", "Ben", "Clara"}

// DefaultVenues is the fixed list of places games are played at.
var DefaultVenues = []Venue{
	{Name: "Vienna", Geoloc: "48.2082, 16.3738"},
	{Name: "Graz", Geoloc: "47.0707, 15.4395"},
	{Name: "Salzburg", Geoloc: "47.8095, 13.0550"},
	{Name: "Linz", Geoloc: "48.3069, 14.2858"},
	{Name: "Innsbruck", Geoloc: "47.2692, 11.4041"},
}

// DefaultResources mirrors the production columns the enricher reads.
var DefaultResources = []string{"wood", "clay", "sheep", "grain", "ore", "paper", "coin", "fabric"}

// Config holds generator settings.
type Config struct {
	Out         string  // Output workbook path
	Sheet       string  // Sheet name
	Seasons     int     // Number of seasons
	Games       int     // Games per season (below 100)
	FirstSeason int     // Season number of the first season
	Seed        int64   // Random seed; equal seeds give equal workbooks
	BlankRate   float64 // Probability that a production cell is left empty
	Players     []string
	Venues      []Venue
	Resources   []string
}

// DefaultConfig returns a Config filled with the package defaults.
func DefaultConfig() Config {
	return Config{
		Out:         DefaultOut,
		Sheet:       DefaultSheet,
		Seasons:     DefaultSeasons,
		Games:       DefaultGames,
		FirstSeason: DefaultFirstSeason,
		Seed:        1,
		BlankRate:   0.05,
		Players:     append([]string(nil), DefaultPlayers...),
		Venues:      append([]Venue(nil), DefaultVenues...),
		Resources:   append([]string(nil), DefaultResources...),
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch {
	case c.Seasons < 1:
		return fmt.Errorf("%w: seasons must be at least 1", ErrInvalidConfig)
	case c.Games < 1 || c.Games > 99:
		return fmt.Errorf("%w: games must be within 1..99", ErrInvalidConfig)
	case len(c.Players) < 2:
		return fmt.Errorf("%w: need at least two players", ErrInvalidConfig)
	case len(c.Venues) == 0:
		return fmt.Errorf("%w: need at least one venue", ErrInvalidConfig)
	case c.BlankRate < 0 || c.BlankRate >= 1:
		return fmt.Errorf("%w: blank rate must be within [0, 1)", ErrInvalidConfig)
	}
	return nil
}
