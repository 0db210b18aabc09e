package samplesheet

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Score ranges: the winner reaches 10, the others stay below.
const (
	winningScore = 10
	minScore     = 4
)

// Headers returns the technical and the embedded header rows.
func Headers(resources []string) (technical, embedded []string) {
	technical = []string{"Season", "Game #", "Player", "Place", "VP", "Location", "Coordinates", "Month", "Date", "Game UUID"}
	embedded = []string{"season", "game", "player", "place", "score", "loc", "geoloc", "month", "Session", "uuid"}
	for _, r := range resources {
		technical = append(technical, "Produced "+r)
		embedded = append(embedded, "p_sum_"+r)
	}
	return technical, embedded
}

// Generate returns every row of the workbook, both header rows included.
// Output depends only on cfg.
func Generate(cfg Config) ([][]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible sample data

	technical, embedded := Headers(cfg.Resources)
	rows := [][]string{technical, embedded}

	for s := 0; s < cfg.Seasons; s++ {
		season := cfg.FirstSeason + s
		day := time.Date(season, time.January, 6, 0, 0, 0, 0, time.UTC)
		for g := 1; g <= cfg.Games; g++ {
			id, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				return nil, fmt.Errorf("game uuid: %w", err)
			}
			venue := cfg.Venues[rng.Intn(len(cfg.Venues))]
			places := rng.Perm(len(cfg.Players))
			for i, player := range cfg.Players {
				place := places[i] + 1
				score := winningScore
				if place != 1 {
					score = minScore + rng.Intn(winningScore-minScore)
				}
				row := []string{
					strconv.Itoa(season),
					strconv.Itoa(g),
					player,
					strconv.Itoa(place),
					strconv.Itoa(score),
					venue.Name,
					venue.Geoloc,
					day.Month().String(),
					day.Format("2006-01-02"),
					id.String(),
				}
				for range cfg.Resources {
					if rng.Float64() < cfg.BlankRate {
						row = append(row, "")
						continue
					}
					row = append(row, strconv.Itoa(rng.Intn(12)))
				}
				rows = append(rows, row)
			}
			day = day.AddDate(0, 0, 7+rng.Intn(14))
		}
	}
	return rows, nil
}
