// Package hover builds one summary per location: average score per player,
// games played there and wins per player, rendered as a text block for map
// tooltips.
package hover

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/catan/internal/domain/model"
)

// Builder produces location summaries from an enriched table.
type Builder struct {
	playersPerGame int
	roster         []string
	lineBreak      string
}

// New creates a Builder for three-player games with newline separated text.
func New(opts ...Option) *Builder {
	b := &Builder{
		playersPerGame: DefaultPlayersPerGame,
		lineBreak:      "\n",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type locationStats struct {
	first  model.GameRecord
	rows   int
	scores map[string][]float64
	played map[string]bool
	wins   map[string]int
}

// Summaries returns one summary per distinct location, in order of first
// appearance in the table.
func (b *Builder) Summaries(ctx context.Context, t *model.Table) ([]model.LocationSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var order []string
	byLoc := make(map[string]*locationStats)
	for _, rec := range t.Records {
		ls, ok := byLoc[rec.Loc]
		if !ok {
			ls = &locationStats{
				first:  rec,
				scores: make(map[string][]float64),
				played: make(map[string]bool),
				wins:   make(map[string]int),
			}
			byLoc[rec.Loc] = ls
			order = append(order, rec.Loc)
		}
		ls.rows++
		ls.played[rec.Player] = true
		if rec.Score.Valid {
			ls.scores[rec.Player] = append(ls.scores[rec.Player], rec.Score.Value)
		}
		if rec.Place == 1 {
			ls.wins[rec.Player]++
		}
	}

	players := b.players(t)
	out := make([]model.LocationSummary, 0, len(order))
	for _, loc := range order {
		ls := byLoc[loc]
		s := model.LocationSummary{
			Loc:         loc,
			Latitude:    ls.first.Latitude,
			Longitude:   ls.first.Longitude,
			MeanScores:  make([]model.PlayerValue, 0, len(players)),
			GamesPlayed: b.games(ls.rows),
		}
		for _, p := range players {
			mean := 0.0
			if scores := ls.scores[p]; len(scores) > 0 {
				mean = stat.Mean(scores, nil)
			}
			s.MeanScores = append(s.MeanScores, model.PlayerValue{Player: p, Value: mean})
			if ls.played[p] {
				s.Wins = append(s.Wins, model.PlayerCount{Player: p, Count: ls.wins[p]})
			}
		}
		s.Details = b.render(s)
		out = append(out, s)
	}
	return out, nil
}

// Merge joins every record with the summary text of its location.
func (b *Builder) Merge(ctx context.Context, t *model.Table) ([]model.AnnotatedRecord, error) {
	summaries, err := b.Summaries(ctx, t)
	if err != nil {
		return nil, err
	}
	return merge(t, index(summaries)), nil
}

func index(summaries []model.LocationSummary) map[string]model.LocationSummary {
	byLoc := make(map[string]model.LocationSummary, len(summaries))
	for _, s := range summaries {
		byLoc[s.Loc] = s
	}
	return byLoc
}

func merge(t *model.Table, byLoc map[string]model.LocationSummary) []model.AnnotatedRecord {
	out := make([]model.AnnotatedRecord, len(t.Records))
	for i, rec := range t.Records {
		out[i] = model.AnnotatedRecord{Record: rec, Details: byLoc[rec.Loc].Details}
	}
	return out
}

// Dedupe keeps the first record of each location, in input order.
func Dedupe(rows []model.AnnotatedRecord) []model.AnnotatedRecord {
	seen := make(map[string]bool, len(rows))
	out := make([]model.AnnotatedRecord, 0, len(rows))
	for _, r := range rows {
		if seen[r.Record.Loc] {
			continue
		}
		seen[r.Record.Loc] = true
		out = append(out, r)
	}
	return out
}

// Locations returns the map-ready summaries: one per location, positioned at
// the coordinates of the location's first record.
func (b *Builder) Locations(ctx context.Context, t *model.Table) ([]model.LocationSummary, error) {
	summaries, err := b.Summaries(ctx, t)
	if err != nil {
		return nil, err
	}
	byLoc := index(summaries)
	unique := Dedupe(merge(t, byLoc))
	out := make([]model.LocationSummary, 0, len(unique))
	for _, r := range unique {
		s := byLoc[r.Record.Loc]
		s.Latitude, s.Longitude = r.Record.Latitude, r.Record.Longitude
		s.Details = r.Details
		out = append(out, s)
	}
	return out, nil
}

func (b *Builder) games(rows int) int {
	if b.playersPerGame <= 0 || rows == 0 {
		return 0
	}
	return int(math.Round(float64(rows) / float64(b.playersPerGame)))
}

func (b *Builder) players(t *model.Table) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{b.roster, t.Players} {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	for _, rec := range t.Records {
		if !seen[rec.Player] {
			seen[rec.Player] = true
			out = append(out, rec.Player)
		}
	}
	return out
}

func (b *Builder) render(s model.LocationSummary) string {
	var lines []string
	lines = append(lines, "Average score:")
	for _, v := range s.MeanScores {
		lines = append(lines, fmt.Sprintf("%s: %.2f", v.Player, v.Value))
	}
	lines = append(lines, "", fmt.Sprintf("Games played: %d", s.GamesPlayed), "")
	for _, w := range s.Wins {
		lines = append(lines, fmt.Sprintf("%s Wins: %d", w.Player, w.Count))
	}
	return strings.Join(lines, b.lineBreak)
}
