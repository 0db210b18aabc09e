// Package standings builds league tables from the enriched game table.
package standings

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/catan/internal/domain/model"
)

type tally struct {
	games  int
	wins   int
	points []float64
	scores []float64
	cum    float64
}

// Build returns one standing per player for season, or across all seasons
// when season is nil. Rows are ordered by points, then wins, then name.
func Build(t *model.Table, season *int) []model.Standing {
	byPlayer := make(map[string]*tally)
	var order []string
	for _, rec := range t.Filter(model.SeasonFilter(season)) {
		tl, ok := byPlayer[rec.Player]
		if !ok {
			tl = &tally{}
			byPlayer[rec.Player] = tl
			order = append(order, rec.Player)
		}
		tl.games++
		if rec.Place == 1 {
			tl.wins++
		}
		if rec.Points.Valid {
			tl.points = append(tl.points, rec.Points.Value)
		}
		if rec.Score.Valid {
			tl.scores = append(tl.scores, rec.Score.Value)
		}
		// Records are in GameID order, so the last one carries the final total.
		if season != nil {
			tl.cum = rec.PointsCumYTD
		} else {
			tl.cum = rec.PointsCum
		}
	}

	out := make([]model.Standing, 0, len(order))
	for _, p := range order {
		tl := byPlayer[p]
		st := model.Standing{
			Player:    p,
			Games:     tl.games,
			Wins:      tl.wins,
			Points:    floats.Sum(tl.points),
			PointsCum: tl.cum,
		}
		if len(tl.scores) > 0 {
			st.AverageScore = model.Some(stat.Mean(tl.scores, nil))
		}
		if tl.games > 0 {
			st.WinRate = float64(tl.wins) / float64(tl.games)
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// Seasons returns the distinct seasons in ascending order.
func Seasons(t *model.Table) []int {
	seen := make(map[int]bool)
	var out []int
	for _, rec := range t.Records {
		if !seen[rec.Season] {
			seen[rec.Season] = true
			out = append(out, rec.Season)
		}
	}
	sort.Ints(out)
	return out
}
