// Package progress derives cumulative league-point curves per player.
package progress

import "github.com/okian/catan/internal/domain/model"

// Series returns one curve per player. For a season, X is the game number
// and the curve follows PointsCumYTD; otherwise X counts the distinct games
// of the whole league and the curve follows PointsCum.
func Series(t *model.Table, season *int) []model.ProgressSeries {
	byPlayer := make(map[string]*model.ProgressSeries)
	var order []string
	ordinal := 0
	lastGame := -1
	for _, rec := range t.Filter(model.SeasonFilter(season)) {
		if rec.GameID != lastGame {
			ordinal++
			lastGame = rec.GameID
		}
		s, ok := byPlayer[rec.Player]
		if !ok {
			s = &model.ProgressSeries{Player: rec.Player}
			byPlayer[rec.Player] = s
			order = append(order, rec.Player)
		}
		pt := model.ProgressPoint{GameID: rec.GameID, X: ordinal, Points: rec.PointsCum}
		if season != nil {
			pt.X = rec.Game
			pt.Points = rec.PointsCumYTD
		}
		s.Points = append(s.Points, pt)
	}

	out := make([]model.ProgressSeries, 0, len(order))
	for _, p := range t.Players {
		if s, ok := byPlayer[p]; ok {
			out = append(out, *s)
			delete(byPlayer, p)
		}
	}
	for _, p := range order {
		if s, ok := byPlayer[p]; ok {
			out = append(out, *s)
		}
	}
	return out
}
