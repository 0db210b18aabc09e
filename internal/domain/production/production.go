// Package production summarises resource production per player.
package production

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/catan/internal/domain/model"
)

// Summarize returns one row per player and resource, players in table order
// and resources in configured order. Only defined values contribute.
func Summarize(t *model.Table, season *int) []model.ProductionRow {
	type key struct{ player, resource string }
	values := make(map[key][]float64)
	shares := make(map[key][]float64)
	played := make(map[string]bool)

	for _, rec := range t.Filter(model.SeasonFilter(season)) {
		played[rec.Player] = true
		for _, r := range t.Resources {
			k := key{rec.Player, r}
			if p := rec.Production[r]; p.Valid {
				values[k] = append(values[k], p.Value)
			}
			if s := rec.Share[r]; s.Valid {
				shares[k] = append(shares[k], s.Value)
			}
		}
	}

	var out []model.ProductionRow
	for _, p := range t.Players {
		if !played[p] {
			continue
		}
		for _, r := range t.Resources {
			k := key{p, r}
			row := model.ProductionRow{
				Player:   p,
				Resource: r,
				Total:    floats.Sum(values[k]),
				Games:    len(values[k]),
			}
			if len(shares[k]) > 0 {
				row.MeanShare = model.Some(stat.Mean(shares[k], nil))
			}
			out = append(out, row)
		}
	}
	return out
}
