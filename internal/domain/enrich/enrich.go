// Package enrich turns raw spreadsheet rows into the enriched game table:
// typed records, coordinates, per-game production totals and shares, league
// points and running point totals.
package enrich

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/catan/internal/domain/geo"
	"github.com/okian/catan/internal/domain/model"
)

// Column names of the embedded header row.
const (
	ColSeason  = "season"
	ColGame    = "game"
	ColPlayer  = "player"
	ColPlace   = "place"
	ColScore   = "score"
	ColLoc     = "loc"
	ColGeoloc  = "geoloc"
	ColMonth   = "month"
	ColSession = "Session"

	ProductionPrefix = "p_sum_"
)

var requiredColumns = []string{ColSeason, ColGame, ColPlayer, ColPlace, ColScore, ColLoc, ColGeoloc}

var sessionLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02.01.2006",
	"2.1.2006",
	"01/02/2006",
	"1/2/06",
}

// Enricher builds a model.Table from raw rows.
type Enricher struct {
	resources    []string
	placePoints  map[int]float64
	strictPlaces bool
	roster       []string
}

// New creates an Enricher with the default resources and points table.
func New(opts ...Option) *Enricher {
	e := &Enricher{
		resources:   append([]string(nil), DefaultResources...),
		placePoints: DefaultPlacePoints(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resources returns the configured resource names.
func (e *Enricher) Resources() []string {
	return append([]string(nil), e.resources...)
}

// header resolves column names to positions. Lookups fall back to a
// case-insensitive match.
type header struct {
	exact  map[string]int
	folded map[string]int
}

func newHeader(row []string) (header, error) {
	h := header{exact: make(map[string]int, len(row)), folded: make(map[string]int, len(row))}
	for i, name := range row {
		name = strings.TrimSpace(name)
		if _, dup := h.exact[name]; dup {
			return header{}, fmt.Errorf("%w: %q", ErrDuplicateHeader, name)
		}
		h.exact[name] = i
		if _, seen := h.folded[strings.ToLower(name)]; !seen {
			h.folded[strings.ToLower(name)] = i
		}
	}
	return h, nil
}

func (h header) index(name string) int {
	if i, ok := h.exact[name]; ok {
		return i
	}
	if i, ok := h.folded[strings.ToLower(name)]; ok {
		return i
	}
	return -1
}

// columns holds the resolved positions of every column the enricher reads.
type columns struct {
	season, game, player, place, score, loc, geoloc int
	month, session                                  int
	production                                      []int
}

func (e *Enricher) resolve(h header) (columns, error) {
	var missing []string
	for _, name := range requiredColumns {
		if h.index(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	c := columns{
		season:     h.index(ColSeason),
		game:       h.index(ColGame),
		player:     h.index(ColPlayer),
		place:      h.index(ColPlace),
		score:      h.index(ColScore),
		loc:        h.index(ColLoc),
		geoloc:     h.index(ColGeoloc),
		month:      h.index(ColMonth),
		session:    h.index(ColSession),
		production: make([]int, len(e.resources)),
	}
	for i, r := range e.resources {
		c.production[i] = h.index(ProductionPrefix + r)
	}
	return c, nil
}

// Enrich promotes rows[0] to the header, parses the remaining rows and
// computes every derived column. Structural problems return an error;
// row-local problems are recorded in Table.Issues.
func (e *Enricher) Enrich(ctx context.Context, rows [][]string) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	h, err := newHeader(rows[0])
	if err != nil {
		return nil, err
	}
	cols, err := e.resolve(h)
	if err != nil {
		return nil, err
	}

	t := &model.Table{
		Records:   make([]model.GameRecord, 0, len(rows)-1),
		Resources: e.Resources(),
	}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec, err := e.parse(i+1, row, cols, t)
		if err != nil {
			return nil, err
		}
		t.Records = append(t.Records, rec)
	}

	e.totals(t)
	e.checkGames(t)
	sort.SliceStable(t.Records, func(a, b int) bool {
		return t.Records[a].GameID < t.Records[b].GameID
	})
	cumulate(t.Records)
	t.Players = e.players(t.Records)
	return t, nil
}

func (e *Enricher) parse(n int, row []string, c columns, t *model.Table) (model.GameRecord, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	season, ok := parseInt(cell(c.season))
	if !ok || season > maxSeason || season < -maxSeason {
		return model.GameRecord{}, fmt.Errorf("%w: row %d season %q", ErrInvalidKey, n, cell(c.season))
	}
	game, ok := parseInt(cell(c.game))
	if !ok {
		return model.GameRecord{}, fmt.Errorf("%w: row %d game %q", ErrInvalidKey, n, cell(c.game))
	}
	if game < 0 || game >= model.GameIDBase {
		return model.GameRecord{}, fmt.Errorf("%w: row %d game %d (must be 0..%d)", ErrGameOutOfRange, n, game, model.GameIDBase-1)
	}

	rec := model.GameRecord{
		Row:        n,
		Season:     season,
		Game:       game,
		GameID:     model.MakeGameID(season, game),
		Player:     cell(c.player),
		Loc:        cell(c.loc),
		Geoloc:     cell(c.geoloc),
		Month:      cell(c.month),
		Session:    cell(c.session),
		Production: make(map[string]model.Num, len(e.resources)),
		Total:      make(map[string]model.Num, len(e.resources)),
		Share:      make(map[string]model.Num, len(e.resources)),
	}

	if raw := cell(c.score); raw != "" {
		if v, ok := parseFloat(raw); ok {
			rec.Score = model.Some(v)
		} else {
			t.Issues = append(t.Issues, model.Issue{Row: n, GameID: rec.GameID, Kind: model.IssueScore, Message: fmt.Sprintf("score %q is not numeric", raw)})
		}
	}

	var geoOK bool
	rec.Latitude, rec.Longitude, geoOK = geo.ParseGeoloc(rec.Geoloc)
	if !geoOK {
		t.Issues = append(t.Issues, model.Issue{Row: n, GameID: rec.GameID, Kind: model.IssueGeoloc, Message: fmt.Sprintf("geoloc %q is not \"<lat>, <lon>\"", rec.Geoloc)})
	}

	if place, ok := parseInt(cell(c.place)); ok {
		rec.Place = place
	}
	if pts, ok := e.placePoints[rec.Place]; ok {
		rec.Points = model.Some(pts)
	} else {
		if e.strictPlaces {
			return model.GameRecord{}, fmt.Errorf("%w: row %d place %q", ErrInvalidPlace, n, cell(c.place))
		}
		t.Issues = append(t.Issues, model.Issue{Row: n, GameID: rec.GameID, Kind: model.IssuePlace, Message: fmt.Sprintf("place %q has no points", cell(c.place))})
	}

	for i, r := range e.resources {
		raw := cell(c.production[i])
		if v, ok := parseFloat(raw); ok {
			rec.Production[r] = model.Some(v)
			continue
		}
		rec.Production[r] = model.None
		if raw != "" {
			t.Issues = append(t.Issues, model.Issue{Row: n, GameID: rec.GameID, Kind: model.IssueProduction, Message: fmt.Sprintf("%s%s %q is not numeric", ProductionPrefix, r, raw)})
		}
	}

	rec.SessionDate = parseSession(rec.Session)
	return rec, nil
}

// totals sums production per game and derives each player's share.
// A game where nobody has a value for a resource keeps the total undefined.
func (e *Enricher) totals(t *model.Table) {
	sums := make(map[int]map[string]model.Num)
	for _, rec := range t.Records {
		g, ok := sums[rec.GameID]
		if !ok {
			g = make(map[string]model.Num, len(e.resources))
			sums[rec.GameID] = g
		}
		for _, r := range e.resources {
			p := rec.Production[r]
			if !p.Valid {
				continue
			}
			g[r] = model.Some(g[r].Value + p.Value)
		}
	}
	for i := range t.Records {
		rec := &t.Records[i]
		for _, r := range e.resources {
			total := sums[rec.GameID][r]
			rec.Total[r] = total
			p := rec.Production[r]
			if p.Valid && total.Valid && total.Value != 0 {
				rec.Share[r] = model.Some(p.Value / total.Value)
			} else {
				rec.Share[r] = model.None
			}
		}
	}
}

// checkGames flags games whose places are not exactly the points table's places.
func (e *Enricher) checkGames(t *model.Table) {
	want := make([]int, 0, len(e.placePoints))
	for place := range e.placePoints {
		want = append(want, place)
	}
	sort.Ints(want)

	var order []int
	places := make(map[int][]int)
	firstRow := make(map[int]int)
	for _, rec := range t.Records {
		if _, seen := places[rec.GameID]; !seen {
			order = append(order, rec.GameID)
			firstRow[rec.GameID] = rec.Row
		}
		places[rec.GameID] = append(places[rec.GameID], rec.Place)
	}
	for _, id := range order {
		got := append([]int(nil), places[id]...)
		sort.Ints(got)
		if !slices.Equal(got, want) {
			t.Issues = append(t.Issues, model.Issue{
				Row:     firstRow[id],
				GameID:  id,
				Kind:    model.IssueGame,
				Message: fmt.Sprintf("game %d has places %v, want %v", id, got, want),
			})
		}
	}
}

// cumulate fills running point totals. Records must already be in GameID order;
// undefined points add nothing.
func cumulate(records []model.GameRecord) {
	type seasonPlayer struct {
		season int
		player string
	}
	allTime := make(map[string]float64)
	ytd := make(map[seasonPlayer]float64)
	for i := range records {
		rec := &records[i]
		pts := rec.Points.Or(0)
		allTime[rec.Player] += pts
		key := seasonPlayer{season: rec.Season, player: rec.Player}
		ytd[key] += pts
		rec.PointsCum = allTime[rec.Player]
		rec.PointsCumYTD = ytd[key]
	}
}

func (e *Enricher) players(records []model.GameRecord) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(e.roster))
	for _, p := range e.roster {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, rec := range records {
		if !seen[rec.Player] {
			seen[rec.Player] = true
			out = append(out, rec.Player)
		}
	}
	return out
}

// maxSeason keeps MakeGameID within 32 bits.
const maxSeason = math.MaxInt32 / model.GameIDBase

// parseInt accepts integers and integral floats such as "3.0" whose
// magnitude fits in an int32.
func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n > math.MaxInt32 || n < -math.MaxInt32 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// parseFloat accepts finite numbers only. "Inf" and "NaN" parse but would
// poison totals and shares.
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// parseSession reads an Excel date serial or one of the common date layouts.
func parseSession(s string) *time.Time {
	if s == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		ts, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		return &ts
	}
	for _, layout := range sessionLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
