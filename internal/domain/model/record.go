package model

import "time"

// GameIDBase is the multiplier used to build GameID from season and game.
// Game numbers must stay below it for ids to be unique across seasons.
const GameIDBase = 100

// GameRecord is one player's result in one game, raw fields plus derived columns.
type GameRecord struct {
	Row int `json:"row"` // 1-based position among the source data rows

	Season int    `json:"season"`
	Game   int    `json:"game"`
	GameID int    `json:"game_id"`
	Player string `json:"player"`
	Place  int    `json:"place"`
	Score  Num    `json:"score"`

	Loc       string `json:"loc"`
	Geoloc    string `json:"geoloc"`
	Latitude  Num    `json:"latitude"`
	Longitude Num    `json:"longitude"`

	Month       string     `json:"month,omitempty"`
	Session     string     `json:"session,omitempty"`
	SessionDate *time.Time `json:"session_date,omitempty"`

	Production map[string]Num `json:"p_sum"`
	Total      map[string]Num `json:"t_sum"`
	Share      map[string]Num `json:"share"`

	Points       Num     `json:"points"`
	PointsCum    float64 `json:"points_cum"`
	PointsCumYTD float64 `json:"points_cum_ytd"`
}

// MakeGameID encodes season and game into a single orderable key.
func MakeGameID(season, game int) int {
	return season*GameIDBase + game
}

// IssueKind classifies row-local problems that do not abort a load.
type IssueKind string

// Issue kinds.
const (
	IssueGeoloc IssueKind = "geoloc"
	IssuePlace  IssueKind = "place"
	IssueScore  IssueKind = "score"
	IssueGame   IssueKind = "game"

	IssueProduction IssueKind = "production"
)

// Issue describes a row-local data problem.
type Issue struct {
	Row     int       `json:"row"`
	GameID  int       `json:"game_id,omitempty"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// Table is the enriched dataset, ordered by GameID.
type Table struct {
	Records   []GameRecord `json:"records"`
	Resources []string     `json:"resources"`
	Players   []string     `json:"players"`
	Issues    []Issue      `json:"issues"`
}

// Filter returns the records matching keep, preserving order.
func (t *Table) Filter(keep func(*GameRecord) bool) []GameRecord {
	out := make([]GameRecord, 0, len(t.Records))
	for i := range t.Records {
		if keep(&t.Records[i]) {
			out = append(out, t.Records[i])
		}
	}
	return out
}

// SeasonFilter matches records of season, or all records when season is nil.
func SeasonFilter(season *int) func(*GameRecord) bool {
	return func(r *GameRecord) bool {
		return season == nil || r.Season == *season
	}
}
