package model

// PlayerValue pairs a player with a numeric value.
type PlayerValue struct {
	Player string  `json:"player"`
	Value  float64 `json:"value"`
}

// PlayerCount pairs a player with a count.
type PlayerCount struct {
	Player string `json:"player"`
	Count  int    `json:"count"`
}

// LocationSummary aggregates all games played at one location.
type LocationSummary struct {
	Loc         string        `json:"loc"`
	Latitude    Num           `json:"latitude"`
	Longitude   Num           `json:"longitude"`
	MeanScores  []PlayerValue `json:"mean_scores"`
	GamesPlayed int           `json:"games_played"`
	Wins        []PlayerCount `json:"wins"`
	Details     string        `json:"details"`
}

// AnnotatedRecord is a record joined with the summary of its location.
type AnnotatedRecord struct {
	Record  GameRecord
	Details string
}

// Standing is one line of a league table.
type Standing struct {
	Player       string  `json:"player"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Points       float64 `json:"points"`
	PointsCum    float64 `json:"points_cum"`
	AverageScore Num     `json:"average_score"`
	WinRate      float64 `json:"win_rate"`
}

// ProductionRow summarises one player's production of one resource.
type ProductionRow struct {
	Player    string  `json:"player"`
	Resource  string  `json:"resource"`
	Total     float64 `json:"total"`
	MeanShare Num     `json:"mean_share"`
	Games     int     `json:"games"`
}

// ProgressPoint is one step of a player's cumulative points curve.
type ProgressPoint struct {
	GameID int     `json:"game_id"`
	X      int     `json:"x"`
	Points float64 `json:"points"`
}

// ProgressSeries is the cumulative points curve of one player.
type ProgressSeries struct {
	Player string          `json:"player"`
	Points []ProgressPoint `json:"points"`
}

// MapCenter is the initial view of the location map, in decimal degrees.
type MapCenter struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationMap holds the map markers and, when any marker has coordinates, the map centre.
type LocationMap struct {
	Center    *MapCenter        `json:"center"`
	Locations []LocationSummary `json:"locations"`
}
