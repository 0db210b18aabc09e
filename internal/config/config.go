// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath is the league workbook, re-read on every request.
	DataPath string `koanf:"data_path"`

	// Sheet selects the worksheet; empty means the first one.
	Sheet string `koanf:"sheet"`

	// SkipRows is the number of rows above the embedded header row.
	SkipRows int `koanf:"skip_rows"`

	// PlayersPerGame is the party size used to count games per location.
	PlayersPerGame int `koanf:"players_per_game"`

	// Resources lists the production categories (p_sum_<resource> columns).
	Resources []string `koanf:"resources"`

	// PlacePoints maps finishing place to league points.
	PlacePoints map[string]float64 `koanf:"place_points"`

	// StrictPlaces aborts a load on a place outside PlacePoints.
	StrictPlaces bool `koanf:"strict_places"`

	// Roster fixes the display order of players.
	Roster []string `koanf:"roster"`

	// PlayerColors maps player names to hex colours for charts.
	PlayerColors map[string]string `koanf:"player_colors"`

	// RateLimitRPS and RateLimitBurst bound requests hitting the workbook. Zero RPS disables the limiter.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// ChartWidth and ChartHeight size the season progress chart in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// Metrics* configure the Prometheus collectors served on /healthz.
	// MetricsLabels are attached to every metric, e.g. {"league": "friday"}.
	MetricsEnabled         bool              `koanf:"metrics_enabled"`
	MetricsNamespace       string            `koanf:"metrics_namespace"`
	MetricsSubsystem       string            `koanf:"metrics_subsystem"`
	MetricsPrefix          string            `koanf:"metrics_prefix"`
	MetricsLabels          map[string]string `koanf:"metrics_labels"`
	MetricsBuckets         []float64         `koanf:"metrics_buckets"`
	MetricsRefreshInterval time.Duration     `koanf:"metrics_refresh_interval"`
}

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		DataPath:       "catan_data.xlsx",
		SkipRows:       1,
		PlayersPerGame: 3,
		Resources:      []string{"wood", "clay", "sheep", "grain", "ore", "paper", "coin", "fabric"},
		PlacePoints:    map[string]float64{"1": 2, "2": 1, "3": 0},
		PlayerColors:   map[string]string{},
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		ChartWidth:     960,
		ChartHeight:    420,

		MetricsEnabled:         true,
		MetricsNamespace:       "catan",
		MetricsSubsystem:       "dashboard",
		MetricsRefreshInterval: 10 * time.Second,
	}
}

// Points returns PlacePoints keyed by place.
func (c *Config) Points() (map[int]float64, error) {
	out := make(map[int]float64, len(c.PlacePoints))
	for k, v := range c.PlacePoints {
		place, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: place_points key %q is not an integer", ErrInvalidConfig, k)
		}
		out[place] = v
	}
	return out, nil
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataPath == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case c.PlayersPerGame < 1:
		return fmt.Errorf("%w: players_per_game must be at least 1", ErrInvalidConfig)
	case c.SkipRows < 0:
		return fmt.Errorf("%w: skip_rows must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must not be negative", ErrInvalidConfig)
	case len(c.Resources) == 0:
		return fmt.Errorf("%w: resources must not be empty", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	points, err := c.Points()
	if err != nil {
		return err
	}
	for place := 1; place <= c.PlayersPerGame; place++ {
		if _, ok := points[place]; !ok {
			return fmt.Errorf("%w: place_points has no entry for place %d", ErrInvalidConfig, place)
		}
	}
	return nil
}
