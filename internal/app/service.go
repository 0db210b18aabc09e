// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	repository "github.com/okian/catan/internal/adapters/repository"
	"github.com/okian/catan/internal/adapters/render"
	"github.com/okian/catan/internal/domain/enrich"
	"github.com/okian/catan/internal/domain/geo"
	"github.com/okian/catan/internal/domain/hover"
	"github.com/okian/catan/internal/domain/model"
	"github.com/okian/catan/internal/domain/production"
	"github.com/okian/catan/internal/domain/progress"
	"github.com/okian/catan/internal/domain/standings"
	"github.com/okian/catan/pkg/logger"
	"github.com/okian/catan/pkg/metrics"
)

// ErrNoSource is returned when the service has no dataset source configured.
var ErrNoSource = errors.New("no dataset source configured")

// Service implements the API dependencies for the league dashboard.
// Every read loads the workbook afresh; only load statistics are kept.
type Service struct {
	mu sync.RWMutex

	source repository.Source

	// Configuration
	resources      []string
	placePoints    map[int]float64
	strictPlaces   bool
	roster         []string
	playersPerGame int
	playerColors   map[string]string
	chartWidth     int
	chartHeight    int

	// Load statistics
	loads        int64
	failures     int64
	lastLoadedAt time.Time
	lastDuration time.Duration
	lastRecords  int
	lastIssues   int
	lastError    string

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where the raw rows come from.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithResources sets the production resources read from the workbook.
func WithResources(resources []string) Option {
	return func(s *Service) {
		if len(resources) > 0 {
			s.resources = append([]string(nil), resources...)
		}
	}
}

// WithPlacePoints sets the league points awarded per finishing place.
func WithPlacePoints(points map[int]float64) Option {
	return func(s *Service) {
		if len(points) > 0 {
			s.placePoints = points
		}
	}
}

// WithStrictPlaces makes a place outside the points table abort the load.
func WithStrictPlaces(strict bool) Option {
	return func(s *Service) {
		s.strictPlaces = strict
	}
}

// WithRoster fixes the player order used in summaries and charts.
func WithRoster(players []string) Option {
	return func(s *Service) {
		s.roster = append([]string(nil), players...)
	}
}

// WithPlayersPerGame sets the party size used to count games per location.
func WithPlayersPerGame(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.playersPerGame = n
		}
	}
}

// WithPlayerColors maps players to hex chart colours.
func WithPlayerColors(colors map[string]string) Option {
	return func(s *Service) {
		s.playerColors = colors
	}
}

// WithChartSize sets the progress chart size in pixels.
func WithChartSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.chartWidth, s.chartHeight = width, height
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		resources:      append([]string(nil), enrich.DefaultResources...),
		placePoints:    enrich.DefaultPlacePoints(),
		playersPerGame: hover.DefaultPlayersPerGame,
		chartWidth:     960,
		chartHeight:    420,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Named("service")
	}
	return s.logger
}

func (s *Service) enricher() *enrich.Enricher {
	return enrich.New(
		enrich.WithResources(s.resources),
		enrich.WithPlacePoints(s.placePoints),
		enrich.WithStrictPlaces(s.strictPlaces),
		enrich.WithRoster(s.roster),
	)
}

func (s *Service) builder() *hover.Builder {
	return hover.New(
		hover.WithPlayersPerGame(s.playersPerGame),
		hover.WithRoster(s.roster),
	)
}

// Snapshot reads the source and returns a freshly enriched table.
func (s *Service) Snapshot(ctx context.Context) (*model.Table, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	start := time.Now()
	rows, err := s.source.Rows(ctx)
	if err == nil {
		var t *model.Table
		t, err = s.enricher().Enrich(ctx, rows)
		if err == nil {
			s.loaded(ctx, t, time.Since(start))
			return t, nil
		}
	}
	s.failed(ctx, err, time.Since(start))
	return nil, err
}

func (s *Service) loaded(ctx context.Context, t *model.Table, took time.Duration) {
	locs := make(map[string]struct{})
	for _, rec := range t.Records {
		locs[rec.Loc] = struct{}{}
	}
	for _, is := range t.Issues {
		metrics.RecordRowIssue(string(is.Kind))
		s.log().Warn(ctx, "row issue",
			logger.Int("row", is.Row),
			logger.Int("game_id", is.GameID),
			logger.String("kind", string(is.Kind)),
			logger.String("message", is.Message),
		)
	}
	metrics.RecordLoad(metrics.LoadOK)
	metrics.RecordLoadLatency(float64(took.Milliseconds()))
	metrics.UpdateDatasetSize(len(t.Records), len(locs), len(t.Players))

	s.mu.Lock()
	s.loads++
	s.lastLoadedAt = time.Now()
	s.lastDuration = took
	s.lastRecords = len(t.Records)
	s.lastIssues = len(t.Issues)
	s.lastError = ""
	s.mu.Unlock()

	s.log().Debug(ctx, "dataset loaded",
		logger.Int("records", len(t.Records)),
		logger.Int("issues", len(t.Issues)),
		logger.Duration("took", took),
	)
}

func (s *Service) failed(ctx context.Context, err error, took time.Duration) {
	result, errType := metrics.LoadError, "load_failed"
	if enrich.IsStructural(err) {
		result, errType = metrics.LoadInvalid, "invalid_dataset"
	}
	metrics.RecordLoad(result)
	metrics.RecordErrorByType(errType, "error")
	metrics.RecordErrorLatency("service", errType, float64(took.Milliseconds()))

	s.mu.Lock()
	s.loads++
	s.failures++
	s.lastError = err.Error()
	s.mu.Unlock()

	s.log().Error(ctx, "dataset load failed", logger.String("result", result), logger.Error(err))
}

// Seasons returns the distinct seasons in ascending order.
func (s *Service) Seasons(ctx context.Context) ([]int, error) {
	t, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return standings.Seasons(t), nil
}

// Games returns the enriched records of season, or all of them when season is nil.
func (s *Service) Games(ctx context.Context, season *int) ([]model.GameRecord, error) {
	t, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return t.Filter(model.SeasonFilter(season)), nil
}

// Locations returns one map marker per location with its summary text.
func (s *Service) Locations(ctx context.Context, season *int) (model.LocationMap, error) {
	t, err := s.Snapshot(ctx)
	if err != nil {
		return model.LocationMap{}, err
	}
	sub := &model.Table{
		Records:   t.Filter(model.SeasonFilter(season)),
		Resources: t.Resources,
		Players:   t.Players,
	}
	locs, err := s.builder().Locations(ctx, sub)
	if err != nil {
		return model.LocationMap{}, err
	}
	out := model.LocationMap{Locations: locs}
	if c, ok := geo.Center(locs); ok {
		out.Center = &model.MapCenter{Latitude: c.Latitude, Longitude: c.Longitude}
	}
	return out, nil
}

// Standings returns the league table of season, or the all-time table.
func (s *Service) Standings(ctx context.Context, season *int) ([]model.Standing, error) {
	t, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return standings.Build(t, season), nil
}

// Production returns the production summary per player and resource.
func (s *Service) Production(ctx context.Context, season *int) ([]model.ProductionRow, error) {
	t, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return production.Summarize(t, season), nil
}

// Progress returns the cumulative points curves.
func (s *Service) Progress(ctx context.Context, season *int) ([]model.ProgressSeries, error) {
	t, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return progress.Series(t, season), nil
}

// RenderProgress writes the cumulative points chart as SVG.
func (s *Service) RenderProgress(ctx context.Context, w io.Writer, season *int) error {
	series, err := s.Progress(ctx, season)
	if err != nil {
		return err
	}
	title := "All-time progress"
	if season != nil {
		title = "Season progress"
	}
	return render.ProgressSVG(w, series,
		render.WithTitle(title),
		render.WithSize(s.chartWidth, s.chartHeight),
		render.WithColors(s.playerColors),
	)
}

// Issues returns the row-local problems found while loading.
func (s *Service) Issues(ctx context.Context) ([]model.Issue, error) {
	t, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if t.Issues == nil {
		return []model.Issue{}, nil
	}
	return t.Issues, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"loads":          s.loads,
		"failures":       s.failures,
		"resources":      append([]string(nil), s.resources...),
		"playersPerGame": s.playersPerGame,
		"strictPlaces":   s.strictPlaces,
	}
	if src, ok := s.source.(interface{ Path() string }); ok {
		stats["dataPath"] = src.Path()
	}
	if !s.lastLoadedAt.IsZero() {
		stats["lastLoadedAt"] = s.lastLoadedAt.UTC().Format(time.RFC3339)
		stats["lastLoadMs"] = s.lastDuration.Milliseconds()
		stats["lastRecords"] = s.lastRecords
		stats["lastIssues"] = s.lastIssues
	}
	if s.lastError != "" {
		stats["lastError"] = s.lastError
	}
	return stats
}
