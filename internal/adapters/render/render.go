// Package render draws dashboard charts.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/catan/internal/domain/model"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to render")

const (
	defaultWidth  = 960
	defaultHeight = 420
)

// Option applies a configuration option to a progress chart.
type Option func(*progressChart)

type progressChart struct {
	title  string
	width  int
	height int
	colors map[string]string
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(c *progressChart) { c.title = title }
}

// WithSize sets the chart size in pixels.
func WithSize(width, height int) Option {
	return func(c *progressChart) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithColors maps player names to hex colours ("#1f77b4" or "1f77b4").
func WithColors(colors map[string]string) Option {
	return func(c *progressChart) { c.colors = colors }
}

// ProgressSVG writes a line chart with one cumulative points curve per player.
func ProgressSVG(w io.Writer, series []model.ProgressSeries, opts ...Option) error {
	c := &progressChart{
		title:  "Season progress",
		width:  defaultWidth,
		height: defaultHeight,
	}
	for _, opt := range opts {
		opt(c)
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	var lines []chart.Series
	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, 0, len(s.Points)+1)
		ys := make([]float64, 0, len(s.Points)+1)
		for _, p := range s.Points {
			xs = append(xs, float64(p.X))
			ys = append(ys, p.Points)
			minX, maxX = math.Min(minX, float64(p.X)), math.Max(maxX, float64(p.X))
			minY, maxY = math.Min(minY, p.Points), math.Max(maxY, p.Points)
		}
		// go-chart needs at least two points per series.
		if len(xs) == 1 {
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
			maxX = math.Max(maxX, xs[1])
		}
		col := c.color(s.Player, i)
		lines = append(lines, chart.ContinuousSeries{
			Name:    s.Player,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}
	if len(lines) == 0 {
		return ErrNoData
	}
	if maxY == minY {
		maxY = minY + 1
	}

	graph := chart.Chart{
		Title:      c.title,
		Width:      c.width,
		Height:     c.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Game",
			Range:          &chart.ContinuousRange{Min: minX, Max: maxX},
			ValueFormatter: intFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Points",
			Range:          &chart.ContinuousRange{Min: math.Min(0, minY), Max: maxY},
			ValueFormatter: intFormatter,
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render progress chart: %w", err)
	}
	return nil
}

func (c *progressChart) color(player string, i int) drawing.Color {
	hex := strings.TrimPrefix(strings.TrimSpace(c.colors[player]), "#")
	if validHex(hex) {
		return drawing.ColorFromHex(hex)
	}
	return chart.GetDefaultColor(i)
}

func validHex(s string) bool {
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%v", v)
}
