package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/catan/internal/config"
	"github.com/okian/catan/internal/domain/model"
	"github.com/okian/catan/internal/samplesheet"
	"github.com/okian/catan/pkg/logger"
	"github.com/okian/catan/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("CATAN_ADDR", ":8080")
			_ = os.Setenv("CATAN_PLAYERS_PER_GAME", "3")
			_ = os.Setenv("CATAN_DATA_PATH", "league.xlsx")
			defer func() {
				_ = os.Unsetenv("CATAN_ADDR")
				_ = os.Unsetenv("CATAN_PLAYERS_PER_GAME")
				_ = os.Unsetenv("CATAN_DATA_PATH")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataPath, convey.ShouldEqual, "league.xlsx")
				convey.So(cfg.PlayersPerGame, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the metrics settings are applied", func() {
			cfg := config.New(context.Background())
			cfg.MetricsNamespace = "league"
			cfg.MetricsSubsystem = "web"
			cfg.MetricsLabels = map[string]string{"league": "friday"}
			cfg.MetricsBuckets = []float64{5, 50, 500}
			cfg.MetricsRefreshInterval = 3 * time.Second
			defer func() { _ = metrics.Configure() }()

			convey.So(metrics.Configure(metricsOptions(cfg)...), convey.ShouldBeNil)
			metrics.UpdateDatasetSize(9, 2, 3)

			convey.Convey("Then the served registry uses them", func() {
				convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 3*time.Second)
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() != "league_web_records" {
						continue
					}
					found = true
					convey.So(f.GetMetric()[0].GetGauge().GetValue(), convey.ShouldEqual, 9)
					convey.So(f.GetMetric()[0].GetLabel()[0].GetName(), convey.ShouldEqual, "league")
					convey.So(f.GetMetric()[0].GetLabel()[0].GetValue(), convey.ShouldEqual, "friday")
				}
				convey.So(found, convey.ShouldBeTrue)
			})

			convey.Convey("And /healthz serves the configured metrics", func() {
				h, err := newHandler(context.Background(), cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)
				w := get(h, "/healthz")
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "league_web_records")
			})
		})

		convey.Convey("When the metrics settings are invalid", func() {
			cfg := config.New(context.Background())
			cfg.MetricsLabels = map[string]string{"bad-label": "x"}

			convey.Convey("Then configuration fails", func() {
				err := metrics.Configure(metricsOptions(cfg)...)
				convey.So(errors.Is(err, metrics.ErrInvalidOption), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a generated league workbook", t, func() {
		ctx := context.Background()
		sample := samplesheet.DefaultConfig()
		sample.Out = filepath.Join(t.TempDir(), "catan_data.xlsx")
		sample.Seasons, sample.Games = 2, 6
		convey.So(samplesheet.Write(ctx, sample), convey.ShouldBeNil)

		cfg := config.New(ctx)
		cfg.DataPath = sample.Out
		cfg.RateLimitRPS = 0

		h, err := newHandler(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When requesting the standings", func() {
			w := get(h, "/standings")

			convey.Convey("Then every player is ranked", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var rows []model.Standing
				convey.So(json.NewDecoder(w.Body).Decode(&rows), convey.ShouldBeNil)
				convey.So(len(rows), convey.ShouldEqual, 3)
				total := 0
				for _, r := range rows {
					total += r.Games
				}
				convey.So(total, convey.ShouldEqual, 2*6*3)
			})
		})

		convey.Convey("When requesting one season's locations", func() {
			w := get(h, "/locations?season=2024")

			convey.Convey("Then markers carry summaries and a centre", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var got model.LocationMap
				convey.So(json.NewDecoder(w.Body).Decode(&got), convey.ShouldBeNil)
				convey.So(got.Center, convey.ShouldNotBeNil)
				convey.So(len(got.Locations), convey.ShouldBeGreaterThan, 0)
				convey.So(got.Locations[0].Details, convey.ShouldStartWith, "Average score:")
			})
		})

		convey.Convey("When requesting the progress chart", func() {
			w := get(h, "/progress.svg")

			convey.Convey("Then an SVG is rendered", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "<svg")
			})
		})

		convey.Convey("When requesting the docs and assets", func() {
			convey.Convey("Then they are served", func() {
				convey.So(get(h, "/api-docs").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(h, "/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(h, "/assets/dashboard.js").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(h, "/dashboard").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(h, "/").Code, convey.ShouldEqual, http.StatusFound)
			})
		})
	})

	convey.Convey("Given a missing workbook", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.DataPath = filepath.Join(t.TempDir(), "missing.xlsx")
		cfg.RateLimitRPS = 0

		h, err := newHandler(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then dataset requests fail with load_failed", func() {
			w := get(h, "/games")
			convey.So(w.Code, convey.ShouldEqual, http.StatusInternalServerError)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "load_failed")
		})
	})

	convey.Convey("Given an unusable points table", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.PlacePoints = map[string]float64{"first": 2}

		convey.Convey("Then the handler is not built", func() {
			_, err := newHandler(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}
