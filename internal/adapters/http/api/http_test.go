package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/catan/internal/adapters/http/api"
	"github.com/okian/catan/internal/adapters/render"
	"github.com/okian/catan/internal/domain/enrich"
	"github.com/okian/catan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies implements api.Dependencies from fixed data.
type mockDependencies struct {
	records   []model.GameRecord
	locations model.LocationMap
	issues    []model.Issue
	progress  []model.ProgressSeries
	err       error
	renderErr error

	lastSeason *int
}

func (m *mockDependencies) Seasons(ctx context.Context) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []int{2023, 2024}, nil
}

func (m *mockDependencies) Games(ctx context.Context, season *int) ([]model.GameRecord, error) {
	m.lastSeason = season
	if m.err != nil {
		return nil, m.err
	}
	t := &model.Table{Records: m.records}
	return t.Filter(model.SeasonFilter(season)), nil
}

func (m *mockDependencies) Locations(ctx context.Context, season *int) (model.LocationMap, error) {
	m.lastSeason = season
	if m.err != nil {
		return model.LocationMap{}, m.err
	}
	return m.locations, nil
}

func (m *mockDependencies) Standings(ctx context.Context, season *int) ([]model.Standing, error) {
	m.lastSeason = season
	if m.err != nil {
		return nil, m.err
	}
	return []model.Standing{{Player: "Ann", Games: 2, Wins: 1, Points: 3}}, nil
}

func (m *mockDependencies) Production(ctx context.Context, season *int) ([]model.ProductionRow, error) {
	m.lastSeason = season
	if m.err != nil {
		return nil, m.err
	}
	return []model.ProductionRow{{Player: "Ann", Resource: "wood", Total: 4, MeanShare: model.None, Games: 1}}, nil
}

func (m *mockDependencies) Progress(ctx context.Context, season *int) ([]model.ProgressSeries, error) {
	m.lastSeason = season
	if m.err != nil {
		return nil, m.err
	}
	if m.progress != nil {
		return m.progress, nil
	}
	return []model.ProgressSeries{{Player: "Ann", Points: []model.ProgressPoint{{GameID: 202301, X: 1, Points: 2}}}}, nil
}

func (m *mockDependencies) RenderProgress(ctx context.Context, w io.Writer, season *int) error {
	m.lastSeason = season
	if m.err != nil {
		return m.err
	}
	if m.renderErr != nil {
		return m.renderErr
	}
	_, err := io.WriteString(w, "<svg></svg>")
	return err
}

func (m *mockDependencies) Issues(ctx context.Context) ([]model.Issue, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.issues, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newDeps() *mockDependencies {
	return &mockDependencies{
		records: []model.GameRecord{
			{Season: 2023, Game: 1, GameID: 202301, Player: "Ann", Place: 1, Score: model.Some(10), Points: model.Some(2)},
			{Season: 2024, Game: 1, GameID: 202401, Player: "Ann", Place: 2, Score: model.None, Points: model.Some(1)},
		},
		locations: model.LocationMap{
			Center: &model.MapCenter{Latitude: 48.2, Longitude: 16.4},
			Locations: []model.LocationSummary{
				{Loc: "Vienna", Latitude: model.Some(48.2), Longitude: model.Some(16.4), GamesPlayed: 1, Details: "Average score:"},
			},
		},
		issues: []model.Issue{{Row: 3, Kind: model.IssueGeoloc, Message: "bad geoloc"}},
	}
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newDeps()
		server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"loads": 1}})
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			Convey("Then health endpoint should be accessible", func() {
				So(serve(mux, "GET", "/healthz").Code, ShouldEqual, http.StatusOK)
			})

			Convey("And stats endpoint should be accessible", func() {
				So(serve(mux, "GET", "/stats").Code, ShouldEqual, http.StatusOK)
			})

			Convey("And every dataset endpoint should answer", func() {
				for _, path := range []string{"/seasons", "/games", "/locations", "/standings", "/production", "/progress", "/progress.svg", "/issues"} {
					So(serve(mux, "GET", path).Code, ShouldEqual, http.StatusOK)
				}
			})

			Convey("And unknown paths should not be handled", func() {
				So(serve(mux, "GET", "/unknown").Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And dashboard endpoint should serve the HTML page", func() {
				w := serve(mux, "GET", "/dashboard")
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, `id="map"`)
				So(body, ShouldContainSubstring, `id="season"`)
				So(body, ShouldContainSubstring, "/assets/dashboard.js")
			})
		})
	})
}

func TestLeagueHandler_Season(t *testing.T) {
	Convey("Given a registered server", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When filtering games by season", func() {
			w := serve(mux, "GET", "/games?season=2024")

			Convey("Then only that season is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var games []model.GameRecord
				So(json.NewDecoder(w.Body).Decode(&games), ShouldBeNil)
				So(len(games), ShouldEqual, 1)
				So(games[0].Season, ShouldEqual, 2024)
				So(games[0].Score.Valid, ShouldBeFalse)
				So(*deps.lastSeason, ShouldEqual, 2024)
			})
		})

		Convey("When no season is given", func() {
			w := serve(mux, "GET", "/standings")

			Convey("Then the handler asks for all seasons", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastSeason, ShouldBeNil)
			})
		})

		Convey("When the season is not an integer", func() {
			w := serve(mux, "GET", "/locations?season=spring")

			Convey("Then it should return bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When using a method other than GET", func() {
			w := serve(mux, "POST", "/games")

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestLeagueHandler_Responses(t *testing.T) {
	Convey("Given a registered server", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When requesting locations", func() {
			w := serve(mux, "GET", "/locations")

			Convey("Then markers and centre are returned", func() {
				var got model.LocationMap
				So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
				So(got.Center, ShouldNotBeNil)
				So(got.Center.Latitude, ShouldEqual, 48.2)
				So(len(got.Locations), ShouldEqual, 1)
				So(got.Locations[0].Loc, ShouldEqual, "Vienna")
			})
		})

		Convey("When requesting production", func() {
			w := serve(mux, "GET", "/production")

			Convey("Then undefined shares are encoded as null", func() {
				So(w.Body.String(), ShouldContainSubstring, `"mean_share":null`)
			})
		})

		Convey("When requesting the progress chart", func() {
			w := serve(mux, "GET", "/progress.svg?season=2023")

			Convey("Then SVG is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
				So(w.Body.String(), ShouldEqual, "<svg></svg>")
			})
		})

		Convey("When there is nothing to plot", func() {
			deps.renderErr = render.ErrNoData
			w := serve(mux, "GET", "/progress.svg")

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["code"], ShouldEqual, "no_data")
			})
		})

		Convey("When requesting issues", func() {
			w := serve(mux, "GET", "/issues")

			Convey("Then they are listed", func() {
				var issues []model.Issue
				So(json.NewDecoder(w.Body).Decode(&issues), ShouldBeNil)
				So(len(issues), ShouldEqual, 1)
				So(issues[0].Kind, ShouldEqual, model.IssueGeoloc)
			})
		})
	})
}

func TestLeagueHandler_LoadErrors(t *testing.T) {
	Convey("Given a server whose dataset cannot be loaded", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When the workbook is structurally invalid", func() {
			deps.err = fmt.Errorf("%w: loc", enrich.ErrMissingColumn)
			w := serve(mux, "GET", "/games")

			Convey("Then it should return unprocessable entity", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(decodeError(w)["code"], ShouldEqual, "invalid_dataset")
			})
		})

		Convey("When the workbook cannot be read", func() {
			deps.err = errors.New("open catan_data.xlsx: no such file")
			w := serve(mux, "GET", "/seasons")

			Convey("Then it should return internal server error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "load_failed")
				So(body["message"], ShouldContainSubstring, "no such file")
			})
		})

		Convey("When the result cannot be encoded", func() {
			deps.progress = []model.ProgressSeries{{Player: "Ann", Points: []model.ProgressPoint{{GameID: 202301, X: 1, Points: math.Inf(1)}}}}
			w := serve(mux, "GET", "/progress")

			Convey("Then it should return internal server error instead of a partial body", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				body := decodeError(w)
				So(body["code"], ShouldEqual, "encode_failed")
				So(body["message"], ShouldContainSubstring, api.ErrEncode.Error())
			})
		})

		Convey("When the chart cannot load its data", func() {
			deps.err = fmt.Errorf("%w: row 4", enrich.ErrGameOutOfRange)
			w := serve(mux, "GET", "/progress.svg")

			Convey("Then the load error wins over rendering", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			})
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a rate limited server", t, func() {
		mux := http.NewServeMux()
		api.NewServer(newDeps(), &mockStatsProvider{}, api.WithRateLimit(1, 1)).Register(context.Background(), mux)

		Convey("When two requests arrive back to back", func() {
			first := serve(mux, "GET", "/seasons")
			second := serve(mux, "GET", "/seasons")

			Convey("Then the second one is rejected", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
				So(second.Header().Get("Retry-After"), ShouldEqual, "1")
			})
		})

		Convey("When requesting metrics", func() {
			Convey("Then the health endpoint is not limited", func() {
				for i := 0; i < 3; i++ {
					So(serve(mux, "GET", "/healthz").Code, ShouldEqual, http.StatusOK)
				}
			})
		})
	})

	Convey("Given a server with rate limiting disabled", t, func() {
		mux := http.NewServeMux()
		api.NewServer(newDeps(), &mockStatsProvider{}, api.WithRateLimit(0, 0)).Register(context.Background(), mux)

		Convey("Then repeated requests pass", func() {
			for i := 0; i < 5; i++ {
				So(serve(mux, "GET", "/seasons").Code, ShouldEqual, http.StatusOK)
			}
		})
	})

	Convey("Given the request id middleware", t, func() {
		mux := http.NewServeMux()
		api.NewServer(newDeps(), &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When the client sends an id", func() {
			req := httptest.NewRequest("GET", "/seasons", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})

		Convey("When the client sends none", func() {
			w := serve(mux, "GET", "/seasons")

			Convey("Then one is generated", func() {
				So(len(w.Header().Get(api.RequestIDHeader)), ShouldEqual, 36)
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health check request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return OK status", func() {
				handler.HandleHealth(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"loads":       3,
				"lastRecords": 150,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return stats", func() {
				handler.HandleStats(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")

				var response map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response["loads"], ShouldEqual, 3.0)
				So(response["lastRecords"], ShouldEqual, 150.0)
			})
		})

		Convey("When using POST", func() {
			req := httptest.NewRequest("POST", "/stats", nil)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
