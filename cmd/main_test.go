package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/specious/internal/config"
	"github.com/okian/specious/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeINat serves one research-grade observation of a wood duck.
func fakeINat() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/observations", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total_results": 1, "results": [{"id": 9, "uri": "https://www.inaturalist.org/observations/9", "taxon": {"id": 7107}, "photos": [{"url": "https://static.example.org/9/square.jpg"}]}]}`))
	})
	mux.HandleFunc("GET /v1/taxa/7107", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"id": 7107, "name": "Aix sponsa", "rank": "species", "ancestors": [{"name": "Aves", "rank": "class"}]}]}`))
	})
	return httptest.NewServer(mux)
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("SPECIOUS_ADDR", ":8080")
			_ = os.Setenv("SPECIOUS_RESET_ON_MISS", "false")
			defer func() {
				_ = os.Unsetenv("SPECIOUS_ADDR")
				_ = os.Unsetenv("SPECIOUS_RESET_ON_MISS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ResetOnMiss, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("SPECIOUS_PROVIDER_MAX_PAGE", "0")
			defer func() { _ = os.Unsetenv("SPECIOUS_PROVIDER_MAX_PAGE") }()

			convey.Convey("Then run should fail before serving", func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				convey.So(run(ctx), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given the wired application against a stub provider", t, func() {
		upstream := fakeINat()
		defer upstream.Close()

		cfg := config.New()
		cfg.ProviderBaseURL = upstream.URL + "/v1"
		cfg.ProviderTimeoutMS = 2000

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc := newService(cfg, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		convey.Convey("When a session is started and a guess submitted over HTTP", func() {
			resp, err := http.Post(srv.URL+"/sessions", "application/json", http.NoBody)
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

			var session struct {
				ID string `json:"id"`
			}
			convey.So(json.NewDecoder(resp.Body).Decode(&session), convey.ShouldBeNil)

			req, _ := http.NewRequest(http.MethodPut, srv.URL+"/sessions/"+session.ID+"/rank", strings.NewReader(`{"rank":"class"}`))
			rankResp, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			_ = rankResp.Body.Close()
			convey.So(rankResp.StatusCode, convey.ShouldEqual, http.StatusOK)

			guessResp, err := http.Post(srv.URL+"/sessions/"+session.ID+"/guess", "application/json", strings.NewReader(`{"guess":"Aves"}`))
			convey.So(err, convey.ShouldBeNil)
			defer guessResp.Body.Close()

			var resolved struct {
				Score   int `json:"score"`
				Outcome struct {
					Matched bool `json:"matched"`
				} `json:"outcome"`
			}
			convey.So(json.NewDecoder(guessResp.Body).Decode(&resolved), convey.ShouldBeNil)

			convey.Convey("Then the class points are awarded", func() {
				convey.So(guessResp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(resolved.Outcome.Matched, convey.ShouldBeTrue)
				convey.So(resolved.Score, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When the docs are requested", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()

			convey.Convey("Then they are served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx, 10*time.Millisecond)
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
