package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/gametaste/internal/app"
	"github.com/okian/gametaste/internal/config"
	"github.com/okian/gametaste/pkg/logger"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("GAMETASTE_ADDR", ":8080")
			_ = os.Setenv("GAMETASTE_RECOMMENDATION_COUNT", "6")
			defer func() {
				_ = os.Unsetenv("GAMETASTE_ADDR")
				_ = os.Unsetenv("GAMETASTE_RECOMMENDATION_COUNT")
			}()

			cfg, err := config.Load(context.Background())

			convey.Convey("Then the overrides are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RecommendationCount, convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			_ = os.Setenv("GAMETASTE_ADDR", "")
			defer func() { _ = os.Unsetenv("GAMETASTE_ADDR") }()

			cfg, err := config.Load(context.Background())

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a mux built from defaults", t, func() {
		ctx := context.Background()
		cfg := config.New()
		svc, err := app.FromConfig(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		mux := newMux(ctx, cfg, svc)

		serve := func(method, target, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		convey.Convey("Then docs and health routes are served", func() {
			convey.So(serve(http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/openapi.yaml", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/stats", "").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then an offline analysis runs end to end", func() {
			body := `{"library":[
				{"id":1,"name":"A","playtime_minutes":3000,"genres":["RPG"]},
				{"id":2,"name":"B","playtime_minutes":900,"genres":["Strategy"],"tags":["Turn-Based"]}
			],"candidates":[
				{"id":10,"genres":["RPG"]},{"id":11,"genres":["Strategy"]},{"id":12,"tags":["Turn-Based"]},
				{"id":13,"genres":["RPG","Strategy"]},{"id":14,"genres":["RPG","Action"]},{"id":1,"genres":["RPG"]}
			],"limit":5}`
			w := serve(http.MethodPost, "/analyze", body)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"primary_label":"immersive"`)
			convey.So(w.Body.String(), convey.ShouldNotContainSubstring, `"candidate":{"id":1,`)
		})

		convey.Convey("Then profile lookups report missing configuration", func() {
			w := serve(http.MethodGet, "/profiles/gaben/analysis", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop exits with its context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}
