package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/gametaste/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.TopK, convey.ShouldEqual, 50)
			convey.So(cfg.RecommendationCount, convey.ShouldEqual, 8)
			convey.So(cfg.ImmersiveConcentration, convey.ShouldEqual, 0.6)
			convey.So(cfg.ExplorerBreadth, convey.ShouldEqual, 0.5)
			convey.So(cfg.CasualMinTitles, convey.ShouldEqual, 30)
			convey.So(cfg.FetchConcurrency, convey.ShouldEqual, 4)
			convey.So(cfg.FetchInterval(), convey.ShouldEqual, 300*time.Millisecond)
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, time.Hour)
			convey.So(cfg.AnalysisTimeout(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then text generation is disabled without a key", func() {
			convey.So(cfg.LLMEnabled(), convey.ShouldBeFalse)
			cfg.LLMAPIKey = "sk-test"
			convey.So(cfg.LLMEnabled(), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out-of-range values", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":            func(c *config.Config) { c.Addr = "" },
			"zero top_k":            func(c *config.Config) { c.TopK = 0 },
			"too few":               func(c *config.Config) { c.RecommendationCount = 4 },
			"too many":              func(c *config.Config) { c.RecommendationCount = 11 },
			"ratio above one":       func(c *config.Config) { c.ExplorerBreadth = 1.5 },
			"zero ratio":            func(c *config.Config) { c.ImmersiveConcentration = 0 },
			"no workers":            func(c *config.Config) { c.FetchConcurrency = 0 },
			"negative interval":     func(c *config.Config) { c.FetchIntervalMS = -1 },
			"zero cache":            func(c *config.Config) { c.CacheMaxEntries = 0 },
			"zero pool":             func(c *config.Config) { c.CandidatePoolSize = 0 },
			"zero body":             func(c *config.Config) { c.MaxBodyBytes = 0 },
			"zero casual threshold": func(c *config.Config) { c.CasualMinTitles = 0 },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)

			convey.Convey("Then "+name+" is rejected", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then the boundary counts are accepted", func() {
			cfg := config.New()
			cfg.RecommendationCount = 5
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			cfg.RecommendationCount = 10
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
