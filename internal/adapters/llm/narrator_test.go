package llm_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gametaste/internal/adapters/llm"
	"github.com/okian/gametaste/internal/domain/model"
)

func chatServer(status int, content string, seen *map[string]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, seen)
			(*seen)["auth"] = r.Header.Get("Authorization")
		}
		w.WriteHeader(status)
		resp, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
		_, _ = w.Write(resp)
	}))
}

func input() llm.NarrativeInput {
	return llm.NarrativeInput{
		Tier: model.TierB,
		Library: model.LibraryStats{
			TotalPlaytimeHours: 812.5,
			OwnedCount:         140,
			PlayedCount:        61,
			UnplayedCount:      79,
			Recent:             []model.RecentTitle{{ID: 292030, Name: "The Witcher 3", RecentMinutes: 420}},
		},
		Report: model.Report{
			PrimaryLabel: model.LabelImmersive,
			Recommendations: []model.ScoredRecommendation{
				{Candidate: model.CandidateTitle{ID: 11, Name: "Pillars"}, MatchedLabels: []string{"RPG"}},
			},
		},
	}
}

func TestNarrate(t *testing.T) {
	Convey("Given a chat completions server", t, func() {
		ctx := context.Background()

		Convey("When the model returns a fenced JSON object", func() {
			seen := map[string]any{}
			srv := chatServer(http.StatusOK, "```json\n"+`{"gamer_type":"Night Owl Strategist","tier":"S","summary":"Deep diver",
				"reasons":[{"id":11,"reason":"More party-based RPG."},{"id":99,"reason":"not recommended"}]}`+"\n```", &seen)
			defer srv.Close()

			c, err := llm.New(srv.URL, "gpt-test", "sk-test", llm.WithHTTPClient(srv.Client()))
			So(err, ShouldBeNil)
			n, err := c.Narrate(ctx, input())

			Convey("Then prose is decoded and the tier is not overridden by the model", func() {
				So(err, ShouldBeNil)
				So(n.GamerType, ShouldEqual, "Night Owl Strategist")
				So(n.Tier, ShouldEqual, model.TierB)
				So(n.Reasons, ShouldHaveLength, 1)
				So(n.Reasons[0].ID, ShouldEqual, 11)
			})

			Convey("Then the request carries the model, key and report", func() {
				So(seen["model"], ShouldEqual, "gpt-test")
				So(seen["auth"], ShouldEqual, "Bearer sk-test")
				msgs := seen["messages"].([]any)
				So(msgs, ShouldHaveLength, 2)
				user := msgs[1].(map[string]any)["content"].(string)
				So(user, ShouldContainSubstring, `"primary_label":"immersive"`)
			})

			Convey("Then the request carries the library totals and recent games", func() {
				msgs := seen["messages"].([]any)
				var sent map[string]any
				So(json.Unmarshal([]byte(msgs[1].(map[string]any)["content"].(string)), &sent), ShouldBeNil)
				lib := sent["library"].(map[string]any)
				So(lib["played_count"], ShouldEqual, float64(61))
				So(lib["unplayed_count"], ShouldEqual, float64(79))
				So(lib["owned_count"], ShouldEqual, float64(140))
				recent := lib["recent"].([]any)
				So(recent, ShouldHaveLength, 1)
				So(recent[0].(map[string]any)["name"], ShouldEqual, "The Witcher 3")
			})
		})

		Convey("When the upstream fails", func() {
			srv := chatServer(http.StatusTooManyRequests, "", nil)
			defer srv.Close()
			c, _ := llm.New(srv.URL, "m", "k")

			_, err := c.Narrate(ctx, input())
			So(errors.Is(err, llm.ErrUpstream), ShouldBeTrue)
			So(strings.Contains(err.Error(), "429"), ShouldBeTrue)
		})

		Convey("When the upstream error body is long multi-byte text", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("x" + strings.Repeat("é", 300)))
			}))
			defer srv.Close()
			c, _ := llm.New(srv.URL, "m", "k")

			_, err := c.Narrate(ctx, input())

			Convey("Then the message is cut on a rune boundary", func() {
				So(errors.Is(err, llm.ErrUpstream), ShouldBeTrue)
				So(utf8.ValidString(err.Error()), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "500")
				So(err.Error(), ShouldNotContainSubstring, strings.Repeat("é", 200))
			})
		})

		Convey("When the content is not JSON", func() {
			srv := chatServer(http.StatusOK, "I cannot help with that.", nil)
			defer srv.Close()
			c, _ := llm.New(srv.URL, "m", "k", llm.WithTemperature(0.2), llm.WithSystemPrompt("be brief"))

			_, err := c.Narrate(ctx, input())
			So(errors.Is(err, llm.ErrBadResponse), ShouldBeTrue)
		})

		Convey("When the client is not configured", func() {
			_, err := llm.New("", "m", "k")
			So(errors.Is(err, llm.ErrMisconfigured), ShouldBeTrue)
			_, err = llm.New("http://x", "m", " ")
			So(errors.Is(err, llm.ErrMisconfigured), ShouldBeTrue)
		})
	})
}
