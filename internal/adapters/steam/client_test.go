package steam_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/gametaste/internal/adapters/cache"
	"github.com/okian/gametaste/internal/adapters/steam"
)

const gabenID = "76561197960287930"

type fakeSteam struct {
	detailCalls atomic.Int32
}

func (f *fakeSteam) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamUser/ResolveVanityURL/v1/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("vanityurl") == "gaben" {
			_, _ = w.Write([]byte(`{"response":{"steamid":"` + gabenID + `","success":1}}`))
			return
		}
		_, _ = w.Write([]byte(`{"response":{"success":42,"message":"No match"}}`))
	})
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v1/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("steamid") != gabenID {
			_, _ = w.Write([]byte(`{"response":{}}`))
			return
		}
		_, _ = w.Write([]byte(`{"response":{"game_count":5,"games":[
			{"appid":10,"name":"Counter-Strike","playtime_forever":30},
			{"appid":570,"name":"Dota 2","playtime_forever":6000,"playtime_2weeks":120},
			{"appid":999,"name":"Delisted","playtime_forever":300},
			{"appid":220,"name":"Half-Life 2","playtime_forever":0},
			{"appid":440,"name":"Team Fortress 2","playtime_forever":6000}
		]}}`))
	})
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		f.detailCalls.Add(1)
		switch id := r.URL.Query().Get("appids"); id {
		case "570", "440", "10":
			_, _ = w.Write([]byte(`{"` + id + `":{"success":true,"data":{"name":"App ` + id + `","is_free":true,
				"short_description":"desc","genres":[{"id":"1","description":"Action"},{"id":"2","description":"Strategy"}],
				"categories":[{"id":1,"description":"Multi-player"}],
				"price_overview":{"currency":"USD","initial":1999,"final":999,"discount_percent":50}}}}`))
		case "500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"` + id + `":{"success":false}}`))
		}
	})
	mux.HandleFunc("/api/storesearch/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":2,"items":[{"type":"app","name":"Dota Underlords","id":1046930},{"type":"app","name":"Artifact","id":583950}]}`))
	})
	return mux
}

func newClient(srv *httptest.Server, opts ...steam.Option) *steam.Client {
	base := []steam.Option{
		steam.WithAPIBaseURL(srv.URL),
		steam.WithStoreBaseURL(srv.URL),
		steam.WithStoreInterval(0),
		steam.WithHTTPClient(srv.Client()),
	}
	return steam.NewClient("k", append(base, opts...)...)
}

func TestClient(t *testing.T) {
	Convey("Given a Steam client against a fake API", t, func() {
		fake := &fakeSteam{}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()
		ctx := context.Background()
		c := newClient(srv)

		Convey("When resolving vanity names", func() {
			id, err := c.ResolveVanity(ctx, "gaben")
			_, errMissing := c.ResolveVanity(ctx, "nobody")

			Convey("Then known names resolve and unknown ones are not found", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, gabenID)
				So(errors.Is(errMissing, steam.ErrProfileNotFound), ShouldBeTrue)
			})
		})

		Convey("When listing owned games", func() {
			games, err := c.OwnedGames(ctx, gabenID)
			_, errPrivate := c.OwnedGames(ctx, "76561190000000000")

			Convey("Then games are ordered by playtime then app id", func() {
				So(err, ShouldBeNil)
				So(games, ShouldHaveLength, 5)
				So(games[0].AppID, ShouldEqual, 440)
				So(games[1].AppID, ShouldEqual, 570)
				So(games[2].AppID, ShouldEqual, 999)
				So(games[4].AppID, ShouldEqual, 220)
			})

			Convey("Then an empty list means a private profile", func() {
				So(errors.Is(errPrivate, steam.ErrPrivateProfile), ShouldBeTrue)
			})
		})

		Convey("When fetching app details", func() {
			d, err := c.AppDetails(ctx, 570)
			_, errMissing := c.AppDetails(ctx, 999)
			_, errServer := c.AppDetails(ctx, 500)

			Convey("Then genres, categories and price are decoded", func() {
				So(err, ShouldBeNil)
				So(d.Genres, ShouldResemble, []string{"Action", "Strategy"})
				So(d.Categories, ShouldResemble, []string{"Multi-player"})
				So(d.Price.Final, ShouldEqual, 999)
				So(d.IsFree, ShouldBeTrue)
			})

			Convey("Then failures are typed", func() {
				So(errors.Is(errMissing, steam.ErrAppNotFound), ShouldBeTrue)
				So(errors.Is(errServer, steam.ErrUpstream), ShouldBeTrue)
				var se *steam.StatusError
				So(errors.As(errServer, &se), ShouldBeTrue)
				So(se.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When searching the store", func() {
			items, err := c.SearchStore(ctx, "Strategy")

			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 2)
			So(items[0].ID, ShouldEqual, 1046930)
		})

		Convey("When the API key is missing", func() {
			bare := steam.NewClient("", steam.WithAPIBaseURL(srv.URL))
			_, err := bare.OwnedGames(ctx, gabenID)
			So(errors.Is(err, steam.ErrMissingAPIKey), ShouldBeTrue)
		})

		Convey("When the store keeps failing", func() {
			var last error
			for i := 0; i < 6; i++ {
				_, last = c.AppDetails(ctx, 500)
			}

			Convey("Then the breaker opens and rejects calls", func() {
				So(errors.Is(last, gobreaker.ErrOpenState), ShouldBeTrue)
				So(errors.Is(last, steam.ErrUpstream), ShouldBeTrue)
			})
		})
	})
}

func TestDetailsPool(t *testing.T) {
	Convey("Given a paced client", t, func() {
		fake := &fakeSteam{}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()
		ctx := context.Background()

		Convey("When resolving a batch", func() {
			c := newClient(srv, steam.WithStoreInterval(20*time.Millisecond), steam.WithConcurrency(4))
			start := time.Now()
			out, err := c.Details(ctx, []int64{570, 999, 440, 10}, nil)
			elapsed := time.Since(start)

			Convey("Then results align with ids and failures are nil", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 4)
				So(out[0].AppID, ShouldEqual, 570)
				So(out[1], ShouldBeNil)
				So(out[2].AppID, ShouldEqual, 440)
				So(out[3].AppID, ShouldEqual, 10)
			})

			Convey("Then requests are spaced by the shared limiter", func() {
				So(elapsed, ShouldBeGreaterThanOrEqualTo, 50*time.Millisecond)
			})
		})

		Convey("When a run cache is supplied", func() {
			c := newClient(srv)
			dc := steam.NewDetailsCache(cache.WithTTL(time.Minute))

			_, err1 := c.Details(ctx, []int64{570, 440}, dc)
			_, err2 := c.Details(ctx, []int64{570, 440}, dc)

			Convey("Then repeated lookups are served from it", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(fake.detailCalls.Load(), ShouldEqual, 2)
				So(dc.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the context is cancelled", func() {
			c := newClient(srv)
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := c.Details(cctx, []int64{570}, nil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestLibraryFetch(t *testing.T) {
	Convey("Given a library fetcher", t, func() {
		fake := &fakeSteam{}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()
		lib := steam.NewLibrary(newClient(srv))

		Convey("When fetching a vanity profile", func() {
			snap, err := lib.Fetch(context.Background(), steam.ProfileRef{Kind: steam.KindVanity, Value: "gaben"}, 3, nil)

			Convey("Then only the top played titles are enriched", func() {
				So(err, ShouldBeNil)
				So(snap.SteamID, ShouldEqual, gabenID)
				So(snap.Titles, ShouldHaveLength, 3)
				So(snap.Titles[0].ID, ShouldEqual, 440)
				So(snap.Titles[0].Genres, ShouldResemble, []string{"Action", "Strategy"})
				So(snap.Titles[0].Tags, ShouldResemble, []string{"Multi-player"})
				So(snap.Titles[1].RecentMinutes, ShouldEqual, 120)
			})

			Convey("Then a failed lookup leaves genres unknown", func() {
				So(snap.Titles[2].ID, ShouldEqual, 999)
				So(snap.Titles[2].Genres, ShouldBeNil)
				So(snap.Titles[2].Tags, ShouldBeNil)
			})

			Convey("Then every owned game is reported for exclusion", func() {
				So(snap.Owned, ShouldHaveLength, 5)
				So(snap.Owned, ShouldContainKey, int64(220))
			})

			Convey("Then library stats cover the whole library", func() {
				So(snap.Stats.OwnedCount, ShouldEqual, 5)
				So(snap.Stats.PlayedCount, ShouldEqual, 4)
				So(snap.Stats.UnplayedCount, ShouldEqual, 1)
				So(snap.Stats.TotalPlaytimeHours, ShouldEqual, 205.5)
				So(snap.Stats.Recent, ShouldHaveLength, 1)
			})
		})

		Convey("When the profile is private", func() {
			_, err := lib.Fetch(context.Background(), steam.ProfileRef{Kind: steam.KindID64, Value: "76561190000000000"}, 3, nil)
			So(errors.Is(err, steam.ErrPrivateProfile), ShouldBeTrue)
		})
	})
}
