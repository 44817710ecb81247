package steam_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gametaste/internal/adapters/steam"
)

func TestParseProfile(t *testing.T) {
	Convey("Given profile references", t, func() {
		cases := []struct {
			in   string
			kind steam.RefKind
			want string
		}{
			{"https://steamcommunity.com/profiles/76561197960287930", steam.KindID64, "76561197960287930"},
			{"https://steamcommunity.com/profiles/76561197960287930/", steam.KindID64, "76561197960287930"},
			{"steamcommunity.com/id/gaben/games?tab=all", steam.KindVanity, "gaben"},
			{"https://steamcommunity.com/id/gaben/", steam.KindVanity, "gaben"},
			{"  76561197960287930 ", steam.KindID64, "76561197960287930"},
			{"gaben", steam.KindVanity, "gaben"},
		}
		for _, tc := range cases {
			ref, err := steam.ParseProfile(tc.in)
			So(err, ShouldBeNil)
			So(ref.Kind, ShouldEqual, tc.kind)
			So(ref.Value, ShouldEqual, tc.want)
		}

		Convey("Then unsupported input is rejected", func() {
			for _, in := range []string{"", "   ", "https://example.com/user/1", "http://steamcommunity.com/groups/x", "two words"} {
				_, err := steam.ParseProfile(in)
				So(errors.Is(err, steam.ErrInvalidProfile), ShouldBeTrue)
			}
		})
	})
}
