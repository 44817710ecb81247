package model_test

import (
	"testing"

	"github.com/okian/gametaste/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDistributionRanking(t *testing.T) {
	Convey("Given a distribution with tied weights", t, func() {
		d := model.Distribution{"RPG": 3, "Strategy": 1, "Action": 3, "Indie": 0.5}

		Convey("When ranking", func() {
			ranked := d.Ranked()

			Convey("Then weight desc and label asc order is used", func() {
				So(ranked, ShouldHaveLength, 4)
				So(ranked[0].Label, ShouldEqual, "Action")
				So(ranked[1].Label, ShouldEqual, "RPG")
				So(ranked[2].Label, ShouldEqual, "Strategy")
				So(ranked[3].Label, ShouldEqual, "Indie")
			})
		})

		Convey("When taking the top entries", func() {
			So(d.Top(2), ShouldHaveLength, 2)
			So(d.Top(10), ShouldHaveLength, 4)
			So(d.Top(-1), ShouldBeEmpty)
		})
	})
}

func TestOwnedTitleLabels(t *testing.T) {
	Convey("Given a title with overlapping genres and tags", t, func() {
		title := model.OwnedTitle{
			Genres: []string{"Action", "RPG"},
			Tags:   []string{"Co-op", "RPG", "Single-player"},
		}

		Convey("Then labels are the sorted union", func() {
			So(title.Labels(), ShouldResemble, []string{"Action", "Co-op", "RPG", "Single-player"})
		})

		Convey("Then an unlabeled title has an empty set", func() {
			So(model.OwnedTitle{Genres: []string{}, Tags: []string{}}.Labels(), ShouldBeEmpty)
		})
	})
}

func TestLibraryHelpers(t *testing.T) {
	Convey("Given a library", t, func() {
		lib := &model.Library{Titles: []model.OwnedTitle{{ID: 10}, {ID: 20}}}

		Convey("Then owned IDs are collected", func() {
			ids := lib.OwnedIDs()
			So(ids, ShouldContainKey, int64(10))
			So(ids, ShouldContainKey, int64(20))
			So(lib.Len(), ShouldEqual, 2)
		})

		Convey("Then a nil library is empty", func() {
			var nilLib *model.Library
			So(nilLib.Len(), ShouldEqual, 0)
			So(nilLib.OwnedIDs(), ShouldBeEmpty)
		})
	})

	Convey("Given playstyle labels", t, func() {
		So(model.LabelImmersive.Valid(), ShouldBeTrue)
		So(model.Label("completionist").Valid(), ShouldBeFalse)
	})
}
