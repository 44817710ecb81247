package report_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/internal/domain/report"
)

func TestAssemble(t *testing.T) {
	Convey("Given classifier and scorer output", t, func() {
		labels := []model.Label{model.LabelExplorer, model.LabelImmersive}
		dist := model.Distribution{"RPG": 9, "Strategy": 4, "Indie": 4, "Puzzle": 1}
		recs := []model.ScoredRecommendation{
			{Candidate: model.CandidateTitle{ID: 5}, Score: 9, MatchedLabels: []string{"RPG"}},
		}

		rep, err := report.Assemble(labels, dist, recs)

		Convey("Then labels split into primary and secondary", func() {
			So(err, ShouldBeNil)
			So(rep.PrimaryLabel, ShouldEqual, model.LabelExplorer)
			So(rep.SecondaryLabels, ShouldResemble, []model.Label{model.LabelImmersive})
		})

		Convey("Then the top three genres are ranked with ties by name", func() {
			So(rep.TopGenres, ShouldResemble, []model.LabelWeight{
				{Label: "RPG", Weight: 9},
				{Label: "Indie", Weight: 4},
				{Label: "Strategy", Weight: 4},
			})
		})

		Convey("Then recommendations are carried through as a copy", func() {
			So(rep.Recommendations, ShouldResemble, recs)
			recs[0].Score = 0
			So(rep.Recommendations[0].Score, ShouldEqual, 9)
		})
	})

	Convey("Given a single label and no recommendations", t, func() {
		rep, err := report.Assemble([]model.Label{model.LabelBalanced}, model.Distribution{}, nil)

		So(err, ShouldBeNil)
		So(rep.SecondaryLabels, ShouldBeEmpty)
		So(rep.SecondaryLabels, ShouldNotBeNil)
		So(rep.TopGenres, ShouldBeEmpty)
		So(rep.Recommendations, ShouldNotBeNil)
	})

	Convey("Given no labels", t, func() {
		_, err := report.Assemble(nil, model.Distribution{"RPG": 1}, nil)
		So(errors.Is(err, report.ErrNoLabels), ShouldBeTrue)
	})
}
