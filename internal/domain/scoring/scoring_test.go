package scoring_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gametaste/internal/domain/model"
	"github.com/okian/gametaste/internal/domain/scoring"
)

func candidate(id int64, genres ...string) model.CandidateTitle {
	return model.CandidateTitle{ID: id, Name: "c", Genres: genres}
}

func TestScore(t *testing.T) {
	Convey("Given an RPG-leaning distribution", t, func() {
		s := scoring.NewScorer()
		dist := model.Distribution{"RPG": 31.56, "Strategy": 7.07, "Fantasy": 2}

		Convey("When scoring single-genre candidates", func() {
			recs, err := s.Score(dist, []model.CandidateTitle{candidate(20, "Strategy"), candidate(10, "RPG")}, nil, 2)

			Convey("Then RPG ranks above Strategy", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].Candidate.ID, ShouldEqual, 10)
				So(recs[0].Score, ShouldBeGreaterThan, recs[1].Score)
			})
		})

		Convey("When a candidate has many tags", func() {
			focused := candidate(1, "RPG")
			padded := model.CandidateTitle{ID: 2, Genres: []string{"RPG"}, Tags: []string{"Puzzle", "Racing", "Sports"}}

			recs, _ := s.Score(dist, []model.CandidateTitle{padded, focused}, nil, 2)

			Convey("Then the score is normalized by label count", func() {
				So(recs[0].Candidate.ID, ShouldEqual, 1)
				So(recs[0].Score, ShouldAlmostEqual, 31.56, 1e-9)
				So(recs[1].Score, ShouldAlmostEqual, 31.56/4, 1e-9)
				So(recs[1].Reason.SharedCount, ShouldEqual, 1)
				So(recs[1].Reason.LabelCount, ShouldEqual, 4)
				So(recs[1].Reason.Coverage, ShouldEqual, 0.25)
			})
		})

		Convey("When candidates are owned or duplicated", func() {
			owned := map[int64]struct{}{10: {}}
			recs, err := s.Score(dist, []model.CandidateTitle{
				candidate(10, "RPG"),
				candidate(11, "Strategy"),
				candidate(11, "RPG"),
			}, owned, 5)

			Convey("Then owned IDs never appear and the first duplicate wins", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Candidate.ID, ShouldEqual, 11)
				So(recs[0].MatchedLabels, ShouldResemble, []string{"Strategy"})
				So(errors.Is(err, scoring.ErrInsufficientCandidates), ShouldBeTrue)
			})
		})

		Convey("When nothing overlaps", func() {
			recs, err := s.Score(dist, []model.CandidateTitle{candidate(1, "Racing"), candidate(2), candidate(3, " ")}, nil, 5)

			Convey("Then the list is empty and insufficiency is reported", func() {
				So(recs, ShouldBeEmpty)
				var ice *scoring.InsufficientCandidatesError
				So(errors.As(err, &ice), ShouldBeTrue)
				So(ice.Want, ShouldEqual, 5)
				So(ice.Have, ShouldEqual, 0)
			})
		})

		Convey("When scores tie", func() {
			recs, err := s.Score(dist, []model.CandidateTitle{candidate(30, "RPG"), candidate(7, "RPG"), candidate(19, "RPG")}, nil, 3)

			Convey("Then ids break the tie ascending", func() {
				So(err, ShouldBeNil)
				So(recs[0].Candidate.ID, ShouldEqual, 7)
				So(recs[1].Candidate.ID, ShouldEqual, 19)
				So(recs[2].Candidate.ID, ShouldEqual, 30)
			})
		})

		Convey("When more candidates survive than requested", func() {
			recs, err := s.Score(dist, []model.CandidateTitle{
				candidate(1, "Fantasy"), candidate(2, "RPG"), candidate(3, "Strategy"),
			}, nil, 2)

			Convey("Then the list is truncated to n", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[1].Candidate.ID, ShouldEqual, 3)
			})
		})

		Convey("When a candidate shares several labels", func() {
			c := model.CandidateTitle{ID: 4, Genres: []string{"Strategy", "RPG"}, Tags: []string{"Fantasy", "Racing"}}
			recs, _ := scoring.NewScorer(scoring.WithMatchedLabels(2)).Score(dist, []model.CandidateTitle{c}, nil, 1)

			Convey("Then matched labels follow distribution weight", func() {
				So(recs[0].MatchedLabels, ShouldResemble, []string{"RPG", "Strategy"})
				So(recs[0].Reason.Shared, ShouldHaveLength, 3)
				So(recs[0].Reason.Shared[2].Label, ShouldEqual, "Fantasy")
			})
		})

		Convey("When the limit is invalid", func() {
			_, err := s.Score(dist, []model.CandidateTitle{candidate(1, "RPG")}, nil, 0)
			So(errors.Is(err, scoring.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}

func TestScoreOrderingProperty(t *testing.T) {
	Convey("Given a larger catalog", t, func() {
		dist := model.Distribution{"A": 5, "B": 3, "C": 1, "D": 0.5}
		labels := []string{"A", "B", "C", "D", "E"}
		cands := make([]model.CandidateTitle, 0, 40)
		for i := int64(1); i <= 40; i++ {
			cands = append(cands, candidate(i, labels[i%5], labels[(i*3)%5]))
		}
		owned := map[int64]struct{}{3: {}, 8: {}, 13: {}}

		recs, _ := scoring.NewScorer().Score(dist, cands, owned, 10)

		Convey("Then results are strictly ordered and disjoint from owned", func() {
			for i, r := range recs {
				_, isOwned := owned[r.Candidate.ID]
				So(isOwned, ShouldBeFalse)
				So(r.Score, ShouldBeGreaterThan, 0)
				if i > 0 {
					prev := recs[i-1]
					ordered := prev.Score > r.Score || (prev.Score == r.Score && prev.Candidate.ID < r.Candidate.ID)
					So(ordered, ShouldBeTrue)
				}
			}
		})
	})
}
