package model_test

import (
	"errors"
	"testing"

	"github.com/okian/specious/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassification_Validate(t *testing.T) {
	Convey("Given a classification record", t, func() {
		c := model.Classification{
			Rank: "species",
			Name: "Aix sponsa",
			Ancestors: []model.Ancestor{
				{Rank: "kingdom", Name: "Animalia"},
				{Rank: "class", Name: "Aves"},
			},
		}

		Convey("When the lineage precedes the subject", func() {
			Convey("Then it is valid", func() {
				So(c.Validate(), ShouldBeNil)
			})
		})

		Convey("When an ancestor repeats the subject's rank with the same name", func() {
			c.Ancestors = append(c.Ancestors, model.Ancestor{Rank: "species", Name: "aix sponsa "})
			So(c.Validate(), ShouldBeNil)
		})

		Convey("When an ancestor repeats the subject's rank with another name", func() {
			c.Ancestors = append(c.Ancestors, model.Ancestor{Rank: "species", Name: "Anas platyrhynchos"})

			Convey("Then it reports a rank conflict", func() {
				So(errors.Is(c.Validate(), model.ErrRankConflict), ShouldBeTrue)
			})
		})
	})
}

func TestOutcome_AnswerOrPlaceholder(t *testing.T) {
	Convey("Given outcomes with and without a correct answer", t, func() {
		answer := "aves"
		known := model.Outcome{CorrectAnswer: &answer}
		unknown := model.Outcome{}

		So(known.AnswerOrPlaceholder(), ShouldEqual, "aves")
		So(unknown.AnswerOrPlaceholder(), ShouldEqual, model.NoDataPlaceholder)
	})
}
