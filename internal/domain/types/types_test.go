package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/specious/internal/domain/model"
	"github.com/okian/specious/internal/domain/round"
	types "github.com/okian/specious/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func woodDuck() *model.Classification {
	return &model.Classification{
		ID:   7107,
		Rank: "species",
		Name: "Aix sponsa",
		Ancestors: []model.Ancestor{
			{Rank: "kingdom", Name: "Animalia"},
			{Rank: "class", Name: "Aves"},
			{Rank: "family", Name: "Anatidae"},
		},
	}
}

func loadedMachine() (*round.Machine, error) {
	m := round.New(nil)
	t, err := m.Begin()
	if err != nil {
		return nil, err
	}
	obs := model.Observation{ID: 1, PhotoURL: "https://example.org/medium.jpg", ClassificationID: 7107, Permalink: "https://example.org/obs/1"}
	return m, m.LoadRound(t, obs, woodDuck())
}

func TestNewSessionView(t *testing.T) {
	Convey("Given a machine awaiting a guess", t, func() {
		m, err := loadedMachine()
		So(err, ShouldBeNil)

		v := types.NewSessionView("s-1", 3, m.Snapshot())

		Convey("Then the answer is withheld", func() {
			So(v.ID, ShouldEqual, "s-1")
			So(v.State, ShouldEqual, string(round.StateAwaitingGuess))
			So(v.Round, ShouldEqual, 1)
			So(v.Rank, ShouldEqual, "species")
			So(v.FilterTaxonID, ShouldEqual, 3)
			So(v.Classification, ShouldBeNil)
			So(v.Observation, ShouldNotBeNil)
			So(v.Observation.PhotoURL, ShouldEqual, "https://example.org/medium.jpg")
			So(v.Observation.ClassificationID, ShouldEqual, 0)
			So(v.Observation.Permalink, ShouldBeEmpty)
			So(v.Outcome, ShouldBeNil)
		})

		Convey("Then the snapshot's observation is not modified", func() {
			So(m.Snapshot().Observation.ClassificationID, ShouldEqual, 7107)
		})
	})

	Convey("Given a resolved round with no data at the chosen rank", t, func() {
		m, err := loadedMachine()
		So(err, ShouldBeNil)
		So(m.SelectRank("order"), ShouldBeNil)
		_, err = m.SubmitGuess("Anseriformes")
		So(err, ShouldBeNil)

		v := types.NewSessionView("s-2", 0, m.Snapshot())

		Convey("Then the classification and placeholder answer are exposed", func() {
			So(v.Classification, ShouldNotBeNil)
			So(v.Observation.Permalink, ShouldEqual, "https://example.org/obs/1")
			So(v.Outcome, ShouldNotBeNil)
			So(v.Outcome.CorrectAnswer, ShouldBeNil)
			So(v.Outcome.AnswerDisplay, ShouldEqual, model.NoDataPlaceholder)
		})

		Convey("Then the JSON carries a null correct answer", func() {
			raw, err := json.Marshal(v)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"correct_answer":null`)
			So(string(raw), ShouldContainSubstring, `"answer_display":"(no data)"`)
			So(string(raw), ShouldNotContainSubstring, `"filter_taxon_id"`)
		})
	})
}
