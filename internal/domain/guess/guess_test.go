package guess_test

import (
	"testing"

	"github.com/okian/specious/internal/domain/guess"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEvaluate(t *testing.T) {
	Convey("Given a resolved name", t, func() {
		Convey("When the guess differs only in case and padding", func() {
			v := guess.Evaluate("  Aves ", "aves", true)

			Convey("Then it matches", func() {
				So(v.Matched, ShouldBeTrue)
				So(v.NormalizedGuess, ShouldEqual, "aves")
			})
		})

		Convey("When the guess is a misspelling", func() {
			v := guess.Evaluate("Avess", "aves", true)
			So(v.Matched, ShouldBeFalse)
		})

		Convey("When the guess is a partial name", func() {
			v := guess.Evaluate("aix", "aix sponsa", true)
			So(v.Matched, ShouldBeFalse)
		})

		Convey("When the resolved name is itself padded", func() {
			v := guess.Evaluate("aves", " AVES", true)
			So(v.Matched, ShouldBeTrue)
		})
	})

	Convey("Given no resolved name", t, func() {
		Convey("Then no guess ever matches", func() {
			for _, g := range []string{"aves", "", "  ", "(no data)"} {
				So(guess.Evaluate(g, "", false).Matched, ShouldBeFalse)
			}
		})
	})
}

func TestIsBlank(t *testing.T) {
	Convey("Given candidate guesses", t, func() {
		So(guess.IsBlank(""), ShouldBeTrue)
		So(guess.IsBlank(" \t\n"), ShouldBeTrue)
		So(guess.IsBlank(" a "), ShouldBeFalse)
	})
}
