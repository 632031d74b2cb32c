package query

import (
	"testing"

	"github.com/canalgrab-cli/canalgrab/filesystem"
	"github.com/canalgrab-cli/canalgrab/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.SearchShowQuerySuggestions, true)
}

func TestQuery(t *testing.T) {
	Convey("Given query history", t, func() {
		Convey("When remembering program patterns", func() {
			So(Remember("guignols", 1), ShouldBeNil)
			So(Remember("groland", 10), ShouldBeNil)

			Convey("Then suggestions are sorted by rank", func() {
				suggestionCache = make(map[string][]*queryRecord)
				viper.Set(key.SearchShowQuerySuggestions, true)

				s := SuggestMany("gr")
				So(len(s), ShouldBeGreaterThanOrEqualTo, 1)
				So(s[0], ShouldEqual, "groland")
			})

			Convey("Then the single suggestion is the top ranked match", func() {
				suggestionCache = make(map[string][]*queryRecord)

				So(Suggest("gr").MustGet(), ShouldEqual, "groland")
				So(Suggest("zzzz").IsAbsent(), ShouldBeTrue)
			})

			Convey("It sanitizes input", func() {
				So(sanitize("  GUIGNOLS  "), ShouldEqual, "guignols")
			})
		})

		Convey("When suggestions are disabled", func() {
			viper.Set(key.SearchShowQuerySuggestions, false)
			So(SuggestMany("g"), ShouldBeEmpty)
			viper.Set(key.SearchShowQuerySuggestions, true)
		})
	})
}

func TestClosest(t *testing.T) {
	Convey("Given a set of program names", t, func() {
		names := []string{"Les Guignols", "Groland", "Le Zapping"}

		Convey("A near miss finds its neighbor", func() {
			So(Closest("guignols", names).MustGet(), ShouldEqual, "Les Guignols")
			So(Closest("grolande", names).MustGet(), ShouldEqual, "Groland")
		})

		Convey("A distant name yields nothing", func() {
			So(Closest("xxxxxxxxxxxxxxxx", names).IsAbsent(), ShouldBeTrue)
		})

		Convey("No candidates yields nothing", func() {
			So(Closest("guignols", nil).IsAbsent(), ShouldBeTrue)
		})
	})
}
