package resolve

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseMode(t *testing.T) {
	Convey("Every mode name round-trips", t, func() {
		for _, name := range []string{"all", "last", "auto", "pick"} {
			mode, err := ParseMode(name)
			So(err, ShouldBeNil)
			So(mode.String(), ShouldEqual, name)
		}
	})

	Convey("An unknown name is rejected", t, func() {
		_, err := ParseMode("newest")
		So(err, ShouldNotBeNil)
	})
}
