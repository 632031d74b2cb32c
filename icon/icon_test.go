package icon

import (
	"testing"

	"github.com/canalgrab-cli/canalgrab/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Icon rendering", t, func() {
		Convey("Plain variant", func() {
			viper.Set(key.IconsVariant, "plain")
			So(Get(Success), ShouldEqual, "[ok]")
			So(Get(Fail), ShouldEqual, "[fail]")
		})

		Convey("Unknown variant renders nothing", func() {
			viper.Set(key.IconsVariant, "bogus")
			So(Get(Success), ShouldBeEmpty)
		})

		Convey("Every registered icon has all variants", func() {
			for _, def := range icons {
				So(def.emoji, ShouldNotBeEmpty)
				So(def.nerd, ShouldNotBeEmpty)
				So(def.plain, ShouldNotBeEmpty)
			}
		})
	})
}
