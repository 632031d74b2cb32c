package progress

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBar(t *testing.T) {
	Convey("Given a bar over a known total", t, func() {
		var out strings.Builder
		bar := NewBar(&out, "episode.mp4")
		bar.width = 60

		Convey("The first update draws a line with a percentage", func() {
			bar.Update(25, 100)
			So(out.String(), ShouldContainSubstring, "\r")
			So(out.String(), ShouldContainSubstring, "[ 25%]")
			So(out.String(), ShouldContainSubstring, "episode.mp4")
		})

		Convey("Reaching the total always draws, throttle or not", func() {
			bar.Update(10, 100)
			bar.Update(100, 100)
			So(out.String(), ShouldContainSubstring, "[100%]")
		})

		Convey("Rapid intermediate updates are throttled", func() {
			bar.Update(10, 100)
			first := out.String()
			bar.Update(11, 100)
			So(out.String(), ShouldEqual, first)
		})

		Convey("A backwards byte count redraws right away", func() {
			bar.Update(50, 100)
			So(out.String(), ShouldContainSubstring, "[ 50%]")
			bar.Update(0, 100)
			So(out.String(), ShouldContainSubstring, "[  0%]")
		})

		Convey("Finish ends the line and silences later updates", func() {
			bar.Update(50, 100)
			bar.Finish()
			So(out.String(), ShouldEndWith, "\n")
			drawn := out.String()
			bar.Update(100, 100)
			bar.Finish()
			So(out.String(), ShouldEqual, drawn)
		})
	})

	Convey("Given an unknown total", t, func() {
		var out strings.Builder
		bar := NewBar(&out, "live.ts")
		bar.width = 60
		bar.Update(1500, -1)

		Convey("Only the transferred byte count is shown", func() {
			So(out.String(), ShouldContainSubstring, "1KB")
			So(out.String(), ShouldNotContainSubstring, "%]")
		})
	})
}
