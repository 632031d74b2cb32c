package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Accepts http(s) URLs", func() {
			u, err := sanitizeMediaTarget("https://example.com/stream.m3u8")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "https://example.com/stream.m3u8")
		})

		Convey("Rejects flag-shaped input", func() {
			_, err := sanitizeMediaTarget("--fullscreen")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects empty input", func() {
			_, err := sanitizeMediaTarget("   ")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects non-http schemes", func() {
			_, err := sanitizeMediaTarget("file:///etc/passwd")
			So(err, ShouldNotBeNil)
		})
	})
}
