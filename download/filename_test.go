package download

import (
	"strings"
	"testing"

	"github.com/canalgrab-cli/canalgrab/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFilename(t *testing.T) {
	Convey("Given a video with its program", t, func() {
		video := &catalog.Video{
			ID:      "v42",
			Title:   "Best of: l'été",
			Program: &catalog.Program{ID: "p1", Name: "Les Guignols"},
		}

		Convey("The name carries program, title and identifier", func() {
			name := Filename(video, catalog.Variant{Protocol: catalog.ProtocolProgressive, URL: "http://cdn/media/ep.mp4"})
			So(name, ShouldContainSubstring, "Guignols")
			So(name, ShouldContainSubstring, "v42")
			So(name, ShouldEndWith, ".mp4")
			So(strings.ContainsAny(name, `/\:*?"<>|`), ShouldBeFalse)
		})

		Convey("HLS variants get a transport-stream extension", func() {
			name := Filename(video, catalog.Variant{Protocol: catalog.ProtocolHLS, URL: "http://cdn/index.m3u8"})
			So(name, ShouldEndWith, ".ts")
		})

		Convey("A URL without extension falls back to mp4", func() {
			name := Filename(video, catalog.Variant{Protocol: catalog.ProtocolProgressive, URL: "http://cdn/stream"})
			So(name, ShouldEndWith, ".mp4")
		})

		Convey("Two videos of the same program never collide", func() {
			other := &catalog.Video{ID: "v43", Title: video.Title, Program: video.Program}
			variant := catalog.Variant{Protocol: catalog.ProtocolProgressive, URL: "http://cdn/ep.mp4"}
			So(Filename(video, variant), ShouldNotEqual, Filename(other, variant))
		})
	})
}
