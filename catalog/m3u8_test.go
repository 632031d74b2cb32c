package catalog

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseMasterPlaylist(t *testing.T) {
	Convey("Given a master playlist", t, func() {
		playlist := "#EXTM3U\n" +
			"#EXT-X-VERSION:3\n" +
			"#EXT-X-STREAM-INF:BANDWIDTH=2500000,RESOLUTION=1280x720,CODECS=\"avc1.64001f,mp4a.40.2\"\n" +
			"720p/index.m3u8\n" +
			"\n" +
			"#EXT-X-STREAM-INF:CODECS=\"avc1.42e00a\",BANDWIDTH=400000\n" +
			"http://cdn.example.com/low.m3u8\n"

		Convey("Each stream entry yields its bandwidth, codecs and URI", func() {
			entries, err := parseMasterPlaylist(playlist)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)

			So(entries[0].Bandwidth, ShouldEqual, 2500000)
			So(entries[0].Codecs, ShouldEqual, "avc1.64001f,mp4a.40.2")
			So(entries[0].URI, ShouldEqual, "720p/index.m3u8")

			So(entries[1].Bandwidth, ShouldEqual, 400000)
			So(entries[1].Codecs, ShouldEqual, "avc1.42e00a")
			So(entries[1].URI, ShouldEqual, "http://cdn.example.com/low.m3u8")
		})
	})

	Convey("Given a media playlist", t, func() {
		playlist := "#EXTM3U\n" +
			"#EXT-X-TARGETDURATION:10\n" +
			"#EXTINF:9.8,\n" +
			"segment0.ts\n"

		Convey("No stream entries come back and that is not an error", func() {
			entries, err := parseMasterPlaylist(playlist)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})
	})

	Convey("Given something that is not a playlist at all", t, func() {
		_, err := parseMasterPlaylist("<html>Not Found</html>")
		So(err, ShouldNotBeNil)
	})

	Convey("Windows line endings are tolerated", t, func() {
		entries, err := parseMasterPlaylist("#EXTM3U\r\n#EXT-X-STREAM-INF:BANDWIDTH=100\r\na.m3u8\r\n")
		So(err, ShouldBeNil)
		So(entries, ShouldHaveLength, 1)
		So(entries[0].URI, ShouldEqual, "a.m3u8")
	})
}
