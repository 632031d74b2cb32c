package download

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/canalgrab-cli/canalgrab/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func hlsServer(segments []string, failSegment int32) (*httptest.Server, *int32) {
	var failures int32
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)

	mux.HandleFunc("/index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "#EXTM3U")
		fmt.Fprintln(w, "#EXT-X-TARGETDURATION:10")
		for i := range segments {
			fmt.Fprintln(w, "#EXTINF:9.8,")
			fmt.Fprintf(w, "seg%d.ts\n", i)
		}
		fmt.Fprintln(w, "#EXT-X-ENDLIST")
	})

	for i, segment := range segments {
		mux.HandleFunc(fmt.Sprintf("/seg%d.ts", i), func(w http.ResponseWriter, r *http.Request) {
			if failSegment == int32(i) {
				atomic.AddInt32(&failures, 1)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, segment)
		})
	}

	return server, &failures
}

func TestDownloadHLS(t *testing.T) {
	segments := []string{
		strings.Repeat("a", 500),
		strings.Repeat("b", 300),
		strings.Repeat("c", 700),
	}
	whole := strings.Join(segments, "")

	Convey("Given a healthy segment server", t, func() {
		filesystem.SetMemMapFs()
		server, _ := hlsServer(segments, -1)
		defer server.Close()

		d := testDownloader(server.Client())

		Convey("Segments concatenate into the destination file", func() {
			written, err := d.DownloadHLS(context.Background(), server.URL+"/index.m3u8", "/downloads/show.ts", nil)
			So(err, ShouldBeNil)
			So(written, ShouldEqual, len(whole))

			fs := filesystem.API()
			got, err := fs.ReadFile("/downloads/show.ts")
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, whole)

			exists, _ := fs.Exists("/downloads/show.ts" + segmentStateSuffix)
			So(exists, ShouldBeFalse)
		})

		Convey("An existing destination is refused", func() {
			fs := filesystem.API()
			So(fs.WriteFile("/downloads/show.ts", []byte("done"), 0o644), ShouldBeNil)

			_, err := d.DownloadHLS(context.Background(), server.URL+"/index.m3u8", "/downloads/show.ts", nil)
			So(err, ShouldEqual, ErrExists)
		})
	})

	Convey("Given a permanently failing segment", t, func() {
		filesystem.SetMemMapFs()
		server, failures := hlsServer(segments, 1)
		defer server.Close()

		d := testDownloader(server.Client())

		Convey("The run stops there and the sidecar records the completed prefix", func() {
			written, err := d.DownloadHLS(context.Background(), server.URL+"/index.m3u8", "/downloads/show.ts", nil)
			So(err, ShouldNotBeNil)
			So(written, ShouldEqual, len(segments[0]))
			So(atomic.LoadInt32(failures), ShouldEqual, 3)

			fs := filesystem.API()
			data, err := fs.ReadFile("/downloads/show.ts" + segmentStateSuffix)
			So(err, ShouldBeNil)

			var state segmentState
			So(json.Unmarshal(data, &state), ShouldBeNil)
			So(state.Segments, ShouldEqual, 1)
			So(state.Bytes, ShouldEqual, len(segments[0]))
		})
	})

	Convey("Given a partial run recorded by the sidecar", t, func() {
		filesystem.SetMemMapFs()
		server, _ := hlsServer(segments, -1)
		defer server.Close()

		fs := filesystem.API()
		prefix := segments[0] + segments[1]
		So(fs.WriteFile("/downloads/show.ts"+partSuffix, []byte(prefix+"junk"), 0o644), ShouldBeNil)
		state, _ := json.Marshal(segmentState{Segments: 2, Bytes: int64(len(prefix))})
		So(fs.WriteFile("/downloads/show.ts"+segmentStateSuffix, state, 0o644), ShouldBeNil)

		d := testDownloader(server.Client())

		Convey("The trailing half-segment is dropped and the rest is fetched", func() {
			written, err := d.DownloadHLS(context.Background(), server.URL+"/index.m3u8", "/downloads/show.ts", nil)
			So(err, ShouldBeNil)
			So(written, ShouldEqual, len(whole))

			got, _ := fs.ReadFile("/downloads/show.ts")
			So(string(got), ShouldEqual, whole)
		})
	})
}
