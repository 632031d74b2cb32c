package cmd

import (
	"testing"

	"github.com/canalgrab-cli/canalgrab/filesystem"
	"github.com/canalgrab-cli/canalgrab/key"
	"github.com/canalgrab-cli/canalgrab/session"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestNewAcquisition(t *testing.T) {
	Convey("Given configured acquisition defaults", t, func() {
		viper.Set(key.Player, "mpv")
		viper.Set(key.DownloadsDir, "/videos")
		viper.Set(key.DownloadsWorkers, 2)

		Convey("player:NAME as the output routes to that player", func() {
			a := newAcquisition(false, "", "player:vlc", 0)
			So(a.play, ShouldBeTrue)
			So(a.playerName, ShouldEqual, "vlc")
		})

		Convey("A bare player: routes to the configured player", func() {
			a := newAcquisition(false, "", "player:", 0)
			So(a.play, ShouldBeTrue)
			So(a.playerName, ShouldEqual, "mpv")
		})

		Convey("Naming a player implies play mode", func() {
			a := newAcquisition(false, "vlc", "", 0)
			So(a.play, ShouldBeTrue)
			So(a.playerName, ShouldEqual, "vlc")
		})

		Convey("Unset values fall back on the configuration", func() {
			a := newAcquisition(false, "", "", 0)
			So(a.play, ShouldBeFalse)
			So(a.outputDir, ShouldEqual, "/videos")
			So(a.workers, ShouldEqual, 2)
		})
	})
}

func TestShowProgress(t *testing.T) {
	Convey("Given progress rendering is enabled", t, func() {
		viper.Set(key.CliProgress, true)

		Convey("A serial run draws a bar", func() {
			So(acquisition{workers: 1}.showProgress(), ShouldBeTrue)
		})

		Convey("Concurrent workers share one terminal line, so no bar", func() {
			So(acquisition{workers: 2}.showProgress(), ShouldBeFalse)
		})

		Convey("Disabling the setting wins over a serial run", func() {
			viper.Set(key.CliProgress, false)
			So(acquisition{workers: 1}.showProgress(), ShouldBeFalse)
			viper.Set(key.CliProgress, true)
		})
	})
}

func TestSummaryDetail(t *testing.T) {
	Convey("Given plain icons", t, func() {
		viper.Set(key.IconsVariant, "plain")

		Convey("A saved video reports the download marker and path", func() {
			d := detail(session.Result{
				Status:  session.StatusSuccess,
				Outcome: session.Outcome{Bytes: 2048, Path: "/videos/ep.mp4"},
			})
			So(d, ShouldContainSubstring, "[dl]")
			So(d, ShouldContainSubstring, "/videos/ep.mp4")
		})

		Convey("A played video reports the play marker", func() {
			d := detail(session.Result{Status: session.StatusSuccess})
			So(d, ShouldContainSubstring, "[play]")
			So(d, ShouldContainSubstring, "played")
		})
	})
}
