package stream

import (
	"errors"
	"testing"

	"github.com/canalgrab-cli/canalgrab/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSelect(t *testing.T) {
	selector := NewSelector([]string{"avc1", "hevc", "mpeg2"})

	Convey("Given variants with different bitrates", t, func() {
		variants := []catalog.Variant{
			{Codec: "avc1", Bitrate: 800_000, Protocol: catalog.ProtocolHLS, URL: "http://cdn/low"},
			{Codec: "avc1", Bitrate: 2_500_000, Protocol: catalog.ProtocolHLS, URL: "http://cdn/high"},
			{Codec: "avc1", Bitrate: 1_200_000, Protocol: catalog.ProtocolHLS, URL: "http://cdn/mid"},
		}

		Convey("The highest bitrate wins", func() {
			best, err := selector.Select(variants)
			So(err, ShouldBeNil)
			So(best.URL, ShouldEqual, "http://cdn/high")
		})

		Convey("Selection is deterministic regardless of input order", func() {
			reversed := []catalog.Variant{variants[2], variants[0], variants[1]}
			a, _ := selector.Select(variants)
			b, _ := selector.Select(reversed)
			So(a, ShouldResemble, b)
		})
	})

	Convey("Given variants without bitrates", t, func() {
		variants := []catalog.Variant{
			{Codec: "avc1", Label: "BAS_DEBIT", Protocol: catalog.ProtocolProgressive, URL: "http://cdn/sd"},
			{Codec: "avc1", Label: "HD", Protocol: catalog.ProtocolProgressive, URL: "http://cdn/hd"},
			{Codec: "avc1", Label: "HAUT_DEBIT", Protocol: catalog.ProtocolProgressive, URL: "http://cdn/hq"},
		}

		Convey("The label ladder decides", func() {
			best, err := selector.Select(variants)
			So(err, ShouldBeNil)
			So(best.URL, ShouldEqual, "http://cdn/hd")
		})
	})

	Convey("Given equal quality but different codecs", t, func() {
		variants := []catalog.Variant{
			{Codec: "mpeg2", Bitrate: 1_000_000, Protocol: catalog.ProtocolProgressive, URL: "http://cdn/old"},
			{Codec: "avc1.64001f", Bitrate: 1_000_000, Protocol: catalog.ProtocolHLS, URL: "http://cdn/modern"},
		}

		Convey("The codec preference list decides, profile suffix included", func() {
			best, err := selector.Select(variants)
			So(err, ShouldBeNil)
			So(best.URL, ShouldEqual, "http://cdn/modern")
		})
	})

	Convey("Given a tie on every quality axis", t, func() {
		variants := []catalog.Variant{
			{Codec: "avc1", Bitrate: 1_000_000, Protocol: catalog.ProtocolHLS, URL: "http://cdn/segments"},
			{Codec: "avc1", Bitrate: 1_000_000, Protocol: catalog.ProtocolProgressive, URL: "http://cdn/file"},
		}

		Convey("Progressive delivery wins", func() {
			best, err := selector.Select(variants)
			So(err, ShouldBeNil)
			So(best.URL, ShouldEqual, "http://cdn/file")
		})
	})

	Convey("Given only unplayable variants", t, func() {
		variants := []catalog.Variant{
			{Codec: "avc1", Bitrate: 2_000_000, Protocol: catalog.ProtocolProgressive, DRM: true},
			{Codec: "avc1", Bitrate: 1_000_000, Protocol: catalog.Protocol("dash")},
		}

		Convey("Selection fails with ErrNoPlayableVariant", func() {
			_, err := selector.Select(variants)
			So(errors.Is(err, ErrNoPlayableVariant), ShouldBeTrue)
		})
	})

	Convey("Given a DRM variant above a free one", t, func() {
		variants := []catalog.Variant{
			{Codec: "avc1", Bitrate: 5_000_000, Protocol: catalog.ProtocolProgressive, DRM: true, URL: "http://cdn/locked"},
			{Codec: "avc1", Bitrate: 1_000_000, Protocol: catalog.ProtocolProgressive, URL: "http://cdn/free"},
		}

		Convey("The DRM variant is never chosen", func() {
			best, err := selector.Select(variants)
			So(err, ShouldBeNil)
			So(best.URL, ShouldEqual, "http://cdn/free")
		})
	})

	Convey("Given no variants at all", t, func() {
		_, err := selector.Select(nil)
		So(errors.Is(err, ErrNoPlayableVariant), ShouldBeTrue)
	})
}
