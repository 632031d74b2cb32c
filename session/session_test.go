package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/canalgrab-cli/canalgrab/catalog"
	"github.com/canalgrab-cli/canalgrab/stream"
	. "github.com/smartystreets/goconvey/convey"
)

type stubSource struct {
	variants map[string][]catalog.Variant
	err      map[string]error
}

func (s stubSource) Variants(_ context.Context, video *catalog.Video) ([]catalog.Variant, error) {
	if err := s.err[video.ID]; err != nil {
		return nil, err
	}
	return s.variants[video.ID], nil
}

type stubSelector struct{}

func (stubSelector) Select(variants []catalog.Variant) (catalog.Variant, error) {
	if len(variants) == 0 {
		return catalog.Variant{}, stream.ErrNoPlayableVariant
	}
	return variants[0], nil
}

type stubAcquirer struct {
	delay time.Duration
	err   map[string]error
}

func (s stubAcquirer) Acquire(_ context.Context, video *catalog.Video, _ catalog.Variant) (Outcome, error) {
	time.Sleep(s.delay)
	if err := s.err[video.ID]; err != nil {
		return Outcome{}, err
	}
	return Outcome{Bytes: 42, Path: video.Title + ".mp4"}, nil
}

func videoFixtures() []*catalog.Video {
	return []*catalog.Video{
		{ID: "v1", Title: "Episode 1"},
		{ID: "v2", Title: "Episode 2"},
		{ID: "v3", Title: "Episode 3"},
	}
}

func TestRun(t *testing.T) {
	Convey("Given an orchestrator over three videos", t, func() {
		videos := videoFixtures()
		source := stubSource{
			variants: map[string][]catalog.Variant{
				"v1": {{Codec: "avc1", URL: "http://cdn/v1"}},
				"v2": {{Codec: "avc1", URL: "http://cdn/v2"}},
				"v3": {{Codec: "avc1", URL: "http://cdn/v3"}},
			},
			err: map[string]error{},
		}

		Convey("When every acquisition succeeds", func() {
			o := &Orchestrator{Source: source, Selector: stubSelector{}, Acquirer: stubAcquirer{}, Workers: 2}
			results := o.Run(context.Background(), videos)

			Convey("Each video gets a success result in input order", func() {
				So(results, ShouldHaveLength, 3)
				for i, result := range results {
					So(result.Video.ID, ShouldEqual, videos[i].ID)
					So(result.Status, ShouldEqual, StatusSuccess)
					So(result.Err, ShouldBeNil)
					So(result.Bytes, ShouldEqual, 42)
				}
			})

			Convey("Result IDs are distinct", func() {
				So(results[0].ID, ShouldNotEqual, results[1].ID)
				So(results[1].ID, ShouldNotEqual, results[2].ID)
			})
		})

		Convey("When the middle video has no playable variant", func() {
			source.variants["v2"] = nil
			o := &Orchestrator{Source: source, Selector: stubSelector{}, Acquirer: stubAcquirer{}, Workers: 2}
			results := o.Run(context.Background(), videos)

			Convey("Only that video fails and the batch completes", func() {
				So(results, ShouldHaveLength, 3)
				So(results[0].Status, ShouldEqual, StatusSuccess)
				So(results[1].Status, ShouldEqual, StatusFailed)
				So(errors.Is(results[1].Err, stream.ErrNoPlayableVariant), ShouldBeTrue)
				So(results[2].Status, ShouldEqual, StatusSuccess)
			})
		})

		Convey("When the stream listing itself errors", func() {
			source.err["v1"] = errors.New("boom")
			o := &Orchestrator{Source: source, Selector: stubSelector{}, Acquirer: stubAcquirer{}, Workers: 1}
			results := o.Run(context.Background(), videos)

			So(results[0].Status, ShouldEqual, StatusFailed)
			So(results[0].Err, ShouldNotBeNil)
			So(results[1].Status, ShouldEqual, StatusSuccess)
		})

		Convey("When the acquirer reports an existing download", func() {
			o := &Orchestrator{
				Source:   source,
				Selector: stubSelector{},
				Acquirer: stubAcquirer{err: map[string]error{"v3": ErrSkipped}},
				Workers:  3,
			}
			results := o.Run(context.Background(), videos)

			Convey("The result is a skip, not a failure", func() {
				So(results[2].Status, ShouldEqual, StatusSkipped)
				So(results[2].Err, ShouldBeNil)
				So(results[2].Failed(), ShouldBeFalse)
			})
		})

		Convey("When the context is already cancelled at the acquirer", func() {
			o := &Orchestrator{
				Source:   source,
				Selector: stubSelector{},
				Acquirer: stubAcquirer{err: map[string]error{"v1": context.Canceled}},
				Workers:  1,
			}
			results := o.Run(context.Background(), videos)

			So(results[0].Status, ShouldEqual, StatusCancelled)
			So(results[0].Failed(), ShouldBeTrue)
		})

		Convey("A workers value below one still runs the batch", func() {
			o := &Orchestrator{Source: source, Selector: stubSelector{}, Acquirer: stubAcquirer{}, Workers: 0}
			results := o.Run(context.Background(), videos)
			So(results, ShouldHaveLength, 3)
		})
	})
}

func TestStatusString(t *testing.T) {
	Convey("Statuses render their names", t, func() {
		So(StatusSuccess.String(), ShouldEqual, "success")
		So(StatusFailed.String(), ShouldEqual, "failed")
		So(StatusSkipped.String(), ShouldEqual, "skipped")
		So(StatusCancelled.String(), ShouldEqual, "cancelled")
	})
}
