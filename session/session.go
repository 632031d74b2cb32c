// Package session sequences variant selection and acquisition over a
// resolved video list, isolating failures per video.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/canalgrab-cli/canalgrab/catalog"
	"github.com/canalgrab-cli/canalgrab/log"
	"github.com/canalgrab-cli/canalgrab/stream"
	"github.com/canalgrab-cli/canalgrab/util"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// VariantSource is the slice of the catalog client the orchestrator needs.
type VariantSource interface {
	Variants(ctx context.Context, video *catalog.Video) ([]catalog.Variant, error)
}

// Selector picks the best variant of a video's stream set.
type Selector interface {
	Select(variants []catalog.Variant) (catalog.Variant, error)
}

// Acquirer materializes a chosen variant: a download to disk or a playback
// session in an external player.
type Acquirer interface {
	Acquire(ctx context.Context, video *catalog.Video, variant catalog.Variant) (Outcome, error)
}

// Outcome carries the acquirer-specific facts of a finished acquisition.
type Outcome struct {
	// Bytes transferred. Zero in play mode.
	Bytes int64
	// Path of the saved file. Empty in play mode.
	Path string
	// ExitCode of the player process. Zero in save mode.
	ExitCode int
}

// Status classifies a per-video result.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusFailed
	StatusSkipped
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Result is the per-video outcome of a run.
type Result struct {
	ID     uuid.UUID
	Video  *catalog.Video
	Status Status
	Err    error
	Outcome
}

// Failed reports whether the result should fail the overall run.
func (r Result) Failed() bool {
	return r.Status == StatusFailed || r.Status == StatusCancelled
}

// Orchestrator runs select-then-acquire over a video list. Videos are
// processed concurrently up to Workers, but the returned results always
// line up positionally with the input.
type Orchestrator struct {
	Source   VariantSource
	Selector Selector
	Acquirer Acquirer
	// Workers bounds concurrent acquisitions; values below 1 mean serial.
	Workers int
}

// Run produces one result per input video, in input order. A failure at any
// step is captured into that video's result and never aborts the batch.
func (o *Orchestrator) Run(ctx context.Context, videos []*catalog.Video) []Result {
	results := make([]Result, len(videos))

	workers := util.Max(o.Workers, 1)
	p := pool.New().WithMaxGoroutines(workers)
	for i, video := range videos {
		p.Go(func() {
			results[i] = o.process(ctx, video)
		})
	}
	p.Wait()

	return results
}

// process runs one video's pipeline: the steps are strictly sequential
// within a video.
func (o *Orchestrator) process(ctx context.Context, video *catalog.Video) Result {
	result := Result{ID: uuid.New(), Video: video}

	variants, err := o.Source.Variants(ctx, video)
	if err != nil {
		return result.fail(fmt.Errorf("%s: %w", video.Title, err))
	}

	variant, err := o.Selector.Select(variants)
	if err != nil {
		if errors.Is(err, stream.ErrNoPlayableVariant) {
			log.Warnf("no playable variant for %s", video.Title)
		}
		return result.fail(fmt.Errorf("%s: %w", video.Title, err))
	}

	outcome, err := o.Acquirer.Acquire(ctx, video, variant)
	result.Outcome = outcome
	if err != nil {
		return result.fail(fmt.Errorf("%s: %w", video.Title, err))
	}

	result.Status = StatusSuccess
	return result
}

func (r Result) fail(err error) Result {
	r.Err = err
	switch {
	case errors.Is(err, context.Canceled):
		// A cancellation must never read as success; the partial file
		// stays on disk for the next run.
		r.Status = StatusCancelled
	case isSkip(err):
		r.Status = StatusSkipped
		r.Err = nil
	default:
		r.Status = StatusFailed
	}
	return r
}

// isSkip recognizes the already-downloaded signal from the acquirer.
func isSkip(err error) bool {
	return errors.Is(err, ErrSkipped)
}

// ErrSkipped is returned by acquirers when the destination already holds a
// complete prior download and must not be overwritten.
var ErrSkipped = errors.New("already acquired")
