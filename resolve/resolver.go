package resolve

import (
	"context"
	"errors"
	"iter"

	"github.com/canalgrab-cli/canalgrab/catalog"
	"github.com/canalgrab-cli/canalgrab/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Catalog is the slice of the catalog client the resolver depends on.
type Catalog interface {
	Categories(ctx context.Context) ([]*catalog.Category, error)
	Programs(ctx context.Context, category *catalog.Category) iter.Seq2[*catalog.Program, error]
	Videos(ctx context.Context, program *catalog.Program) iter.Seq2[*catalog.Video, error]
}

// Picker is the interactive collaborator used by ModePick to narrow an
// ambiguous result. Returning None means the user aborted.
type Picker interface {
	PickProgram(programs []*catalog.Program) (mo.Option[*catalog.Program], error)
	PickVideo(videos []*catalog.Video) (mo.Option[*catalog.Video], error)
}

// Resolver walks the Category -> Program -> Video tree and applies pattern
// matching and mode selection to produce an ordered video list.
type Resolver struct {
	catalog Catalog
	picker  Picker
}

// New creates a resolver. The picker may be nil when ModePick is never used.
func New(cat Catalog, picker Picker) *Resolver {
	return &Resolver{catalog: cat, picker: picker}
}

// Resolve produces the ordered, deduplicated video list a query designates.
// Enumeration order is exactly the server's returned order; mode filtering
// never reorders. A query matching nothing yields a NoMatchError.
func (r *Resolver) Resolve(ctx context.Context, query Query) ([]*catalog.Video, error) {
	matchProgram, err := CompilePattern(query.Program)
	if err != nil {
		return nil, err
	}

	matchVideo := Matcher(func(string) bool { return true })
	if pattern, ok := query.Video.Get(); ok {
		matchVideo, err = CompilePattern(pattern)
		if err != nil {
			return nil, err
		}
	}

	programs, err := r.matchingPrograms(ctx, matchProgram)
	if err != nil {
		return nil, err
	}
	if len(programs) == 0 {
		return nil, &NoMatchError{Pattern: query.Program}
	}

	if query.Mode == ModePick && len(programs) > 1 {
		choice, err := r.picker.PickProgram(programs)
		if err != nil {
			return nil, err
		}
		program, ok := choice.Get()
		if !ok {
			return nil, &NoMatchError{Pattern: query.Program}
		}
		programs = []*catalog.Program{program}
	}

	var videos []*catalog.Video
	for _, program := range programs {
		kept, err := r.videosOf(ctx, program, matchVideo, query.Mode)
		if err != nil {
			return nil, err
		}
		videos = append(videos, kept...)
	}

	if query.Mode == ModePick && len(videos) > 1 {
		choice, err := r.picker.PickVideo(videos)
		if err != nil {
			return nil, err
		}
		video, ok := choice.Get()
		if !ok {
			return nil, &NoMatchError{Pattern: query.Program}
		}
		videos = []*catalog.Video{video}
	}

	videos = lo.UniqBy(videos, func(v *catalog.Video) string { return v.ID })
	if len(videos) == 0 {
		return nil, &NoMatchError{Pattern: noMatchPattern(query)}
	}
	return videos, nil
}

// matchingPrograms enumerates every category and keeps the programs whose
// display name matches, in server order, deduplicated by identifier.
// A malformed program entry is skipped; an unavailable catalog aborts.
func (r *Resolver) matchingPrograms(ctx context.Context, match Matcher) ([]*catalog.Program, error) {
	categories, err := r.catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}

	var programs []*catalog.Program
	seen := make(map[string]struct{})
	for _, category := range categories {
		for program, err := range r.catalog.Programs(ctx, category) {
			if err != nil {
				var malformed *catalog.MalformedError
				if errors.As(err, &malformed) {
					log.Warnf("skipping unreadable program entry in %s: %v", category.Name, err)
					continue
				}
				return nil, err
			}

			if !match(program.Name) {
				continue
			}
			if _, ok := seen[program.ID]; ok {
				continue
			}
			seen[program.ID] = struct{}{}
			programs = append(programs, program)
		}
	}
	return programs, nil
}

// videosOf enumerates one program's videos and applies the mode handler.
func (r *Resolver) videosOf(ctx context.Context, program *catalog.Program, match Matcher, mode Mode) ([]*catalog.Video, error) {
	var kept []*catalog.Video
	var last *catalog.Video

	for video, err := range r.catalog.Videos(ctx, program) {
		if err != nil {
			var malformed *catalog.MalformedError
			if errors.As(err, &malformed) {
				log.Warnf("skipping unreadable video entry in %s: %v", program.Name, err)
				continue
			}
			return nil, err
		}

		if !match(video.Title) {
			continue
		}

		switch mode {
		case ModeAll, ModePick:
			kept = append(kept, video)
		case ModeAuto:
			return []*catalog.Video{video}, nil
		case ModeLast:
			// On equal timestamps the later server entry is the more recent one.
			if last == nil || !video.PublishedAt.Before(last.PublishedAt) {
				last = video
			}
		}
	}

	if mode == ModeLast {
		if last == nil {
			return nil, nil
		}
		return []*catalog.Video{last}, nil
	}
	return kept, nil
}

func noMatchPattern(query Query) string {
	if pattern, ok := query.Video.Get(); ok {
		return query.Program + " / " + pattern
	}
	return query.Program
}
