// Package resolve turns a user query into a concrete ordered list of
// playable videos by walking the remote catalog tree.
package resolve

import (
	"fmt"

	"github.com/samber/mo"
)

// Mode selects which of a program's matching videos end up in the result.
// It is a closed set; each variant has exactly one handler in the resolver.
type Mode uint8

const (
	// ModeAll keeps every matching video of every matching program.
	ModeAll Mode = iota
	// ModeLast keeps the most recently published video per matching program.
	ModeLast
	// ModeAuto keeps the first video encountered per matching program.
	ModeAuto
	// ModePick defers the final choice to the interactive picker.
	ModePick
)

var modeNames = map[Mode]string{
	ModeAll:  "all",
	ModeLast: "last",
	ModeAuto: "auto",
	ModePick: "pick",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode maps a CLI mode name onto its Mode variant.
func ParseMode(name string) (Mode, error) {
	for mode, known := range modeNames {
		if known == name {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q (expected all, last, auto or pick)", name)
}

// Query is the user intent handed to the resolver.
type Query struct {
	// Program is the program-name pattern (see CompilePattern semantics).
	Program string
	// Video optionally narrows the program's videos by title pattern.
	Video mo.Option[string]
	// Mode selects how many of the matching videos are kept.
	Mode Mode
}

// NoMatchError reports a query that matched nothing, carrying the original
// pattern for the user-facing message.
type NoMatchError struct {
	Pattern string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("nothing matched %q", e.Pattern)
}
