package resolve

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher reports whether a display name satisfies a compiled user pattern.
type Matcher func(name string) bool

// CompilePattern translates a user pattern into a Matcher.
//
// Matching is case-insensitive. `*` matches any run of characters and `?`
// matches a single character, except that a `?` in the leading position is
// the substring-search marker: `?guignols` matches any name containing
// "guignols", while a bare pattern such as `groland` anchors at the start of
// the name (exact or prefix match).
func CompilePattern(pattern string) (Matcher, error) {
	substring := strings.HasPrefix(pattern, "?")
	if substring {
		pattern = pattern[1:]
	}

	var b strings.Builder
	b.WriteString("(?i)")
	if !substring {
		b.WriteString("^")
	}
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	return re.MatchString, nil
}
