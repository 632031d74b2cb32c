// Package stream picks the best playable rendition out of a video's
// stream variants under a deterministic quality ordering.
package stream

import (
	"errors"
	"sort"
	"strings"

	"github.com/canalgrab-cli/canalgrab/catalog"
	"github.com/samber/lo"
)

// ErrNoPlayableVariant reports that every variant of a video was filtered
// out (DRM-protected or delivered over an unsupported protocol).
var ErrNoPlayableVariant = errors.New("no playable variant")

// labelWeight ranks the legacy quality labels used by catalogs that do not
// advertise bitrates.
var labelWeight = map[string]int{
	"hd":         3,
	"high":       2,
	"haut_debit": 2,
	"sd":         1,
	"low":        0,
	"bas_debit":  0,
}

// Selector orders variants by quality and returns the best one. Selection is
// pure: the same variant set always yields the same choice.
type Selector struct {
	codecRank map[string]int
}

// NewSelector builds a selector from a codec preference list, best first.
// Codecs absent from the list rank below every listed one.
func NewSelector(codecPreference []string) *Selector {
	rank := make(map[string]int, len(codecPreference))
	for i, codec := range codecPreference {
		rank[strings.ToLower(codec)] = len(codecPreference) - i
	}
	return &Selector{codecRank: rank}
}

// Select returns the top-ranked playable variant. Quality ordering is
// bitrate (falling back to the label ladder), then codec preference, then
// progressive over segmented delivery.
func (s *Selector) Select(variants []catalog.Variant) (catalog.Variant, error) {
	playable := lo.Filter(variants, func(v catalog.Variant, _ int) bool {
		return !v.DRM && supported(v.Protocol)
	})
	if len(playable) == 0 {
		return catalog.Variant{}, ErrNoPlayableVariant
	}

	sort.SliceStable(playable, func(i, j int) bool {
		return s.better(playable[i], playable[j])
	})
	return playable[0], nil
}

// better reports whether a outranks b.
func (s *Selector) better(a, b catalog.Variant) bool {
	if a.Bitrate != b.Bitrate {
		return a.Bitrate > b.Bitrate
	}
	if wa, wb := labelWeight[strings.ToLower(a.Label)], labelWeight[strings.ToLower(b.Label)]; wa != wb {
		return wa > wb
	}
	if ra, rb := s.codec(a.Codec), s.codec(b.Codec); ra != rb {
		return ra > rb
	}
	// Equal quality: a progressive file resumes more simply than segments.
	return a.Protocol == catalog.ProtocolProgressive && b.Protocol != catalog.ProtocolProgressive
}

// codec resolves the preference rank of a codec tag, tolerating the
// "codec.profile" shape found in HLS CODECS attributes.
func (s *Selector) codec(tag string) int {
	tag = strings.ToLower(tag)
	if rank, ok := s.codecRank[tag]; ok {
		return rank
	}
	base, _, _ := strings.Cut(tag, ".")
	return s.codecRank[base]
}

func supported(p catalog.Protocol) bool {
	switch p {
	case catalog.ProtocolProgressive, catalog.ProtocolHLS:
		return true
	default:
		return false
	}
}
