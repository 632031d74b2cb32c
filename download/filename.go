package download

import (
	"fmt"
	"net/url"
	"path"

	"github.com/canalgrab-cli/canalgrab/catalog"
	"github.com/canalgrab-cli/canalgrab/util"
)

// Filename derives the destination filename for a video's chosen variant.
// It is deterministic in the program and video identifiers, so concurrent
// acquisitions of different videos never collide on a path.
func Filename(video *catalog.Video, variant catalog.Variant) string {
	title := video.Title
	if video.Program != nil {
		title = fmt.Sprintf("%s - %s", video.Program.Name, title)
	}
	return util.SanitizeFilename(fmt.Sprintf("%s [%s]", title, video.ID)) + extension(variant)
}

func extension(variant catalog.Variant) string {
	if variant.Protocol == catalog.ProtocolHLS {
		return ".ts"
	}
	if u, err := url.Parse(variant.URL); err == nil {
		if ext := path.Ext(u.Path); ext != "" {
			return ext
		}
	}
	return ".mp4"
}
