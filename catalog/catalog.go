// Package catalog implements the client for the remote broadcaster catalog
// and the typed nodes of its three-level content tree.
package catalog

import "time"

// Category is a named grouping of programs as returned by the catalog root listing.
// Immutable once fetched.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Category) String() string {
	return c.Name
}

// Program is a named show belonging to one category.
// Its video sequence is fetched lazily, page by page, through Client.Videos.
type Program struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Category is a non-owning reference to the parent node.
	Category *Category `json:"-"`
}

func (p *Program) String() string {
	return p.Name
}

// Video is a single playable item belonging to one program.
type Video struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	PublishedAt time.Time     `json:"publishedAt"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description,omitempty"`

	// Program is a non-owning reference to the parent node.
	Program *Program `json:"-"`
}

func (v *Video) String() string {
	return v.Title
}

// Protocol identifies the delivery mechanism of a stream variant.
type Protocol string

const (
	// ProtocolProgressive is a single-file HTTP stream.
	ProtocolProgressive Protocol = "progressive"
	// ProtocolHLS is a segmented HTTP Live Streaming rendition.
	ProtocolHLS Protocol = "hls"
)

// Variant is one encoded rendition of a video.
type Variant struct {
	Codec    string   `json:"codec"`
	Bitrate  int64    `json:"bitrate"`
	Label    string   `json:"label,omitempty"`
	Protocol Protocol `json:"protocol"`
	URL      string   `json:"url"`
	DRM      bool     `json:"drm"`
}

func (v Variant) String() string {
	if v.Label != "" {
		return v.Label
	}
	return v.URL
}
