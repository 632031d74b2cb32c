// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Canalgrab is the canonical application identifier used for filesystem paths and CLI branding.
	Canalgrab = "canalgrab"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default HTTP User-Agent string used for requests to the remote catalog.
	UserAgent = "Mozilla/5.0"

	// DefaultAPIBase is the default root URL of the broadcaster catalog REST API.
	DefaultAPIBase = "https://service.canal-plus.com/video/rest"
)

// Build metadata, overridden at link time by the release pipeline.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
