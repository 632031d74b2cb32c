// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 16

// Catalog Access - these keys govern communication with the remote broadcaster catalog.
const (
	CatalogAPIBase = "catalog.api_url"
	CatalogRetries = "catalog.retries"
)

// Stream Selection - these keys control how a playable variant is chosen for a video.
const (
	StreamsCodecPreference = "streams.codec_preference"
)

// Download Behavior - these keys configure the resumable download engine.
const (
	DownloadsDir     = "downloads.dir"
	DownloadsWorkers = "downloads.workers"
	DownloadsRetries = "downloads.retries"
)

// Media Playback - these keys maintain the configuration for external video players.
const (
	Player = "player.default"
)

// Search Interaction - these keys define the UX parameters for query discovery.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern general CLI behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	CliMode         = "cli.mode"
	CliProgress     = "cli.progress"
)
